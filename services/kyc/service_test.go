package kyc

import (
	"bytes"
	"context"
	"testing"
	"time"

	"campusride/config"
	"campusride/models"
	"campusride/services/storage"
	"campusride/utils"

	"go.mongodb.org/mongo-driver/bson"
)

type fakeKYCRepo struct {
	docs map[string]*models.KYCDocument
}

func (f *fakeKYCRepo) Upsert(doc *models.KYCDocument) error {
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeKYCRepo) ListByUID(uid string) ([]models.KYCDocument, error) {
	var out []models.KYCDocument
	for _, d := range f.docs {
		if d.UID == uid {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeKYCRepo) ListPending() ([]models.KYCDocument, error) {
	var out []models.KYCDocument
	for _, d := range f.docs {
		if d.Status == models.KYCDocPending {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeKYCRepo) GetByID(id string) (*models.KYCDocument, error) { return f.docs[id], nil }

func (f *fakeKYCRepo) SetStatus(id, status, note, reviewedBy string) error {
	d := f.docs[id]
	d.Status = status
	d.ReviewerNote = note
	d.ReviewedBy = reviewedBy
	return nil
}

func (f *fakeKYCRepo) DeleteByUID(uid string) ([]string, error) { return nil, nil }

type fakeUserRepo struct {
	updates map[string]bson.M
}

func (f *fakeUserRepo) GetByID(id string) (*models.User, error)              { return nil, nil }
func (f *fakeUserRepo) GetByEmail(email string) (*models.User, error)        { return nil, nil }
func (f *fakeUserRepo) Create(u *models.User) error                          { return nil }
func (f *fakeUserRepo) Delete(id string) error                               { return nil }
func (f *fakeUserRepo) UpdateSetDocument(id string, updateDoc bson.M) error {
	if f.updates[id] == nil {
		f.updates[id] = bson.M{}
	}
	for k, v := range updateDoc {
		f.updates[id][k] = v
	}
	return nil
}
func (f *fakeUserRepo) GetByIDWithProjection(id string, projection bson.M) (*models.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) SetRating(id string, avg float64, count int) error { return nil }

type fakeStorage struct{}

func (f *fakeStorage) UploadFile(ctx context.Context, localFilePath, destFolder string) (string, error) {
	return destFolder + "/file", nil
}
func (f *fakeStorage) UploadEncrypted(ctx context.Context, localFilePath, destFolder, adminKey string) (string, error) {
	return destFolder + "/enc", nil
}
func (f *fakeStorage) DeleteFile(ctx context.Context, publicID string) error { return nil }
func (f *fakeStorage) GetDownloadURL(ctx context.Context, resourceType, publicID string, expires time.Duration) (string, error) {
	return "https://cdn.example/" + publicID, nil
}
func (f *fakeStorage) GetSecureDownloadURL(ctx context.Context, resourceType, publicID string, expires time.Duration) (string, error) {
	return "https://cdn.example/signed/" + publicID, nil
}

func newTestKYCService(t *testing.T) (*DefaultKYCService, *fakeKYCRepo, *fakeUserRepo) {
	t.Helper()
	config.AppConfig.KYCAdminKey = "test-admin-key"
	repo := &fakeKYCRepo{docs: map[string]*models.KYCDocument{}}
	users := &fakeUserRepo{updates: map[string]bson.M{}}
	svc := &DefaultKYCService{Repo: repo, Users: users, Storage: &fakeStorage{}}
	return svc, repo, users
}

func seedDoc(repo *fakeKYCRepo, id, uid, kind, status string) {
	repo.docs[id] = &models.KYCDocument{ID: id, UID: uid, Kind: kind, PublicID: "kyc/" + uid + "/" + kind, Status: status}
}

func TestReviewApprovingLastRequiredDocPromotesDriver(t *testing.T) {
	svc, repo, users := newTestKYCService(t)
	ctx := context.Background()

	for i, kind := range models.RequiredKYCDocs[:len(models.RequiredKYCDocs)-1] {
		seedDoc(repo, string(rune('a'+i)), "u1", kind, models.KYCDocApproved)
	}
	last := models.RequiredKYCDocs[len(models.RequiredKYCDocs)-1]
	seedDoc(repo, "last", "u1", last, models.KYCDocPending)

	if err := svc.Review(ctx, "admin1", "last", models.KYCDocApproved, ""); err != nil {
		t.Fatalf("Review: %v", err)
	}

	update := users.updates["u1"]
	if update == nil {
		t.Fatal("user document was not updated")
	}
	if update["is_driver"] != true {
		t.Errorf("is_driver = %v, want true", update["is_driver"])
	}
	if update["kyc_status"] != models.KYCApproved {
		t.Errorf("kyc_status = %v, want approved", update["kyc_status"])
	}
}

func TestReviewPartialApprovalDoesNotPromote(t *testing.T) {
	svc, repo, users := newTestKYCService(t)

	seedDoc(repo, "d1", "u1", models.KYCDocIDCard, models.KYCDocPending)
	if err := svc.Review(context.Background(), "admin1", "d1", models.KYCDocApproved, ""); err != nil {
		t.Fatalf("Review: %v", err)
	}
	if users.updates["u1"] != nil {
		t.Errorf("user updated although required documents are missing: %v", users.updates["u1"])
	}
}

func TestReviewRejectionMarksUser(t *testing.T) {
	svc, repo, users := newTestKYCService(t)

	seedDoc(repo, "d1", "u1", models.KYCDocLicence, models.KYCDocPending)
	if err := svc.Review(context.Background(), "admin1", "d1", models.KYCDocRejected, "illisible"); err != nil {
		t.Fatalf("Review: %v", err)
	}

	if repo.docs["d1"].Status != models.KYCDocRejected {
		t.Errorf("doc status = %q, want rejected", repo.docs["d1"].Status)
	}
	if repo.docs["d1"].ReviewerNote != "illisible" {
		t.Errorf("review note = %q, not stored", repo.docs["d1"].ReviewerNote)
	}
	if users.updates["u1"]["kyc_status"] != models.KYCRejected {
		t.Errorf("kyc_status = %v, want rejected", users.updates["u1"]["kyc_status"])
	}
}

func TestReviewRejectsUnknownStatus(t *testing.T) {
	svc, repo, _ := newTestKYCService(t)

	seedDoc(repo, "d1", "u1", models.KYCDocLicence, models.KYCDocPending)
	err := svc.Review(context.Background(), "admin1", "d1", "maybe", "")
	se, ok := err.(*utils.ServiceError)
	if !ok || se.Code != utils.CodeInvalidRequest {
		t.Errorf("expected INVALID_REQUEST, got %v", err)
	}
}

func TestFetchDecryptedRoundtrip(t *testing.T) {
	svc, repo, _ := newTestKYCService(t)
	seedDoc(repo, "d1", "u1", models.KYCDocIDCard, models.KYCDocPending)

	plaintext := []byte("scan of an id card")
	ciphertext, err := storage.EncryptBytes(plaintext, config.AppConfig.KYCAdminKey)
	if err != nil {
		t.Fatalf("EncryptBytes: %v", err)
	}
	svc.Fetch = func(ctx context.Context, url string) ([]byte, error) {
		return ciphertext, nil
	}

	got, err := svc.FetchDecrypted(context.Background(), "d1")
	if err != nil {
		t.Fatalf("FetchDecrypted: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("decrypted bytes do not match the original document")
	}
}

func TestFetchDecryptedUnknownDocument(t *testing.T) {
	svc, _, _ := newTestKYCService(t)

	_, err := svc.FetchDecrypted(context.Background(), "ghost")
	se, ok := err.(*utils.ServiceError)
	if !ok || se.Code != utils.CodeNotFound {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}
