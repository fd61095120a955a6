package kyc

import (
	"context"
	"fmt"
	"time"

	"campusride/config"
	kycRepo "campusride/database/repository/kyc"
	userRepo "campusride/database/repository/user"
	"campusride/models"
	notification "campusride/services/notification"
	"campusride/services/storage"
	"campusride/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// KYCService manages driver verification documents. Files are encrypted under
// the admin key before upload; only the review endpoints can read them back.
type KYCService interface {
	// Upload encrypts and stores a verification document. Re-uploading a kind
	// replaces the previous file and resets its review to pending.
	Upload(ctx context.Context, uid, kind, localFilePath string) (*models.KYCDocument, error)
	// ListOwn returns the caller's documents with their review states.
	ListOwn(uid string) ([]models.KYCDocument, error)
	// ListPending returns all documents awaiting review. Admin only.
	ListPending() ([]models.KYCDocument, error)
	// FetchDecrypted downloads and decrypts a document for review. Admin only.
	FetchDecrypted(ctx context.Context, docID string) ([]byte, error)
	// Review approves or rejects one document. Approving the full required set
	// promotes the user to driver.
	Review(ctx context.Context, reviewerID, docID, status, note string) error
}

// DefaultKYCService implements KYCService.
type DefaultKYCService struct {
	Repo     kycRepo.KYCRepository
	Users    userRepo.UserRepository
	Storage  storage.StorageService
	Notifier notification.NotificationService
	// Fetch downloads raw bytes from a URL; injected so review can be tested
	// without object storage.
	Fetch func(ctx context.Context, url string) ([]byte, error)
}

func (s *DefaultKYCService) Upload(ctx context.Context, uid, kind, localFilePath string) (*models.KYCDocument, error) {
	if !validKind(kind) {
		return nil, utils.NewServiceError(utils.CodeInvalidRequest, "unknown document kind")
	}

	adminKey := config.AppConfig.KYCAdminKey
	if adminKey == "" {
		return nil, fmt.Errorf("kyc admin key is not configured")
	}

	publicID, err := s.Storage.UploadEncrypted(ctx, localFilePath, storage.KYCFolder(uid), adminKey)
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	doc := &models.KYCDocument{
		ID:         uuid.New().String(),
		UID:        uid,
		Kind:       kind,
		PublicID:   publicID,
		Status:     models.KYCDocPending,
		UploadedAt: time.Now(),
	}
	if err := s.Repo.Upsert(doc); err != nil {
		return nil, fmt.Errorf("failed to record document: %w", err)
	}

	if err := s.Users.UpdateSetDocument(uid, bson.M{"kyc_status": models.KYCPending}); err != nil {
		utils.GetLogger().Warn("failed to flag user kyc pending", zap.String("uid", uid), zap.Error(err))
	}

	utils.GetLogger().Info("kyc document uploaded",
		zap.String("uid", uid), zap.String("kind", kind), zap.String("docId", doc.ID))
	return doc, nil
}

func (s *DefaultKYCService) ListOwn(uid string) ([]models.KYCDocument, error) {
	return s.Repo.ListByUID(uid)
}

func (s *DefaultKYCService) ListPending() ([]models.KYCDocument, error) {
	return s.Repo.ListPending()
}

func (s *DefaultKYCService) FetchDecrypted(ctx context.Context, docID string) ([]byte, error) {
	doc, err := s.Repo.GetByID(docID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}
	if doc == nil {
		return nil, utils.NewServiceError(utils.CodeNotFound, "document not found")
	}

	url, err := s.Storage.GetSecureDownloadURL(ctx, "raw", doc.PublicID, 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("failed to sign download url: %w", err)
	}
	ciphertext, err := s.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to download document: %w", err)
	}
	plaintext, err := storage.DecryptBytes(ciphertext, config.AppConfig.KYCAdminKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt document: %w", err)
	}
	return plaintext, nil
}

func (s *DefaultKYCService) Review(ctx context.Context, reviewerID, docID, status, note string) error {
	logger := utils.GetLogger()

	if status != models.KYCDocApproved && status != models.KYCDocRejected {
		return utils.NewServiceError(utils.CodeInvalidRequest, "status must be approved or rejected")
	}
	doc, err := s.Repo.GetByID(docID)
	if err != nil {
		return fmt.Errorf("failed to fetch document: %w", err)
	}
	if doc == nil {
		return utils.NewServiceError(utils.CodeNotFound, "document not found")
	}

	if err := s.Repo.SetStatus(docID, status, note, reviewerID); err != nil {
		return fmt.Errorf("failed to record review: %w", err)
	}

	if status == models.KYCDocRejected {
		if err := s.Users.UpdateSetDocument(doc.UID, bson.M{"kyc_status": models.KYCRejected}); err != nil {
			return fmt.Errorf("failed to update user kyc status: %w", err)
		}
		if s.Notifier != nil {
			_ = s.Notifier.Notify(ctx, doc.UID, models.NotifKYCReviewed,
				"Document refusé",
				fmt.Sprintf("Votre document (%s) a été refusé. %s", doc.Kind, note),
				map[string]string{"docId": docID})
		}
		return nil
	}

	promoted, err := s.maybePromote(doc.UID)
	if err != nil {
		return err
	}
	if promoted {
		logger.Info("user promoted to driver", zap.String("uid", doc.UID))
		if s.Notifier != nil {
			_ = s.Notifier.Notify(ctx, doc.UID, models.NotifKYCReviewed,
				"Profil conducteur validé",
				"Tous vos documents ont été approuvés. Vous pouvez maintenant publier des trajets.",
				nil)
		}
	}
	return nil
}

// maybePromote flips the user to driver once every required kind is approved.
func (s *DefaultKYCService) maybePromote(uid string) (bool, error) {
	docs, err := s.Repo.ListByUID(uid)
	if err != nil {
		return false, fmt.Errorf("failed to list documents: %w", err)
	}
	approved := make(map[string]bool, len(docs))
	for _, d := range docs {
		if d.Status == models.KYCDocApproved {
			approved[d.Kind] = true
		}
	}
	for _, kind := range models.RequiredKYCDocs {
		if !approved[kind] {
			return false, nil
		}
	}
	if err := s.Users.UpdateSetDocument(uid, bson.M{
		"kyc_status": models.KYCApproved,
		"is_driver":  true,
	}); err != nil {
		return false, fmt.Errorf("failed to promote user: %w", err)
	}
	return true, nil
}

func validKind(kind string) bool {
	switch kind {
	case models.KYCDocIDCard, models.KYCDocLicence, models.KYCDocRegistration,
		models.KYCDocSelfie, models.KYCDocVehiclePhoto:
		return true
	}
	return false
}
