package kycRepo

import "campusride/models"

// KYCRepository defines methods for driver verification document access.
type KYCRepository interface {
	// Upsert stores the document for its (uid, kind) pair; a re-upload replaces
	// the previous file reference and resets the status to pending.
	Upsert(doc *models.KYCDocument) error
	ListByUID(uid string) ([]models.KYCDocument, error)
	ListPending() ([]models.KYCDocument, error)
	GetByID(id string) (*models.KYCDocument, error)
	// SetStatus records the reviewer's decision.
	SetStatus(id, status, note, reviewedBy string) error
	// DeleteByUID removes all documents of a user (deletion cascade) and
	// returns the storage public ids so the files can be purged too.
	DeleteByUID(uid string) ([]string, error)
}
