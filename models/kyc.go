package models

import "time"

// KYC document kinds. A driver needs the required set approved before the
// driver flag flips.
const (
	KYCDocIDCard       = "idCard"
	KYCDocLicence      = "licence"
	KYCDocRegistration = "registration"
	KYCDocSelfie       = "selfie"
	KYCDocVehiclePhoto = "vehiclePhoto"
)

// RequiredKYCDocs is the set a driver must have approved.
var RequiredKYCDocs = []string{KYCDocIDCard, KYCDocLicence, KYCDocRegistration, KYCDocSelfie}

// KYC document review states.
const (
	KYCDocPending  = "pending"
	KYCDocApproved = "approved"
	KYCDocRejected = "rejected"
)

// KYCDocument tracks one uploaded verification document. The stored file is
// AES-GCM encrypted before it ever reaches object storage.
type KYCDocument struct {
	ID           string    `bson:"id" json:"id"`
	UID          string    `bson:"uid" json:"uid"`
	Kind         string    `bson:"kind" json:"kind"`
	PublicID     string    `bson:"public_id" json:"-"`
	Status       string    `bson:"status" json:"status"`
	ReviewerNote string    `bson:"reviewer_note,omitempty" json:"reviewerNote,omitempty"`
	ReviewedBy   string    `bson:"reviewed_by,omitempty" json:"-"`
	UploadedAt   time.Time `bson:"uploaded_at" json:"uploadedAt"`
	ReviewedAt   time.Time `bson:"reviewed_at,omitempty" json:"reviewedAt,omitempty"`
}
