package models

import "time"

// AuditEntry records one step of a sensitive cascade (account deletion, KYC
// decisions). Failed steps are recorded with the error before it propagates.
type AuditEntry struct {
	ID        string    `bson:"id" json:"id"`
	UID       string    `bson:"uid" json:"uid"`
	Operation string    `bson:"operation" json:"operation"`
	Step      string    `bson:"step" json:"step"`
	OK        bool      `bson:"ok" json:"ok"`
	Error     string    `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
