package models

import "time"

// BusinessQuote is a carpooling quote request from a company.
type BusinessQuote struct {
	ID           string    `bson:"id" json:"id"`
	CompanyName  string    `bson:"company_name" json:"companyName" binding:"required"`
	ContactName  string    `bson:"contact_name" json:"contactName" binding:"required"`
	ContactEmail string    `bson:"contact_email" json:"contactEmail" binding:"required,email"`
	Headcount    int       `bson:"headcount" json:"headcount" binding:"required,min=1"`
	Depart       string    `bson:"depart" json:"depart" binding:"required"`
	Destination  string    `bson:"destination" json:"destination" binding:"required"`
	Date         string    `bson:"date" json:"date"`
	Notes        string    `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
}
