package models

import "time"

// ContactSubmission is a stored contact-form message.
type ContactSubmission struct {
	ID        string    `bson:"id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"`
	Subject   string    `bson:"subject,omitempty" json:"subject,omitempty"`
	Message   string    `bson:"message" json:"message"`
	Delivered bool      `bson:"delivered" json:"delivered"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
