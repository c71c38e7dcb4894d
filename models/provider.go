package models

import "time"

// Provider is the staff/provider record joined at sign-in.
type Provider struct {
	ID               string    `bson:"id" json:"id"`
	UserID           string    `bson:"user_id" json:"user_id"`
	BusinessID       string    `bson:"business_id" json:"business_id"`
	LocationID       string    `bson:"location_id" json:"location_id"`
	ProviderRole     string    `bson:"provider_role" json:"provider_role"`
	FirstName        string    `bson:"first_name" json:"first_name"`
	LastName         string    `bson:"last_name" json:"last_name"`
	IsActive         bool      `bson:"is_active" json:"is_active"`
	IdentityVerified bool      `bson:"identity_verified" json:"identity_verified"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at" json:"updated_at"`
}
