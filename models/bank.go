package models

import "time"

// BankLink is a linked bank item. The access token is stored encrypted.
type BankLink struct {
	ID                   string    `bson:"id" json:"id"`
	UserID               string    `bson:"user_id" json:"user_id"`
	BusinessID           string    `bson:"business_id,omitempty" json:"business_id,omitempty"`
	ItemID               string    `bson:"item_id" json:"item_id"`
	InstitutionName      string    `bson:"institution_name,omitempty" json:"institution_name,omitempty"`
	EncryptedAccessToken string    `bson:"encrypted_access_token" json:"-"`
	CreatedAt            time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt            time.Time `bson:"updated_at" json:"updated_at"`
}

// Document is an uploaded file reference.
type Document struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
	Category string `json:"category"`
	Filename string `json:"filename"`
	Bytes    int    `json:"bytes,omitempty"`
}
