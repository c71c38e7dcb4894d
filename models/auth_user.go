package models

// AuthUser is the signed-in principal: the auth account joined to its provider record.
type AuthUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	ProviderID   string `json:"provider_id"`
	BusinessID   string `json:"business_id"`
	LocationID   string `json:"location_id"`
	ProviderRole string `json:"provider_role"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
}

// FullName joins first and last name for display.
func (u AuthUser) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}
