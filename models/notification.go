package models

// Toast severities understood by the UI.
const (
	ToastDefault     = "default"
	ToastDestructive = "destructive"
)

// Toast is a transient UI notification raised for a booking change.
type Toast struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant"`
	BookingID   string `json:"booking_id,omitempty"`
	Status      string `json:"status,omitempty"`
}

// PushPayload is the queued push delivery for a toast.
type PushPayload struct {
	Role      ListenerRole      `json:"role"`
	UserID    string            `json:"user_id"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data,omitempty"`
	BookingID string            `json:"booking_id,omitempty"`
}
