package messaging

import "bookinghub/models"

// Directory indexes an already-loaded conversation list by booking id. It is
// only as fresh as the list it was built from.
type Directory struct {
	byBooking map[string]string
}

func NewDirectory(conversations []models.Conversation) *Directory {
	d := &Directory{byBooking: make(map[string]string, len(conversations))}
	for _, c := range conversations {
		if c.Attributes.BookingID == "" {
			continue
		}
		if _, seen := d.byBooking[c.Attributes.BookingID]; !seen {
			d.byBooking[c.Attributes.BookingID] = c.Sid
		}
	}
	return d
}

// Lookup returns the conversation sid recorded for bookingID.
func (d *Directory) Lookup(bookingID string) (string, bool) {
	if d == nil {
		return "", false
	}
	sid, ok := d.byBooking[bookingID]
	return sid, ok
}
