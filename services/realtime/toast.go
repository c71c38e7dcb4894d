package realtime

import (
	"fmt"

	"bookinghub/models"
)

type toastCopy struct {
	title    string
	customer string
	staff    string
}

var statusCopy = map[string]toastCopy{
	models.BookingStatusConfirmed: {
		title:    "Booking Confirmed",
		customer: "Your %s booking has been confirmed.",
		staff:    "The %s booking is confirmed.",
	},
	models.BookingStatusInProgress: {
		title:    "Service Started",
		customer: "Your %s service is now in progress.",
		staff:    "The %s service has started.",
	},
	models.BookingStatusCompleted: {
		title:    "Service Completed",
		customer: "Your %s service is complete. Thanks for booking!",
		staff:    "The %s service was marked complete.",
	},
	models.BookingStatusCancelled: {
		title:    "Booking Cancelled",
		customer: "Your %s booking has been cancelled.",
		staff:    "The %s booking was cancelled.",
	},
	models.BookingStatusRescheduled: {
		title:    "Booking Rescheduled",
		customer: "Your %s booking has a new time.",
		staff:    "The %s booking was rescheduled.",
	},
	models.BookingStatusPendingPayment: {
		title:    "Payment Required",
		customer: "Complete payment to secure your %s booking.",
		staff:    "The %s booking is awaiting payment.",
	},
	models.BookingStatusPaid: {
		title:    "Payment Received",
		customer: "Payment for your %s booking was received.",
		staff:    "Payment for the %s booking was received.",
	},
}

func serviceLabel(u models.BookingUpdate) string {
	if u.ServiceName != "" {
		return u.ServiceName
	}
	return "service"
}

// ToastFor builds the status-change notification shown to role.
func ToastFor(role models.ListenerRole, u models.BookingUpdate) models.Toast {
	toast := models.Toast{BookingID: u.ID, Status: u.Status, Variant: models.ToastDefault}
	if u.Status == models.BookingStatusCancelled {
		toast.Variant = models.ToastDestructive
	}

	c, ok := statusCopy[u.Status]
	if !ok {
		toast.Title = "Booking Updated"
		toast.Description = fmt.Sprintf("Booking status changed to %s.", u.Status)
		return toast
	}
	toast.Title = c.title
	if role == models.ListenerRoleCustomer {
		toast.Description = fmt.Sprintf(c.customer, serviceLabel(u))
	} else {
		toast.Description = fmt.Sprintf(c.staff, serviceLabel(u))
	}
	return toast
}

// NewBookingToast is raised for inserts seen by providers and businesses.
func NewBookingToast(u models.BookingUpdate) models.Toast {
	desc := fmt.Sprintf("A new %s booking just came in.", serviceLabel(u))
	if u.ScheduledDate != "" {
		desc = fmt.Sprintf("A new %s booking for %s %s.", serviceLabel(u), u.ScheduledDate, u.ScheduledTime)
	}
	return models.Toast{
		Title:       "New Booking",
		Description: desc,
		Variant:     models.ToastDefault,
		BookingID:   u.ID,
		Status:      u.Status,
	}
}
