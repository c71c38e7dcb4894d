package notification

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
)

// Pusher delivers one push to one device token.
type Pusher interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

// FCMPusher sends through Firebase Cloud Messaging.
type FCMPusher struct {
	client *messaging.Client
}

func NewFCMPusher(client *messaging.Client) *FCMPusher {
	return &FCMPusher{client: client}
}

func (p *FCMPusher) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "booking_updates",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}
	if _, err := p.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("FCMPusher: failed to send FCM message: %w", err)
	}
	return nil
}
