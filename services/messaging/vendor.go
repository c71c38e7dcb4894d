package messaging

import (
	"context"
	"time"

	"bookinghub/models"
)

// ErrCodeParticipantExists is the vendor code for adding an identity that is
// already a member of the conversation.
const ErrCodeParticipantExists = 50433

// Order is a message listing order.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// Membership links an identity to one conversation it participates in.
type Membership struct {
	ConversationSid string
	ParticipantSid  string
}

// ReadHorizon is what mark-as-read writes on a participant. A nil Index
// leaves the index untouched and only stamps the read timestamp.
type ReadHorizon struct {
	Index     *int
	Timestamp time.Time
}

// Vendor is the conversational-messaging API the bridge drives.
type Vendor interface {
	CreateConversation(ctx context.Context, friendlyName string, attrs models.ConversationAttributes) (*models.Conversation, error)
	FetchConversation(ctx context.Context, conversationSid string) (*models.Conversation, error)

	AddParticipant(ctx context.Context, conversationSid, identity string, attrs models.ParticipantAttributes) (*models.ConversationParticipant, error)
	FetchParticipant(ctx context.Context, conversationSid, participantSid string) (*models.ConversationParticipant, error)
	ListParticipants(ctx context.Context, conversationSid string) ([]models.ConversationParticipant, error)
	RemoveParticipant(ctx context.Context, conversationSid, participantSid string) error
	UpdateReadHorizon(ctx context.Context, conversationSid, participantSid string, horizon ReadHorizon) error

	SendMessage(ctx context.Context, conversationSid, author, body string, attrs map[string]any) (*models.Message, error)
	ListMessages(ctx context.Context, conversationSid string, order Order, limit int) ([]models.Message, error)

	ListMemberships(ctx context.Context, identity string) ([]Membership, error)
}
