package models

import "time"

// ConversationAttributes is the metadata blob stored on the vendor conversation.
type ConversationAttributes struct {
	BookingID string `json:"bookingId,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	Type      string `json:"type,omitempty"`
}

// Conversation is a vendor-hosted chat thread; Sid is an opaque foreign key.
type Conversation struct {
	Sid                  string                 `json:"sid"`
	FriendlyName         string                 `json:"friendlyName"`
	Attributes           ConversationAttributes `json:"attributes"`
	DateCreated          *time.Time             `json:"dateCreated,omitempty"`
	LastMessage          *Message               `json:"lastMessage,omitempty"`
	UnreadMessagesCount  *int                   `json:"unreadMessagesCount"`
	LastReadMessageIndex *int                   `json:"lastReadMessageIndex"`
}

// ParticipantAttributes is the metadata blob stored on a participant.
type ParticipantAttributes struct {
	Role    string `json:"role,omitempty"`
	Name    string `json:"name,omitempty"`
	UserID  string `json:"userId,omitempty"`
	AddedAt string `json:"addedAt,omitempty"`
}

// ConversationParticipant is a member of a conversation, identified by "{role}-{userId}".
type ConversationParticipant struct {
	Sid                  string                `json:"sid"`
	Identity             string                `json:"identity"`
	Attributes           ParticipantAttributes `json:"attributes"`
	LastReadMessageIndex *int                  `json:"lastReadMessageIndex,omitempty"`
}

// Message is a single chat message.
type Message struct {
	Sid         string         `json:"sid"`
	Index       int            `json:"index"`
	Author      string         `json:"author"`
	Body        string         `json:"body"`
	Attributes  map[string]any `json:"attributes"`
	DateCreated *time.Time     `json:"dateCreated,omitempty"`
}
