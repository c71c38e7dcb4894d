package messaging

import (
	"fmt"
	"strings"

	"bookinghub/utils"
)

// Actions accepted by the messaging endpoint.
const (
	ActionCreateConversation  = "create-conversation"
	ActionSendMessage         = "send-message"
	ActionGetMessages         = "get-messages"
	ActionGetConversations    = "get-conversations"
	ActionGetParticipants     = "get-conversation-participants"
	ActionAddParticipant      = "add-participant"
	ActionRemoveParticipant   = "remove-participant"
	ActionMarkAsRead          = "mark-as-read"
	ActionFindOrCreateBooking = "find-or-create-booking-conversation"
)

const defaultConversationType = "booking"

// Identity builds the participant identity "{role}-{userId}".
func Identity(role, userID string) string {
	return role + "-" + userID
}

// Command is one validated messaging request.
type Command interface {
	Action() string
	Validate() error
}

// ParticipantInput describes a participant to add.
type ParticipantInput struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	Name   string `json:"name"`
}

func (p ParticipantInput) validate(field string) error {
	if strings.TrimSpace(p.UserID) == "" {
		return utils.NewValidationError(field+".userId", "userId is required")
	}
	if strings.TrimSpace(p.Role) == "" {
		return utils.NewValidationError(field+".role", "role is required")
	}
	return nil
}

type CreateConversation struct {
	BookingID    string
	Type         string
	Participants []ParticipantInput
}

func (CreateConversation) Action() string { return ActionCreateConversation }

func (c CreateConversation) Validate() error {
	if c.BookingID == "" {
		return utils.NewValidationError("bookingId", "bookingId is required")
	}
	if len(c.Participants) == 0 {
		return utils.NewValidationError("participants", "at least one participant is required")
	}
	for i, p := range c.Participants {
		if err := p.validate(fmt.Sprintf("participants[%d]", i)); err != nil {
			return err
		}
	}
	return nil
}

type SendMessage struct {
	ConversationSid     string
	Message             string
	ParticipantIdentity string
	UserRole            string
	UserName            string
}

func (SendMessage) Action() string { return ActionSendMessage }

func (c SendMessage) Validate() error {
	switch {
	case c.ConversationSid == "":
		return utils.NewValidationError("conversationSid", "conversationSid is required")
	case strings.TrimSpace(c.Message) == "":
		return utils.NewValidationError("message", "message is required")
	case c.ParticipantIdentity == "":
		return utils.NewValidationError("participantIdentity", "participantIdentity is required")
	}
	return nil
}

type GetMessages struct {
	ConversationSid string
}

func (GetMessages) Action() string { return ActionGetMessages }

func (c GetMessages) Validate() error {
	if c.ConversationSid == "" {
		return utils.NewValidationError("conversationSid", "conversationSid is required")
	}
	return nil
}

type GetConversations struct {
	Identity string
}

func (GetConversations) Action() string { return ActionGetConversations }

func (c GetConversations) Validate() error {
	if c.Identity == "" {
		return utils.NewValidationError("identity", "identity is required")
	}
	return nil
}

type GetParticipants struct {
	ConversationSid string
}

func (GetParticipants) Action() string { return ActionGetParticipants }

func (c GetParticipants) Validate() error {
	if c.ConversationSid == "" {
		return utils.NewValidationError("conversationSid", "conversationSid is required")
	}
	return nil
}

type AddParticipant struct {
	ConversationSid string
	Participant     ParticipantInput
}

func (AddParticipant) Action() string { return ActionAddParticipant }

func (c AddParticipant) Validate() error {
	if c.ConversationSid == "" {
		return utils.NewValidationError("conversationSid", "conversationSid is required")
	}
	return c.Participant.validate("participant")
}

type RemoveParticipant struct {
	ConversationSid string
	ParticipantSid  string
}

func (RemoveParticipant) Action() string { return ActionRemoveParticipant }

func (c RemoveParticipant) Validate() error {
	if c.ConversationSid == "" {
		return utils.NewValidationError("conversationSid", "conversationSid is required")
	}
	if c.ParticipantSid == "" {
		return utils.NewValidationError("participantSid", "participantSid is required")
	}
	return nil
}

// MarkAsRead targets a participant by sid, or by identity when no sid is given.
type MarkAsRead struct {
	ConversationSid     string
	ParticipantSid      string
	ParticipantIdentity string
}

func (MarkAsRead) Action() string { return ActionMarkAsRead }

func (c MarkAsRead) Validate() error {
	if c.ConversationSid == "" {
		return utils.NewValidationError("conversationSid", "conversationSid is required")
	}
	if c.ParticipantSid == "" && c.ParticipantIdentity == "" {
		return utils.NewValidationError("participantIdentity", "participantSid or participantIdentity is required")
	}
	return nil
}

// FindOrCreateBookingConversation reuses the booking's conversation from the
// caller's fresh conversation list, creating one only on a miss.
type FindOrCreateBookingConversation struct {
	Identity string
	Create   CreateConversation
}

func (FindOrCreateBookingConversation) Action() string { return ActionFindOrCreateBooking }

func (c FindOrCreateBookingConversation) Validate() error {
	if c.Identity == "" {
		return utils.NewValidationError("identity", "identity is required")
	}
	return c.Create.Validate()
}
