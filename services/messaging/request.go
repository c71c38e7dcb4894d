package messaging

import (
	"strings"

	"bookinghub/utils"
)

// Request is the JSON body of the multiplexed messaging endpoint.
type Request struct {
	Action              string             `json:"action"`
	BookingID           string             `json:"bookingId,omitempty"`
	ConversationType    string             `json:"conversationType,omitempty"`
	Participants        []ParticipantInput `json:"participants,omitempty"`
	Participant         *ParticipantInput  `json:"participant,omitempty"`
	ConversationSid     string             `json:"conversationSid,omitempty"`
	Message             string             `json:"message,omitempty"`
	ParticipantIdentity string             `json:"participantIdentity,omitempty"`
	ParticipantSid      string             `json:"participantSid,omitempty"`
	Identity            string             `json:"identity,omitempty"`
	UserRole            string             `json:"userRole,omitempty"`
	UserName            string             `json:"userName,omitempty"`
}

// Command converts the request into its typed command and validates it.
func (r Request) Command() (Command, error) {
	var cmd Command
	switch r.Action {
	case ActionCreateConversation:
		cmd = r.createConversation()
	case ActionSendMessage:
		cmd = SendMessage{
			ConversationSid:     r.ConversationSid,
			Message:             r.Message,
			ParticipantIdentity: r.ParticipantIdentity,
			UserRole:            r.UserRole,
			UserName:            r.UserName,
		}
	case ActionGetMessages:
		cmd = GetMessages{ConversationSid: r.ConversationSid}
	case ActionGetConversations:
		cmd = GetConversations{Identity: r.identity()}
	case ActionGetParticipants:
		cmd = GetParticipants{ConversationSid: r.ConversationSid}
	case ActionAddParticipant:
		add := AddParticipant{ConversationSid: r.ConversationSid}
		if r.Participant != nil {
			add.Participant = *r.Participant
		}
		cmd = add
	case ActionRemoveParticipant:
		cmd = RemoveParticipant{ConversationSid: r.ConversationSid, ParticipantSid: r.ParticipantSid}
	case ActionMarkAsRead:
		cmd = MarkAsRead{
			ConversationSid:     r.ConversationSid,
			ParticipantSid:      r.ParticipantSid,
			ParticipantIdentity: r.ParticipantIdentity,
		}
	case ActionFindOrCreateBooking:
		cmd = FindOrCreateBookingConversation{Identity: r.identity(), Create: r.createConversation()}
	case "":
		return nil, utils.NewValidationError("action", "action is required")
	default:
		return nil, utils.NewValidationError("action", "unknown action "+r.Action)
	}

	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return cmd, nil
}

func (r Request) createConversation() CreateConversation {
	return CreateConversation{BookingID: r.BookingID, Type: r.ConversationType, Participants: r.Participants}
}

func (r Request) identity() string {
	if r.Identity != "" {
		return r.Identity
	}
	return r.ParticipantIdentity
}

// ActingIdentities lists the participant identities the request reads or
// posts as. Empty entries are left out.
func (r Request) ActingIdentities() []string {
	var id string
	switch r.Action {
	case ActionSendMessage, ActionMarkAsRead:
		id = r.ParticipantIdentity
	case ActionGetConversations, ActionFindOrCreateBooking:
		id = r.identity()
	}
	if id == "" {
		return nil
	}
	return []string{id}
}

// IdentityOwnedBy reports whether identity "{role}-{userId}" names one of ids.
// Roles never contain a dash, so the user id is everything after the first.
func IdentityOwnedBy(identity string, ids ...string) bool {
	role, userID, ok := strings.Cut(identity, "-")
	if !ok || role == "" || userID == "" {
		return false
	}
	for _, id := range ids {
		if id != "" && id == userID {
			return true
		}
	}
	return false
}
