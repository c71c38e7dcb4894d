package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"bookinghub/models"
	"bookinghub/utils"

	"github.com/twilio/twilio-go"
	"github.com/twilio/twilio-go/client"
	conversations "github.com/twilio/twilio-go/rest/conversations/v1"
)

// TwilioVendor implements Vendor on Twilio Conversations. The SDK is
// synchronous and takes no context.
type TwilioVendor struct {
	api *conversations.ApiService
}

func NewTwilioVendor(accountSid, authToken string) (*TwilioVendor, error) {
	if accountSid == "" || authToken == "" {
		return nil, utils.NotConfigured("messaging service")
	}
	rest := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})
	return &TwilioVendor{api: rest.ConversationsV1}, nil
}

func (t *TwilioVendor) CreateConversation(_ context.Context, friendlyName string, attrs models.ConversationAttributes) (*models.Conversation, error) {
	raw, err := json.Marshal(attrs)
	if err != nil {
		return nil, err
	}
	params := &conversations.CreateConversationParams{}
	params.SetFriendlyName(friendlyName)
	params.SetAttributes(string(raw))

	resp, err := t.api.CreateConversation(params)
	if err != nil {
		return nil, twilioError(err)
	}
	return toConversation(resp), nil
}

func (t *TwilioVendor) FetchConversation(_ context.Context, conversationSid string) (*models.Conversation, error) {
	resp, err := t.api.FetchConversation(conversationSid)
	if err != nil {
		return nil, twilioError(err)
	}
	return toConversation(resp), nil
}

func (t *TwilioVendor) AddParticipant(_ context.Context, conversationSid, identity string, attrs models.ParticipantAttributes) (*models.ConversationParticipant, error) {
	raw, err := json.Marshal(attrs)
	if err != nil {
		return nil, err
	}
	params := &conversations.CreateConversationParticipantParams{}
	params.SetIdentity(identity)
	params.SetAttributes(string(raw))

	resp, err := t.api.CreateConversationParticipant(conversationSid, params)
	if err != nil {
		return nil, twilioError(err)
	}
	return toParticipant(resp), nil
}

func (t *TwilioVendor) FetchParticipant(_ context.Context, conversationSid, participantSid string) (*models.ConversationParticipant, error) {
	resp, err := t.api.FetchConversationParticipant(conversationSid, participantSid)
	if err != nil {
		return nil, twilioError(err)
	}
	return toParticipant(resp), nil
}

func (t *TwilioVendor) ListParticipants(_ context.Context, conversationSid string) ([]models.ConversationParticipant, error) {
	params := &conversations.ListConversationParticipantParams{}
	params.SetPageSize(50)

	resp, err := t.api.ListConversationParticipant(conversationSid, params)
	if err != nil {
		return nil, twilioError(err)
	}
	out := make([]models.ConversationParticipant, 0, len(resp))
	for i := range resp {
		out = append(out, *toParticipant(&resp[i]))
	}
	return out, nil
}

func (t *TwilioVendor) RemoveParticipant(_ context.Context, conversationSid, participantSid string) error {
	params := &conversations.DeleteConversationParticipantParams{}
	if err := t.api.DeleteConversationParticipant(conversationSid, participantSid, params); err != nil {
		return twilioError(err)
	}
	return nil
}

func (t *TwilioVendor) UpdateReadHorizon(_ context.Context, conversationSid, participantSid string, horizon ReadHorizon) error {
	params := &conversations.UpdateConversationParticipantParams{}
	if horizon.Index != nil {
		params.SetLastReadMessageIndex(*horizon.Index)
	}
	params.SetLastReadTimestamp(horizon.Timestamp.UTC().Format(time.RFC3339))

	if _, err := t.api.UpdateConversationParticipant(conversationSid, participantSid, params); err != nil {
		return twilioError(err)
	}
	return nil
}

func (t *TwilioVendor) SendMessage(_ context.Context, conversationSid, author, body string, attrs map[string]any) (*models.Message, error) {
	raw, err := json.Marshal(attrs)
	if err != nil {
		return nil, err
	}
	params := &conversations.CreateConversationMessageParams{}
	params.SetAuthor(author)
	params.SetBody(body)
	params.SetAttributes(string(raw))

	resp, err := t.api.CreateConversationMessage(conversationSid, params)
	if err != nil {
		return nil, twilioError(err)
	}
	return toMessage(resp), nil
}

func (t *TwilioVendor) ListMessages(_ context.Context, conversationSid string, order Order, limit int) ([]models.Message, error) {
	params := &conversations.ListConversationMessageParams{}
	params.SetOrder(string(order))
	params.SetLimit(limit)
	if limit < 50 {
		params.SetPageSize(limit)
	}

	resp, err := t.api.ListConversationMessage(conversationSid, params)
	if err != nil {
		return nil, twilioError(err)
	}
	out := make([]models.Message, 0, len(resp))
	for i := range resp {
		out = append(out, *toMessage(&resp[i]))
	}
	return out, nil
}

func (t *TwilioVendor) ListMemberships(_ context.Context, identity string) ([]Membership, error) {
	params := &conversations.ListParticipantConversationParams{}
	params.SetIdentity(identity)

	resp, err := t.api.ListParticipantConversation(params)
	if err != nil {
		return nil, twilioError(err)
	}
	out := make([]Membership, 0, len(resp))
	for _, pc := range resp {
		out = append(out, Membership{
			ConversationSid: deref(pc.ConversationSid),
			ParticipantSid:  deref(pc.ParticipantSid),
		})
	}
	return out, nil
}

// twilioError lifts the SDK's REST error into a VendorError so the code
// (for example 50433) survives to the caller.
func twilioError(err error) error {
	var restErr *client.TwilioRestError
	if errors.As(err, &restErr) {
		return &utils.VendorError{
			Vendor:  "messaging",
			Code:    restErr.Code,
			Status:  restErr.Status,
			Message: restErr.Message,
		}
	}
	return &utils.VendorError{Vendor: "messaging", Status: http.StatusBadGateway, Message: err.Error()}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func toConversation(c *conversations.ConversationsV1Conversation) *models.Conversation {
	conv := &models.Conversation{
		Sid:          deref(c.Sid),
		FriendlyName: deref(c.FriendlyName),
		DateCreated:  c.DateCreated,
	}
	if raw := deref(c.Attributes); raw != "" {
		_ = json.Unmarshal([]byte(raw), &conv.Attributes)
	}
	return conv
}

func toParticipant(p *conversations.ConversationsV1ConversationParticipant) *models.ConversationParticipant {
	participant := &models.ConversationParticipant{
		Sid:                  deref(p.Sid),
		Identity:             deref(p.Identity),
		LastReadMessageIndex: p.LastReadMessageIndex,
	}
	if raw := deref(p.Attributes); raw != "" {
		_ = json.Unmarshal([]byte(raw), &participant.Attributes)
	}
	return participant
}

func toMessage(m *conversations.ConversationsV1ConversationMessage) *models.Message {
	return &models.Message{
		Sid:         deref(m.Sid),
		Index:       deref(m.Index),
		Author:      deref(m.Author),
		Body:        deref(m.Body),
		Attributes:  DecodeAttributes(deref(m.Attributes)),
		DateCreated: m.DateCreated,
	}
}

// DecodeAttributes parses a message attributes blob; absent or malformed
// attributes decode to an empty object.
func DecodeAttributes(raw string) map[string]any {
	attrs := map[string]any{}
	if raw == "" {
		return attrs
	}
	if err := json.Unmarshal([]byte(raw), &attrs); err != nil || attrs == nil {
		return map[string]any{}
	}
	return attrs
}
