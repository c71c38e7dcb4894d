package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bookinghub/models"
	"bookinghub/utils"

	"go.uber.org/zap"
)

// MessageHistoryLimit caps get-messages.
const MessageHistoryLimit = 100

// Bridge executes messaging commands against the vendor. Each command is a
// single request/response with one error result; nothing is retried.
type Bridge struct {
	vendor   Vendor
	markRead MarkReadMode
	logger   *zap.Logger
	now      func() time.Time
}

func NewBridge(vendor Vendor, markRead MarkReadMode, logger *zap.Logger) *Bridge {
	if markRead == "" {
		markRead = MarkReadLatestIndex
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{vendor: vendor, markRead: markRead, logger: logger, now: time.Now}
}

// ParticipantResult reports the outcome of one participant add.
type ParticipantResult struct {
	Identity       string `json:"identity"`
	Sid            string `json:"sid,omitempty"`
	AlreadyPresent bool   `json:"alreadyPresent,omitempty"`
}

type CreateResult struct {
	ConversationSid string              `json:"conversationSid"`
	FriendlyName    string              `json:"friendlyName"`
	Participants    []ParticipantResult `json:"participants"`
}

type SendResult struct {
	MessageSid  string     `json:"messageSid"`
	Index       int        `json:"index"`
	DateCreated *time.Time `json:"dateCreated,omitempty"`
}

type FindOrCreateResult struct {
	ConversationSid string `json:"conversationSid"`
	Created         bool   `json:"created"`
}

type MarkReadResult struct {
	ParticipantSid       string `json:"participantSid"`
	LastReadMessageIndex *int   `json:"lastReadMessageIndex"`
	Mode                 string `json:"mode"`
}

// Dispatch validates cmd and runs it.
func (b *Bridge) Dispatch(ctx context.Context, cmd Command) (any, error) {
	if cmd == nil {
		return nil, utils.NewValidationError("action", "action is required")
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if b.vendor == nil {
		return nil, utils.NotConfigured("messaging service")
	}

	switch c := cmd.(type) {
	case CreateConversation:
		return b.CreateConversation(ctx, c)
	case SendMessage:
		return b.SendMessage(ctx, c)
	case GetMessages:
		return b.vendorCall(b.vendor.ListMessages(ctx, c.ConversationSid, OrderAsc, MessageHistoryLimit))
	case GetConversations:
		return b.GetConversations(ctx, c.Identity)
	case GetParticipants:
		return b.vendorCall(b.vendor.ListParticipants(ctx, c.ConversationSid))
	case AddParticipant:
		return b.addParticipant(ctx, c.ConversationSid, c.Participant)
	case RemoveParticipant:
		if err := b.vendor.RemoveParticipant(ctx, c.ConversationSid, c.ParticipantSid); err != nil {
			return nil, err
		}
		return map[string]any{"removed": true}, nil
	case MarkAsRead:
		return b.MarkAsRead(ctx, c)
	case FindOrCreateBookingConversation:
		return b.FindOrCreateForIdentity(ctx, c)
	default:
		return nil, utils.NewValidationError("action", "unsupported action "+cmd.Action())
	}
}

func (b *Bridge) vendorCall(result any, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CreateConversation creates the booking conversation and adds every
// participant concurrently. Participants added before a failure stay added.
func (b *Bridge) CreateConversation(ctx context.Context, c CreateConversation) (*CreateResult, error) {
	now := b.now()
	convType := c.Type
	if convType == "" {
		convType = defaultConversationType
	}
	friendlyName := fmt.Sprintf("booking-%s-%d", c.BookingID, now.UnixMilli())
	attrs := models.ConversationAttributes{
		BookingID: c.BookingID,
		CreatedAt: now.UTC().Format(time.RFC3339),
		Type:      convType,
	}

	conv, err := b.vendor.CreateConversation(ctx, friendlyName, attrs)
	if err != nil {
		return nil, err
	}

	results := make([]ParticipantResult, len(c.Participants))
	errs := make([]error, len(c.Participants))
	var wg sync.WaitGroup
	for i, p := range c.Participants {
		wg.Add(1)
		go func(i int, p ParticipantInput) {
			defer wg.Done()
			res, err := b.addParticipant(ctx, conv.Sid, p)
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = *res
		}(i, p)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			b.logger.Error("Adding conversation participant failed",
				zap.String("conversationSid", conv.Sid), zap.String("bookingId", c.BookingID), zap.Error(err))
			return nil, err
		}
	}

	return &CreateResult{ConversationSid: conv.Sid, FriendlyName: conv.FriendlyName, Participants: results}, nil
}

func (b *Bridge) addParticipant(ctx context.Context, conversationSid string, p ParticipantInput) (*ParticipantResult, error) {
	identity := Identity(p.Role, p.UserID)
	attrs := models.ParticipantAttributes{
		Role:    p.Role,
		Name:    p.Name,
		UserID:  p.UserID,
		AddedAt: b.now().UTC().Format(time.RFC3339),
	}

	participant, err := b.vendor.AddParticipant(ctx, conversationSid, identity, attrs)
	if err != nil {
		if isParticipantExists(err) {
			return &ParticipantResult{Identity: identity, AlreadyPresent: true}, nil
		}
		return nil, err
	}
	return &ParticipantResult{Identity: identity, Sid: participant.Sid}, nil
}

func isParticipantExists(err error) bool {
	var vendorErr *utils.VendorError
	return errors.As(err, &vendorErr) && vendorErr.Code == ErrCodeParticipantExists
}

// SendMessage posts a message stamped with the sender's role and name.
func (b *Bridge) SendMessage(ctx context.Context, c SendMessage) (*SendResult, error) {
	attrs := map[string]any{
		"userRole":  c.UserRole,
		"userName":  c.UserName,
		"timestamp": b.now().UTC().Format(time.RFC3339),
	}
	msg, err := b.vendor.SendMessage(ctx, c.ConversationSid, c.ParticipantIdentity, c.Message, attrs)
	if err != nil {
		return nil, err
	}
	return &SendResult{MessageSid: msg.Sid, Index: msg.Index, DateCreated: msg.DateCreated}, nil
}

// GetConversations lists the identity's conversations, fetching metadata,
// the newest message and the caller's read horizon for each in parallel.
func (b *Bridge) GetConversations(ctx context.Context, identity string) ([]models.Conversation, error) {
	memberships, err := b.vendor.ListMemberships(ctx, identity)
	if err != nil {
		return nil, err
	}

	out := make([]models.Conversation, len(memberships))
	errs := make([]error, len(memberships))
	var wg sync.WaitGroup
	for i, m := range memberships {
		wg.Add(1)
		go func(i int, m Membership) {
			defer wg.Done()
			conv, err := b.conversationSummary(ctx, m)
			if err != nil {
				errs[i] = err
				return
			}
			out[i] = *conv
		}(i, m)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (b *Bridge) conversationSummary(ctx context.Context, m Membership) (*models.Conversation, error) {
	var (
		wg          sync.WaitGroup
		conv        *models.Conversation
		last        []models.Message
		participant *models.ConversationParticipant
		convErr     error
		lastErr     error
		partErr     error
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		conv, convErr = b.vendor.FetchConversation(ctx, m.ConversationSid)
	}()
	go func() {
		defer wg.Done()
		last, lastErr = b.vendor.ListMessages(ctx, m.ConversationSid, OrderDesc, 1)
	}()
	go func() {
		defer wg.Done()
		if m.ParticipantSid != "" {
			participant, partErr = b.vendor.FetchParticipant(ctx, m.ConversationSid, m.ParticipantSid)
		}
	}()
	wg.Wait()

	if convErr != nil {
		return nil, convErr
	}
	if lastErr != nil {
		return nil, lastErr
	}
	if partErr != nil {
		return nil, partErr
	}

	if len(last) > 0 {
		msg := last[0]
		conv.LastMessage = &msg
	}
	if participant != nil && conv.LastReadMessageIndex == nil {
		conv.LastReadMessageIndex = participant.LastReadMessageIndex
	}
	if conv.UnreadMessagesCount == nil && conv.LastMessage != nil {
		unread := conv.LastMessage.Index + 1
		if conv.LastReadMessageIndex != nil {
			unread = conv.LastMessage.Index - *conv.LastReadMessageIndex
		}
		if unread < 0 {
			unread = 0
		}
		conv.UnreadMessagesCount = &unread
	}
	return conv, nil
}

// MarkAsRead moves the participant's read horizon according to the
// configured mode.
func (b *Bridge) MarkAsRead(ctx context.Context, c MarkAsRead) (*MarkReadResult, error) {
	participantSid := c.ParticipantSid
	if participantSid == "" {
		participants, err := b.vendor.ListParticipants(ctx, c.ConversationSid)
		if err != nil {
			return nil, err
		}
		for _, p := range participants {
			if p.Identity == c.ParticipantIdentity {
				participantSid = p.Sid
				break
			}
		}
		if participantSid == "" {
			return nil, utils.NewValidationError("participantIdentity", "participant is not a member of the conversation")
		}
	}

	horizon := ReadHorizon{Timestamp: b.now().UTC()}
	if b.markRead == MarkReadLatestIndex {
		latest, err := b.vendor.ListMessages(ctx, c.ConversationSid, OrderDesc, 1)
		if err != nil {
			return nil, err
		}
		if len(latest) > 0 {
			idx := latest[0].Index
			horizon.Index = &idx
		}
	}

	if err := b.vendor.UpdateReadHorizon(ctx, c.ConversationSid, participantSid, horizon); err != nil {
		return nil, err
	}
	return &MarkReadResult{ParticipantSid: participantSid, LastReadMessageIndex: horizon.Index, Mode: string(b.markRead)}, nil
}

// FindOrCreate returns the booking's conversation from dir, or creates one.
func (b *Bridge) FindOrCreate(ctx context.Context, dir *Directory, c CreateConversation) (*FindOrCreateResult, error) {
	if sid, ok := dir.Lookup(c.BookingID); ok {
		return &FindOrCreateResult{ConversationSid: sid}, nil
	}
	created, err := b.CreateConversation(ctx, c)
	if err != nil {
		return nil, err
	}
	return &FindOrCreateResult{ConversationSid: created.ConversationSid, Created: true}, nil
}

// FindOrCreateForIdentity loads the identity's conversations fresh before
// looking the booking up.
func (b *Bridge) FindOrCreateForIdentity(ctx context.Context, c FindOrCreateBookingConversation) (*FindOrCreateResult, error) {
	conversations, err := b.GetConversations(ctx, c.Identity)
	if err != nil {
		return nil, err
	}
	return b.FindOrCreate(ctx, NewDirectory(conversations), c.Create)
}
