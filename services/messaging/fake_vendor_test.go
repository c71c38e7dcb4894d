package messaging

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"bookinghub/models"
	"bookinghub/utils"
)

// memoryVendor is an in-memory stand-in for the conversations API.
type memoryVendor struct {
	mu            sync.Mutex
	seq           int
	conversations map[string]*models.Conversation
	participants  map[string][]models.ConversationParticipant
	messages      map[string][]models.Message
	horizons      map[string]ReadHorizon
	failAdd       map[string]error
	calls         int
}

func newMemoryVendor() *memoryVendor {
	return &memoryVendor{
		conversations: map[string]*models.Conversation{},
		participants:  map[string][]models.ConversationParticipant{},
		messages:      map[string][]models.Message{},
		horizons:      map[string]ReadHorizon{},
		failAdd:       map[string]error{},
	}
}

func (v *memoryVendor) nextSid(prefix string) string {
	v.seq++
	return fmt.Sprintf("%s%04d", prefix, v.seq)
}

func (v *memoryVendor) CreateConversation(_ context.Context, friendlyName string, attrs models.ConversationAttributes) (*models.Conversation, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	now := time.Now()
	conv := &models.Conversation{Sid: v.nextSid("CH"), FriendlyName: friendlyName, Attributes: attrs, DateCreated: &now}
	v.conversations[conv.Sid] = conv
	copied := *conv
	return &copied, nil
}

func (v *memoryVendor) FetchConversation(_ context.Context, sid string) (*models.Conversation, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	conv, ok := v.conversations[sid]
	if !ok {
		return nil, &utils.VendorError{Vendor: "messaging", Code: 20404, Status: 404, Message: "conversation not found"}
	}
	copied := *conv
	return &copied, nil
}

func (v *memoryVendor) AddParticipant(_ context.Context, sid, identity string, attrs models.ParticipantAttributes) (*models.ConversationParticipant, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	if err := v.failAdd[identity]; err != nil {
		return nil, err
	}
	for _, p := range v.participants[sid] {
		if p.Identity == identity {
			return nil, &utils.VendorError{Vendor: "messaging", Code: ErrCodeParticipantExists, Status: 409, Message: "Participant already exists"}
		}
	}
	p := models.ConversationParticipant{Sid: v.nextSid("MB"), Identity: identity, Attributes: attrs}
	v.participants[sid] = append(v.participants[sid], p)
	return &p, nil
}

func (v *memoryVendor) FetchParticipant(_ context.Context, sid, participantSid string) (*models.ConversationParticipant, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	for _, p := range v.participants[sid] {
		if p.Sid == participantSid {
			if h, ok := v.horizons[participantSid]; ok {
				p.LastReadMessageIndex = h.Index
			}
			return &p, nil
		}
	}
	return nil, &utils.VendorError{Vendor: "messaging", Code: 20404, Status: 404, Message: "participant not found"}
}

func (v *memoryVendor) ListParticipants(_ context.Context, sid string) ([]models.ConversationParticipant, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	return append([]models.ConversationParticipant{}, v.participants[sid]...), nil
}

func (v *memoryVendor) RemoveParticipant(_ context.Context, sid, participantSid string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	kept := v.participants[sid][:0]
	for _, p := range v.participants[sid] {
		if p.Sid != participantSid {
			kept = append(kept, p)
		}
	}
	v.participants[sid] = kept
	return nil
}

func (v *memoryVendor) UpdateReadHorizon(_ context.Context, _, participantSid string, horizon ReadHorizon) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	v.horizons[participantSid] = horizon
	return nil
}

func (v *memoryVendor) SendMessage(_ context.Context, sid, author, body string, attrs map[string]any) (*models.Message, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	now := time.Now()
	msg := models.Message{Sid: v.nextSid("IM"), Index: len(v.messages[sid]), Author: author, Body: body, Attributes: attrs, DateCreated: &now}
	v.messages[sid] = append(v.messages[sid], msg)
	return &msg, nil
}

func (v *memoryVendor) ListMessages(_ context.Context, sid string, order Order, limit int) ([]models.Message, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	msgs := append([]models.Message{}, v.messages[sid]...)
	if order == OrderDesc {
		sort.Slice(msgs, func(i, j int) bool { return msgs[i].Index > msgs[j].Index })
	}
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func (v *memoryVendor) ListMemberships(_ context.Context, identity string) ([]Membership, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	var out []Membership
	for sid, ps := range v.participants {
		for _, p := range ps {
			if p.Identity == identity {
				out = append(out, Membership{ConversationSid: sid, ParticipantSid: p.Sid})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ConversationSid < out[j].ConversationSid })
	return out, nil
}

func (v *memoryVendor) callCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls
}
