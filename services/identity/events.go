package identity

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"bookinghub/models"
	"bookinghub/utils"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

const eventPrefix = "identity.verification_session."

// Event is a verified identity webhook event.
type Event interface {
	EventID() string
	OccurredAt() time.Time
	Ref() SessionRef
}

// SessionRef identifies the delivery and the verification session it is about.
type SessionRef struct {
	ID        string
	At        time.Time
	SessionID string
	UserID    string
}

func (r SessionRef) EventID() string       { return r.ID }
func (r SessionRef) OccurredAt() time.Time { return r.At }
func (r SessionRef) Ref() SessionRef       { return r }

type VerificationVerified struct{ SessionRef }

type VerificationRequiresInput struct {
	SessionRef
	LastError string
}

type VerificationProcessing struct{ SessionRef }

type VerificationCanceled struct{ SessionRef }

type Ignored struct {
	SessionRef
	Type string
}

// Status maps a variant onto the stored status string.
func Status(ev Event) (string, bool) {
	switch ev.(type) {
	case VerificationVerified:
		return models.VerificationVerified, true
	case VerificationRequiresInput:
		return models.VerificationRequiresInput, true
	case VerificationProcessing:
		return models.VerificationProcessing, true
	case VerificationCanceled:
		return models.VerificationCanceled, true
	default:
		return "", false
	}
}

// ParseEvent verifies the signature and decodes the identity event variant.
func ParseEvent(payload []byte, signature, secret string) (Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrInvalidSignature, err)
	}

	ref := SessionRef{ID: ev.ID, At: time.Unix(ev.Created, 0).UTC()}
	kind := string(ev.Type)
	if !strings.HasPrefix(kind, eventPrefix) {
		return Ignored{SessionRef: ref, Type: kind}, nil
	}

	var vs stripe.IdentityVerificationSession
	if err := json.Unmarshal(ev.Data.Raw, &vs); err != nil {
		return nil, fmt.Errorf("decode verification session: %w", err)
	}
	ref.SessionID = vs.ID
	ref.UserID = vs.Metadata["user_id"]

	switch strings.TrimPrefix(kind, eventPrefix) {
	case "verified":
		return VerificationVerified{ref}, nil
	case "requires_input":
		out := VerificationRequiresInput{SessionRef: ref}
		if vs.LastError != nil {
			out.LastError = vs.LastError.Reason
		}
		return out, nil
	case "processing":
		return VerificationProcessing{ref}, nil
	case "canceled":
		return VerificationCanceled{ref}, nil
	default:
		return Ignored{SessionRef: ref, Type: kind}, nil
	}
}
