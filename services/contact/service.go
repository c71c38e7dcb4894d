package contact

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"bookinghub/models"
	"bookinghub/utils"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Request is the contact form body.
type Request struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

// SubmissionStore persists contact submissions.
type SubmissionStore interface {
	Create(ctx context.Context, s *models.ContactSubmission) (string, error)
	MarkDelivered(ctx context.Context, id string) error
}

type Service struct {
	store    SubmissionStore
	mailer   Mailer
	inbox    string
	validate *validator.Validate
	logger   *zap.Logger
}

// NewService builds the contact flow. A nil mailer or empty inbox stores
// submissions without emailing them.
func NewService(store SubmissionStore, mailer Mailer, inbox string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	return &Service{store: store, mailer: mailer, inbox: inbox, validate: v, logger: logger}
}

// Submit stores the message and emails it to the inbox. Delivery failure is
// logged and does not fail the submission.
func (s *Service) Submit(ctx context.Context, req Request) (*models.ContactSubmission, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	sub := &models.ContactSubmission{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	}
	id, err := s.store.Create(ctx, sub)
	if err != nil {
		return nil, err
	}
	sub.ID = id

	if s.mailer == nil || s.inbox == "" {
		s.logger.Warn("Contact email delivery not configured", zap.String("submissionID", id))
		return sub, nil
	}
	subject := sub.Subject
	if subject == "" {
		subject = "New contact message"
	}
	body := fmt.Sprintf("From: %s <%s>\n\n%s\n", sub.Name, sub.Email, sub.Message)
	if err := s.mailer.Send(s.inbox, sub.Email, "[Contact] "+subject, body); err != nil {
		s.logger.Error("Failed to deliver contact email", zap.String("submissionID", id), zap.Error(err))
		return sub, nil
	}
	if err := s.store.MarkDelivered(ctx, id); err != nil {
		s.logger.Warn("Failed to mark contact submission delivered", zap.String("submissionID", id), zap.Error(err))
		return sub, nil
	}
	sub.Delivered = true
	return sub, nil
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return utils.NewValidationError("", err.Error())
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return utils.NewValidationError(fe.Field(), fe.Field()+" is required")
	case "email":
		return utils.NewValidationError(fe.Field(), "invalid email address")
	case "max":
		return utils.NewValidationError(fe.Field(), fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
	default:
		return utils.NewValidationError(fe.Field(), "invalid value")
	}
}
