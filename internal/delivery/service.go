package delivery

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sentinelworks/sentinel-backend/internal/audit"
	"github.com/sentinelworks/sentinel-backend/internal/pricing"
	"github.com/sentinelworks/sentinel-backend/pkg/config"
	"github.com/sentinelworks/sentinel-backend/pkg/enums"
	pkgerrors "github.com/sentinelworks/sentinel-backend/pkg/errors"
	"github.com/sentinelworks/sentinel-backend/pkg/outbox"
	"github.com/sentinelworks/sentinel-backend/pkg/outbox/payloads"
)

// SendEmailRequest is the payload for requesting a quotation email.
type SendEmailRequest struct {
	Recipient string `json:"recipient" validate:"required,email"`
	Subject   string `json:"subject,omitempty"`
}

// EmailService enqueues quotation emails for the delivery worker.
type EmailService interface {
	RequestEmail(ctx context.Context, actor pricing.Actor, quotationID uuid.UUID, req SendEmailRequest, meta pricing.RequestMeta) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type quotationReader interface {
	Get(ctx context.Context, actor pricing.Actor, id uuid.UUID) (*pricing.QuotationDTO, error)
}

type emitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type emailService struct {
	db      txRunner
	quotes  quotationReader
	events  emitter
	audit   audit.Recorder
	company config.QuotationConfig
}

// EmailServiceParams bundles the dependencies for the enqueue flow.
type EmailServiceParams struct {
	DB        txRunner
	Quotes    quotationReader
	Events    emitter
	Audit     audit.Recorder
	Quotation config.QuotationConfig
}

// NewEmailService constructs the email enqueue service.
func NewEmailService(params EmailServiceParams) (EmailService, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if params.Quotes == nil {
		return nil, fmt.Errorf("quotation reader is required")
	}
	if params.Events == nil {
		return nil, fmt.Errorf("outbox emitter is required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit recorder is required")
	}
	return &emailService{
		db:      params.DB,
		quotes:  params.Quotes,
		events:  params.Events,
		audit:   params.Audit,
		company: params.Quotation,
	}, nil
}

// RequestEmail validates access and state, then queues the send through the
// outbox so it commits atomically with nothing else half done. The actual
// SMTP call happens in the worker.
func (s *emailService) RequestEmail(ctx context.Context, actor pricing.Actor, quotationID uuid.UUID, req SendEmailRequest, meta pricing.RequestMeta) error {
	quotation, err := s.quotes.Get(ctx, actor, quotationID)
	if err != nil {
		return err
	}
	if quotation.Status != enums.QuotationStatusPriced {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "quotation has not been priced yet")
	}

	subject := req.Subject
	if subject == "" {
		subject = fmt.Sprintf("Your %s quotation", s.company.CompanyName)
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventQuotationEmailRequested,
			AggregateType: enums.AggregateQuotation,
			AggregateID:   quotationID,
			Actor:         &outbox.ActorRef{UserID: actor.ID, Role: actor.Role.String()},
			Data: payloads.QuotationEmailRequestedEvent{
				QuotationID: quotationID,
				Recipient:   req.Recipient,
				Subject:     subject,
			},
			Version: 1,
		})
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queue email")
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:    &actor.ID,
		Action:    enums.AuditActionSendEmail,
		Details:   fmt.Sprintf("quotation=%s recipient=%s", quotationID, req.Recipient),
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})
	return nil
}
