package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sentinelworks/sentinel-backend/pkg/config"
	"github.com/sentinelworks/sentinel-backend/pkg/db/models"
	"github.com/sentinelworks/sentinel-backend/pkg/enums"
	"github.com/sentinelworks/sentinel-backend/pkg/logger"
	"github.com/sentinelworks/sentinel-backend/pkg/mailer"
	"github.com/sentinelworks/sentinel-backend/pkg/metrics"
	"github.com/sentinelworks/sentinel-backend/pkg/outbox"
	"github.com/sentinelworks/sentinel-backend/pkg/outbox/payloads"
	"github.com/sentinelworks/sentinel-backend/pkg/pdf"
)

const drainJobName = "outbox_drain"

type outboxStore interface {
	ClaimBatch(limit int, now time.Time) ([]models.OutboxEvent, error)
	MarkPublished(id uuid.UUID) error
	MarkFailed(id uuid.UUID, cause error, attempt int, maxAttempts int) error
}

type documentSource interface {
	Document(ctx context.Context, id uuid.UUID) (*pdf.QuotationDocument, uuid.UUID, error)
}

// Processor drains the outbox table and delivers quotation emails. It is the
// single consumer; events retry with backoff until the attempt cap parks them.
type Processor struct {
	store   outboxStore
	quotes  documentSource
	sender  mailer.Sender
	logg    *logger.Logger
	metrics *metrics.JobMetrics
	cfg     config.OutboxConfig
}

// ProcessorParams bundles the dependencies required to build a Processor.
type ProcessorParams struct {
	Store   outboxStore
	Quotes  documentSource
	Sender  mailer.Sender
	Logger  *logger.Logger
	Metrics *metrics.JobMetrics
	Outbox  config.OutboxConfig
}

// NewProcessor constructs the outbox drain worker.
func NewProcessor(params ProcessorParams) (*Processor, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("outbox store is required")
	}
	if params.Quotes == nil {
		return nil, fmt.Errorf("document source is required")
	}
	if params.Sender == nil {
		return nil, fmt.Errorf("mail sender is required")
	}
	return &Processor{
		store:   params.Store,
		quotes:  params.Quotes,
		sender:  params.Sender,
		logg:    params.Logger,
		metrics: params.Metrics,
		cfg:     params.Outbox,
	}, nil
}

// Run polls until the context is cancelled.
func (p *Processor) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.PollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			if _, err := p.ProcessBatch(ctx); err != nil {
				p.metrics.IncFailure(drainJobName)
				if p.logg != nil {
					p.logg.Error(ctx, "outbox batch failed", err)
				}
				continue
			}
			p.metrics.ObserveDuration(drainJobName, time.Since(start))
			p.metrics.IncSuccess(drainJobName)
		}
	}
}

// ProcessBatch claims one batch and handles each event. A per-event failure
// schedules a retry and does not stop the rest of the batch.
func (p *Processor) ProcessBatch(ctx context.Context) (int, error) {
	events, err := p.store.ClaimBatch(p.cfg.BatchSize, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("claim batch: %w", err)
	}

	handled := 0
	for _, event := range events {
		if err := p.handle(ctx, event); err != nil {
			if p.logg != nil {
				logCtx := p.logg.WithFields(ctx, map[string]any{
					"event_id":   event.ID.String(),
					"event_type": event.EventType,
					"attempt":    event.AttemptCount + 1,
				})
				p.logg.Error(logCtx, "outbox event failed", err)
			}
			if markErr := p.store.MarkFailed(event.ID, err, event.AttemptCount, p.cfg.MaxAttempts); markErr != nil {
				return handled, fmt.Errorf("mark failed: %w", markErr)
			}
			continue
		}
		if err := p.store.MarkPublished(event.ID); err != nil {
			return handled, fmt.Errorf("mark published: %w", err)
		}
		handled++
	}
	return handled, nil
}

func (p *Processor) handle(ctx context.Context, event models.OutboxEvent) error {
	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}

	switch event.EventType {
	case enums.EventQuotationEmailRequested:
		var payload payloads.QuotationEmailRequestedEvent
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return fmt.Errorf("decode email payload: %w", err)
		}
		return p.sendQuotationEmail(ctx, payload)
	case enums.EventQuotationPriced:
		// Informational only. Marking it published keeps the table clean.
		if p.logg != nil {
			logCtx := p.logg.WithField(ctx, "aggregate_id", event.AggregateID.String())
			p.logg.Info(logCtx, "quotation priced event drained")
		}
		return nil
	default:
		return fmt.Errorf("unhandled event type %q", event.EventType)
	}
}

func (p *Processor) sendQuotationEmail(ctx context.Context, payload payloads.QuotationEmailRequestedEvent) error {
	doc, _, err := p.quotes.Document(ctx, payload.QuotationID)
	if err != nil {
		return fmt.Errorf("build document: %w", err)
	}

	rendered, err := pdf.Render(*doc)
	if err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}

	body := fmt.Sprintf(
		"Please find attached your quotation %s from %s.\n\nTotal: %s %s\n",
		doc.QuotationID, doc.CompanyName, doc.Currency, doc.TotalCost.StringFixed(2),
	)

	err = p.sender.Send(mailer.Message{
		To:             payload.Recipient,
		Subject:        payload.Subject,
		Body:           body,
		AttachmentPDF:  rendered,
		AttachmentName: fmt.Sprintf("quotation-%s.pdf", payload.QuotationID),
	})
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	if p.logg != nil {
		logCtx := p.logg.WithFields(ctx, map[string]any{
			"quotation_id": payload.QuotationID.String(),
			"recipient":    payload.Recipient,
		})
		p.logg.Info(logCtx, "quotation email sent")
	}
	return nil
}
