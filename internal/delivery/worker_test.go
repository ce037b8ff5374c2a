package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sentinelworks/sentinel-backend/pkg/config"
	"github.com/sentinelworks/sentinel-backend/pkg/db/models"
	"github.com/sentinelworks/sentinel-backend/pkg/enums"
	"github.com/sentinelworks/sentinel-backend/pkg/mailer"
	"github.com/sentinelworks/sentinel-backend/pkg/outbox"
	"github.com/sentinelworks/sentinel-backend/pkg/outbox/payloads"
	"github.com/sentinelworks/sentinel-backend/pkg/pdf"
)

type stubStore struct {
	pending   []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
}

func (s *stubStore) ClaimBatch(limit int, now time.Time) ([]models.OutboxEvent, error) {
	if len(s.pending) > limit {
		return s.pending[:limit], nil
	}
	return s.pending, nil
}

func (s *stubStore) MarkPublished(id uuid.UUID) error {
	s.published = append(s.published, id)
	return nil
}

func (s *stubStore) MarkFailed(id uuid.UUID, cause error, attempt int, maxAttempts int) error {
	s.failed = append(s.failed, id)
	return nil
}

type stubDocs struct {
	doc *pdf.QuotationDocument
	err error
}

func (s *stubDocs) Document(ctx context.Context, id uuid.UUID) (*pdf.QuotationDocument, uuid.UUID, error) {
	if s.err != nil {
		return nil, uuid.Nil, s.err
	}
	return s.doc, uuid.New(), nil
}

type stubSender struct {
	sent []mailer.Message
	err  error
}

func (s *stubSender) Send(msg mailer.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func emailEvent(t *testing.T, quotationID uuid.UUID) models.OutboxEvent {
	t.Helper()
	data, err := json.Marshal(payloads.QuotationEmailRequestedEvent{
		QuotationID: quotationID,
		Recipient:   "client@example.com",
		Subject:     "Your quote",
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	envelope, err := json.Marshal(outbox.PayloadEnvelope{
		Version: 1, EventID: uuid.NewString(), OccurredAt: time.Now(), Data: data,
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventQuotationEmailRequested,
		AggregateType: enums.AggregateQuotation,
		AggregateID:   quotationID,
		Payload:       envelope,
	}
}

func testDocument() *pdf.QuotationDocument {
	return &pdf.QuotationDocument{
		CompanyName: "Sentinel Pricing",
		Currency:    "INR",
		QuotationID: uuid.NewString(),
		Customer:    "client@example.com",
		GeneratedAt: time.Now(),
		CameraCount: 50,
		StorageDays: 30,
		Lines: []pdf.LineItem{
			{Label: "CPU", Detail: "Xeon Silver", Cost: decimal.NewFromInt(95000)},
		},
		TotalCost: decimal.NewFromInt(113000),
	}
}

func newProcessor(t *testing.T, store *stubStore, docs *stubDocs, sender *stubSender) *Processor {
	t.Helper()
	p, err := NewProcessor(ProcessorParams{
		Store:  store,
		Quotes: docs,
		Sender: sender,
		Outbox: config.OutboxConfig{BatchSize: 10, PollIntervalMS: 100, MaxAttempts: 3},
	})
	if err != nil {
		t.Fatalf("new processor: %v", err)
	}
	return p
}

func TestProcessBatchSendsEmail(t *testing.T) {
	quotationID := uuid.New()
	store := &stubStore{pending: []models.OutboxEvent{emailEvent(t, quotationID)}}
	sender := &stubSender{}
	p := newProcessor(t, store, &stubDocs{doc: testDocument()}, sender)

	handled, err := p.ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if handled != 1 {
		t.Fatalf("expected 1 handled event, got %d", handled)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.To != "client@example.com" || msg.Subject != "Your quote" {
		t.Fatalf("unexpected message header %+v", msg)
	}
	if len(msg.AttachmentPDF) == 0 || string(msg.AttachmentPDF[:4]) != "%PDF" {
		t.Fatalf("attachment is not a pdf")
	}
	if msg.AttachmentName != fmt.Sprintf("quotation-%s.pdf", quotationID) {
		t.Fatalf("unexpected attachment name %q", msg.AttachmentName)
	}
	if len(store.published) != 1 {
		t.Fatalf("event not marked published")
	}
}

func TestProcessBatchMarksFailureAndContinues(t *testing.T) {
	badID, goodID := uuid.New(), uuid.New()
	bad := emailEvent(t, badID)
	bad.Payload = json.RawMessage(`{"version":1,"data":"not-an-object"}`)
	good := emailEvent(t, goodID)

	store := &stubStore{pending: []models.OutboxEvent{bad, good}}
	sender := &stubSender{}
	p := newProcessor(t, store, &stubDocs{doc: testDocument()}, sender)

	handled, err := p.ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if handled != 1 {
		t.Fatalf("expected only the good event handled, got %d", handled)
	}
	if len(store.failed) != 1 || store.failed[0] != bad.ID {
		t.Fatalf("bad event not marked failed: %+v", store.failed)
	}
	if len(store.published) != 1 || store.published[0] != good.ID {
		t.Fatalf("good event not published: %+v", store.published)
	}
}

func TestProcessBatchSMTPFailureRetries(t *testing.T) {
	store := &stubStore{pending: []models.OutboxEvent{emailEvent(t, uuid.New())}}
	sender := &stubSender{err: errors.New("connection refused")}
	p := newProcessor(t, store, &stubDocs{doc: testDocument()}, sender)

	handled, err := p.ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if handled != 0 {
		t.Fatalf("nothing should be handled, got %d", handled)
	}
	if len(store.failed) != 1 {
		t.Fatalf("event should be marked failed for retry")
	}
	if len(store.published) != 0 {
		t.Fatalf("failed event must not be published")
	}
}

func TestProcessBatchDrainsPricedEvents(t *testing.T) {
	data, err := json.Marshal(payloads.QuotationPricedEvent{
		QuotationID: uuid.New(),
		TotalCost:   decimal.NewFromInt(113000),
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	envelope, err := json.Marshal(outbox.PayloadEnvelope{Version: 1, Data: data})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	event := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventQuotationPriced,
		AggregateType: enums.AggregateQuotation,
		AggregateID:   uuid.New(),
		Payload:       envelope,
	}

	store := &stubStore{pending: []models.OutboxEvent{event}}
	sender := &stubSender{}
	p := newProcessor(t, store, &stubDocs{doc: testDocument()}, sender)

	handled, err := p.ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if handled != 1 {
		t.Fatalf("priced event should drain, got %d handled", handled)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("priced events must not send mail")
	}
}
