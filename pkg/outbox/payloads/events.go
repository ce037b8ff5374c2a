package payloads

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuotationEmailRequestedEvent asks the worker to render the quotation PDF
// and mail it to the recipient.
type QuotationEmailRequestedEvent struct {
	QuotationID uuid.UUID `json:"quotation_id"`
	Recipient   string    `json:"recipient"`
	Subject     string    `json:"subject,omitempty"`
}

// QuotationPricedEvent is emitted after a successful recompute.
type QuotationPricedEvent struct {
	QuotationID uuid.UUID       `json:"quotation_id"`
	TotalCost   decimal.Decimal `json:"total_cost"`
}
