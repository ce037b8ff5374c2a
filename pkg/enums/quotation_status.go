package enums

import "fmt"

// QuotationStatus maps to the quotation_status enum in Postgres. A quotation
// starts as draft after requirement derivation and becomes priced once the
// selector and aggregator have run. It never goes back to draft.
type QuotationStatus string

const (
	QuotationStatusDraft  QuotationStatus = "draft"
	QuotationStatusPriced QuotationStatus = "priced"
)

var validQuotationStatuses = []QuotationStatus{
	QuotationStatusDraft,
	QuotationStatusPriced,
}

// String implements fmt.Stringer.
func (q QuotationStatus) String() string {
	return string(q)
}

// IsValid reports whether the value is a known QuotationStatus.
func (q QuotationStatus) IsValid() bool {
	for _, candidate := range validQuotationStatuses {
		if candidate == q {
			return true
		}
	}
	return false
}

// ParseQuotationStatus converts raw input into a QuotationStatus.
func ParseQuotationStatus(value string) (QuotationStatus, error) {
	for _, candidate := range validQuotationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quotation status %q", value)
}
