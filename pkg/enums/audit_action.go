package enums

import "fmt"

// AuditAction maps to the audit_action enum in Postgres.
type AuditAction string

const (
	AuditActionLogin           AuditAction = "LOGIN"
	AuditActionCreateQuotation AuditAction = "CREATE_QUOTATION"
	AuditActionUpdatePricing   AuditAction = "UPDATE_PRICING"
	AuditActionDownloadPDF     AuditAction = "DOWNLOAD_PDF"
	AuditActionSendEmail       AuditAction = "SEND_EMAIL"
	AuditActionDeleteQuotation AuditAction = "DELETE_QUOTATION"
)

var validAuditActions = []AuditAction{
	AuditActionLogin,
	AuditActionCreateQuotation,
	AuditActionUpdatePricing,
	AuditActionDownloadPDF,
	AuditActionSendEmail,
	AuditActionDeleteQuotation,
}

// String implements fmt.Stringer.
func (a AuditAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AuditAction.
func (a AuditAction) IsValid() bool {
	for _, candidate := range validAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAuditAction converts raw input into an AuditAction.
func ParseAuditAction(value string) (AuditAction, error) {
	for _, candidate := range validAuditActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit action %q", value)
}
