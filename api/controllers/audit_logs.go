package controllers

import (
	"net/http"
	"strings"

	"github.com/sentinelworks/sentinel-backend/api/responses"
	"github.com/sentinelworks/sentinel-backend/internal/audit"
	"github.com/sentinelworks/sentinel-backend/pkg/enums"
	pkgerrors "github.com/sentinelworks/sentinel-backend/pkg/errors"
	"github.com/sentinelworks/sentinel-backend/pkg/logger"
)

// AuditLogList pages through the audit trail, optionally filtered by action.
// Admin only.
func AuditLogList(svc *audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := audit.Filters{}
		if raw := strings.TrimSpace(r.URL.Query().Get("action")); raw != "" {
			action, err := enums.ParseAuditAction(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown audit action"))
				return
			}
			filters.Action = &action
		}

		list, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
