package controllers

import (
	"fmt"
	"net/http"

	"github.com/sentinelworks/sentinel-backend/api/responses"
	"github.com/sentinelworks/sentinel-backend/api/validators"
	"github.com/sentinelworks/sentinel-backend/internal/audit"
	"github.com/sentinelworks/sentinel-backend/internal/delivery"
	"github.com/sentinelworks/sentinel-backend/internal/pricing"
	"github.com/sentinelworks/sentinel-backend/pkg/enums"
	pkgerrors "github.com/sentinelworks/sentinel-backend/pkg/errors"
	"github.com/sentinelworks/sentinel-backend/pkg/logger"
	"github.com/sentinelworks/sentinel-backend/pkg/pdf"
)

// QuotationCreate derives the requirement and stores a draft quotation.
func QuotationCreate(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body pricing.CreateQuotationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Create(r.Context(), actor, body, requestMeta(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// QuotationList returns the caller's quotations, or everyone's for admins
// passing all=true.
func QuotationList(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		allUsers := r.URL.Query().Get("all") == "true"
		list, err := svc.List(r.Context(), actor, params, allUsers)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func QuotationGet(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathUUID(r, "quotationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Get(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// QuotationRecompute runs component selection and pricing for a quotation.
func QuotationRecompute(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathUUID(r, "quotationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		body := pricing.RecomputeRequest{}
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		dto, err := svc.Recompute(r.Context(), actor, id, body, requestMeta(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func QuotationDelete(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathUUID(r, "quotationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actor, id, requestMeta(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// QuotationPDF streams the rendered quotation document.
func QuotationPDF(svc pricing.Service, recorder audit.Recorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathUUID(r, "quotationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		doc, ownerID, err := svc.Document(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if ownerID != actor.ID && actor.Role != enums.UserRoleAdmin {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "quotation not found"))
			return
		}

		rendered, err := pdf.Render(*doc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render pdf"))
			return
		}

		if recorder != nil {
			meta := requestMeta(r)
			recorder.Record(r.Context(), audit.Entry{
				UserID:    &actor.ID,
				Action:    enums.AuditActionDownloadPDF,
				Details:   fmt.Sprintf("quotation=%s", id),
				IPAddress: meta.IPAddress,
				UserAgent: meta.UserAgent,
			})
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="quotation-%s.pdf"`, id))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(rendered)
	}
}

// QuotationEmail queues the quotation email for the delivery worker.
func QuotationEmail(svc delivery.EmailService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathUUID(r, "quotationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body delivery.SendEmailRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.Subject = validators.SanitizeString(body.Subject, 200)

		if err := svc.RequestEmail(r.Context(), actor, id, body, requestMeta(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"status": "queued"})
	}
}
