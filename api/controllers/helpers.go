package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sentinelworks/sentinel-backend/api/middleware"
	"github.com/sentinelworks/sentinel-backend/api/validators"
	"github.com/sentinelworks/sentinel-backend/internal/pricing"
	"github.com/sentinelworks/sentinel-backend/pkg/enums"
	pkgerrors "github.com/sentinelworks/sentinel-backend/pkg/errors"
	"github.com/sentinelworks/sentinel-backend/pkg/pagination"
)

func actorFromRequest(r *http.Request) (pricing.Actor, error) {
	userID := middleware.UserIDFromContext(r.Context())
	parsed, err := uuid.Parse(userID)
	if err != nil {
		return pricing.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	role, err := parseRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return pricing.Actor{}, err
	}
	return pricing.Actor{ID: parsed, Role: role}, nil
}

func requestMeta(r *http.Request) pricing.RequestMeta {
	meta := pricing.RequestMeta{}
	if ip := clientIP(r); ip != "" {
		meta.IPAddress = &ip
	}
	if ua := r.UserAgent(); ua != "" {
		meta.UserAgent = &ua
	}
	return meta
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if idx := strings.IndexByte(forwarded, ','); idx > 0 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return strings.TrimSpace(forwarded)
	}
	host := r.RemoteAddr
	if idx := strings.LastIndexByte(host, ':'); idx > 0 {
		host = host[:idx]
	}
	return host
}

func pathUUID(r *http.Request, key string) (uuid.UUID, error) {
	raw := chi.URLParam(r, key)
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid id in path")
	}
	return parsed, nil
}

func pageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: r.URL.Query().Get("cursor"),
	}, nil
}

func parseRole(raw string) (enums.UserRole, error) {
	role, err := enums.ParseUserRole(raw)
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return role, nil
}
