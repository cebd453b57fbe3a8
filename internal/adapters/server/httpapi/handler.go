// Package httpapi provides the REST HTTP adapter for the server surfaces.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/hylla/roost/internal/adapters/server/common"
)

const maxRequestBodyBytes int64 = 1 << 20

// Handler serves the versioned API subrouter mounted under `/api/v1`.
type Handler struct {
	properties common.PropertyService
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hint    string         `json:"hint,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// NewHandler constructs one HTTP API adapter over the property service.
func NewHandler(properties common.PropertyService) *Handler {
	return &Handler{properties: properties}
}

type methodHandler struct {
	method string
	serve  func(h *Handler, w http.ResponseWriter, r *http.Request, id string)
}

// routes lists the handlers per resource kind in Allow-header order.
var routes = map[string][]methodHandler{
	"collection": {
		{http.MethodGet, func(h *Handler, w http.ResponseWriter, r *http.Request, _ string) { h.handleListProperties(w, r) }},
		{http.MethodPost, func(h *Handler, w http.ResponseWriter, r *http.Request, _ string) { h.handleCreateProperty(w, r) }},
	},
	"property": {
		{http.MethodGet, (*Handler).handleGetProperty},
	},
	"status": {
		{http.MethodPut, (*Handler).handleUpdateStatus},
		{http.MethodPost, (*Handler).handleUpdateStatus},
	},
	"history": {
		{http.MethodGet, (*Handler).handleListHistory},
	},
}

// ServeHTTP dispatches on the path below the API prefix.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.properties == nil {
		writeJSONError(w, http.StatusServiceUnavailable, APIError{
			Code:    "service_unavailable",
			Message: "property service is not configured",
		})
		return
	}
	kind, id, ok := matchRoute(r.URL.Path)
	if !ok {
		writeJSONError(w, http.StatusNotFound, APIError{Code: "not_found", Message: "endpoint not found"})
		return
	}
	handlers := routes[kind]
	allowed := make([]string, 0, len(handlers))
	for _, mh := range handlers {
		if mh.method == r.Method {
			mh.serve(h, w, r, id)
			return
		}
		allowed = append(allowed, mh.method)
	}
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeJSONError(w, http.StatusMethodNotAllowed, APIError{Code: "method_not_allowed", Message: "method not allowed"})
}

// matchRoute maps properties, properties/{id} and properties/{id}/{status,history}
// onto a routes key and the property id.
func matchRoute(path string) (kind, id string, ok bool) {
	segments := strings.Split(strings.Trim(strings.TrimSpace(path), "/"), "/")
	if segments[0] != "properties" {
		return "", "", false
	}
	if len(segments) == 1 {
		return "collection", "", true
	}
	id = strings.TrimSpace(segments[1])
	if id == "" || len(segments) > 3 {
		return "", "", false
	}
	if len(segments) == 2 {
		return "property", id, true
	}
	switch segments[2] {
	case "status", "history":
		return segments[2], id, true
	}
	return "", "", false
}

// handleListProperties serves GET `/properties`.
func (h *Handler) handleListProperties(w http.ResponseWriter, r *http.Request) {
	includeClosed, err := parseBoolQuery(r, "include_closed")
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	properties, err := h.properties.ListProperties(r.Context(), common.ListPropertiesRequest{
		IncludeClosed: includeClosed,
		Query:         strings.TrimSpace(r.URL.Query().Get("q")),
	})
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"properties": properties,
	})
}

// handleCreateProperty serves POST `/properties`.
func (h *Handler) handleCreateProperty(w http.ResponseWriter, r *http.Request) {
	var req common.CreatePropertyRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	property, err := h.properties.CreateProperty(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, property)
}

// handleGetProperty serves GET `/properties/{id}`.
func (h *Handler) handleGetProperty(w http.ResponseWriter, r *http.Request, propertyID string) {
	property, err := h.properties.GetProperty(r.Context(), propertyID)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, property)
}

// handleUpdateStatus serves PUT `/properties/{id}/status`.
func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request, propertyID string) {
	var req common.UpdateStatusRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	if strings.TrimSpace(req.Status) == "" {
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: "status is required",
		})
		return
	}
	property, err := h.properties.UpdatePropertyStatus(r.Context(), propertyID, req.Status)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, property)
}

// handleListHistory serves GET `/properties/{id}/history`.
func (h *Handler) handleListHistory(w http.ResponseWriter, r *http.Request, propertyID string) {
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeJSONError(w, http.StatusBadRequest, APIError{
				Code:    "invalid_request",
				Message: "limit must be a non-negative integer",
			})
			return
		}
		limit = parsed
	}
	changes, err := h.properties.ListStatusHistory(r.Context(), propertyID, limit)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"changes": changes,
	})
}

// parseBoolQuery reads one optional boolean query parameter.
func parseBoolQuery(r *http.Request, name string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", name, common.ErrInvalidRequest)
	}
	return v, nil
}

// errorCodes maps sentinel errors onto HTTP statuses and API codes.
var errorCodes = []struct {
	target error
	status int
	code   string
}{
	{common.ErrNotFound, http.StatusNotFound, "not_found"},
	{common.ErrInvalidRequest, http.StatusBadRequest, "invalid_request"},
}

func writeErrorFrom(w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.target) {
			writeJSONError(w, ec.status, APIError{Code: ec.code, Message: err.Error()})
			return
		}
	}
	writeJSONError(w, http.StatusInternalServerError, APIError{Code: "internal_error", Message: err.Error()})
}

// writeJSONError writes one structured error envelope.
func writeJSONError(w http.ResponseWriter, statusCode int, apiErr APIError) {
	writeJSON(w, statusCode, ErrorEnvelope{Error: apiErr})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		statusCode = http.StatusInternalServerError
		body, _ = json.Marshal(ErrorEnvelope{Error: APIError{Code: "encode_error", Message: err.Error()}})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(append(body, '\n'))
}

// decodeJSONBody decodes one required JSON request body with strict shape checks.
func decodeJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode request body: %w", errors.Join(common.ErrInvalidRequest, err))
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request body: trailing content: %w", common.ErrInvalidRequest)
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	default:
		return nil
	}
}
