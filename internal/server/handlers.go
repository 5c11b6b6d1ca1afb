package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vanshika/tallyline/internal/billing"
	"github.com/vanshika/tallyline/internal/domain"
	"github.com/vanshika/tallyline/internal/repository"
	"github.com/vanshika/tallyline/internal/service"
)

// APIHandlers exposes HTTP handlers for the REST API.
type APIHandlers struct {
	logger  *slog.Logger
	service *service.EvaluationService
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, svc *service.EvaluationService) *APIHandlers {
	return &APIHandlers{
		logger:  logger,
		service: svc,
	}
}

func (h *APIHandlers) handleTotals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var payload totalRequest
	if err := decodeJSON(r, &payload, true); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	inputs, err := decodeLineItems(payload.Items)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := service.ToDomainItems(inputs)
	if err != nil {
		writeItemError(w, err)
		return
	}

	orderID := strings.TrimSpace(payload.OrderID)
	if orderID == "" {
		orderID = uuid.NewString()
	}

	total, err := h.service.TotalOrder(r.Context(), domain.Order{
		ID:         orderID,
		CustomerID: strings.TrimSpace(payload.CustomerID),
		Items:      items,
	})
	if err != nil {
		if errors.Is(err, billing.ErrInvalidElement) {
			writeItemError(w, err)
			return
		}
		h.logger.Error("failed to total order", "error", err, "orderId", orderID)
		writeError(w, http.StatusInternalServerError, "failed to total order")
		return
	}

	respondJSON(w, http.StatusOK, toOrderTotalResponse(total))
}

func (h *APIHandlers) handleUserView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var raw map[string]any
	if err := decodeJSON(r, &raw, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	input, err := userInputFromPayload(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.service.ProjectUser(r.Context(), input.ToDomain())
	if err != nil {
		if errors.Is(err, billing.ErrMissingEmail) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.Error("failed to project user", "error", err, "userId", input.ID)
		writeError(w, http.StatusInternalServerError, "failed to project user")
		return
	}

	respondJSON(w, http.StatusOK, view)
}

// handleOrders serves GET /orders/totals and GET /orders/{id}/total.
func (h *APIHandlers) handleOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/orders/"), "/")
	if rest == "totals" {
		h.listOrderTotals(w, r)
		return
	}

	orderID, ok := strings.CutSuffix(rest, "/total")
	if !ok || orderID == "" || strings.Contains(orderID, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	total, err := h.service.GetOrderTotal(r.Context(), orderID)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, toOrderTotalResponse(total))
	case errors.Is(err, service.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("order %s has no stored total", orderID))
	default:
		h.logger.Error("failed to fetch order total", "error", err, "orderId", orderID)
		writeError(w, http.StatusInternalServerError, "failed to fetch order total")
	}
}

func (h *APIHandlers) listOrderTotals(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, err := h.service.ListOrderTotals(r.Context(), service.ListOrderTotalsParams{
		Page:       parseInt(query.Get("page"), 1),
		PageSize:   parseInt(query.Get("pageSize"), 50),
		CustomerID: query.Get("customerId"),
	})
	if err != nil {
		if errors.Is(err, service.ErrStoreUnavailable) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		h.logger.Error("failed to list order totals", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list order totals")
		return
	}

	response := orderTotalsResponse{
		Items: make([]orderTotalResponse, 0, len(page.Items)),
		Pagination: paginationResponse{
			Page:       page.Pagination.Page,
			PageSize:   page.Pagination.PageSize,
			TotalItems: page.Pagination.TotalItems,
			TotalPages: page.Pagination.TotalPages,
		},
	}
	for _, item := range page.Items {
		response.Items = append(response.Items, toOrderTotalResponse(item))
	}
	respondJSON(w, http.StatusOK, response)
}

type totalRequest struct {
	OrderID    string            `json:"orderId"`
	CustomerID string            `json:"customerId"`
	Items      []json.RawMessage `json:"items"`
}

type orderTotalResponse struct {
	OrderID    string      `json:"orderId"`
	CustomerID string      `json:"customerId,omitempty"`
	Total      json.Number `json:"total"`
	ItemCount  int         `json:"itemCount"`
	ComputedAt string      `json:"computedAt,omitempty"`
}

type paginationResponse struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

type orderTotalsResponse struct {
	Items      []orderTotalResponse `json:"items"`
	Pagination paginationResponse   `json:"pagination"`
}

type itemErrorResponse struct {
	Error string `json:"error"`
	Index int    `json:"index"`
	Field string `json:"field"`
}

func toOrderTotalResponse(total domain.OrderTotal) orderTotalResponse {
	return orderTotalResponse{
		OrderID:    total.OrderID,
		CustomerID: total.CustomerID,
		Total:      json.Number(total.Total.String()),
		ItemCount:  total.ItemCount,
		ComputedAt: formatTime(total.ComputedAt),
	}
}

// userInputFromPayload keeps name, email and id; every other key becomes an
// attribute that the projection ignores.
func userInputFromPayload(raw map[string]any) (service.UserInput, error) {
	var input service.UserInput
	attrs := make(map[string]any, len(raw))
	for key, value := range raw {
		switch key {
		case "id", "name", "email":
			if value == nil {
				continue
			}
			s, ok := value.(string)
			if !ok {
				return service.UserInput{}, fmt.Errorf("%s must be a string", key)
			}
			switch key {
			case "id":
				input.ID = s
			case "name":
				input.Name = s
			case "email":
				input.Email = &s
			}
		default:
			attrs[key] = value
		}
	}
	if len(attrs) > 0 {
		input.Attributes = attrs
	}
	return input, nil
}

// decodeLineItems reads items one by one. Only the envelope is strict, so
// items may carry keys such as sku that the total ignores.
func decodeLineItems(raw []json.RawMessage) ([]service.LineItemInput, error) {
	items := make([]service.LineItemInput, len(raw))
	for idx, msg := range raw {
		if err := json.Unmarshal(msg, &items[idx]); err != nil {
			return nil, fmt.Errorf("item %d: %w", idx, err)
		}
	}
	return items, nil
}

func writeItemError(w http.ResponseWriter, err error) {
	var elemErr *billing.InvalidElementError
	if errors.As(err, &elemErr) {
		respondJSON(w, http.StatusBadRequest, itemErrorResponse{
			Error: elemErr.Error(),
			Index: elemErr.Index,
			Field: elemErr.Field,
		})
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

func decodeJSON(r *http.Request, dst any, strict bool) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	if strict {
		decoder.DisallowUnknownFields()
	}
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	return nil
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
