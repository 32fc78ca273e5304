package checkout

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/kevin07696/payway-gateway/internal/domain"
	"github.com/kevin07696/payway-gateway/internal/domain/ports"
	svcports "github.com/kevin07696/payway-gateway/internal/services/ports"
	"github.com/kevin07696/payway-gateway/pkg/middleware"
)

const maxBodyBytes = 64 << 10

// Handler exposes the checkout endpoints the storefront calls
type Handler struct {
	service svcports.GatewayService
	ids     ports.IDGenerator
	ips     *middleware.IPResolver
	logger  ports.Logger
}

// NewHandler creates a new checkout handler. A nil ips uses the peer address
// as the customer IP.
func NewHandler(service svcports.GatewayService, ids ports.IDGenerator, ips *middleware.IPResolver, logger ports.Logger) *Handler {
	return &Handler{
		service: service,
		ids:     ids,
		ips:     ips,
		logger:  logger,
	}
}

// Register mounts the checkout routes on mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/payway/publishable-key", h.GetPublishableKey)
	mux.HandleFunc("POST /api/v1/payments/{id}/process", h.ProcessPayment)
	mux.HandleFunc("POST /api/v1/payment-methods", h.CreatePaymentMethod)
	mux.HandleFunc("DELETE /api/v1/payment-methods/{id}", h.DeletePaymentMethod)
}

type publishableKeyResponse struct {
	PublishableKey string `json:"publishable_key"`
}

// GetPublishableKey returns the key for the tokenization widget
// GET /api/v1/payway/publishable-key
func (h *Handler) GetPublishableKey(w http.ResponseWriter, r *http.Request) {
	key, err := h.service.PublishableKey()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, publishableKeyResponse{PublishableKey: key})
}

type processPaymentRequest struct {
	Capture *bool `json:"capture"`
}

// ProcessPayment submits a new payment to PayWay
// POST /api/v1/payments/{id}/process
func (h *Handler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	var req processPaymentRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	payment, err := h.service.GetPayment(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	// Default to immediate capture
	capture := true
	if req.Capture != nil {
		capture = *req.Capture
	}

	payment, err = h.service.CreatePayment(r.Context(), &svcports.CreatePaymentRequest{
		Payment:    payment,
		Capture:    capture,
		CustomerIP: h.ips.ClientIP(r),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, payment)
}

type cardRequest struct {
	Type     string `json:"type"`
	Number   string `json:"number"`
	ExpMonth int    `json:"exp_month"`
	ExpYear  int    `json:"exp_year"`
}

type createPaymentMethodRequest struct {
	OwnerID  int64       `json:"owner_id"`
	Token    string      `json:"payment_credit_card_token"`
	Customer bool        `json:"customer"`
	Card     cardRequest `json:"card"`
}

// CreatePaymentMethod stores the submitted token, optionally as a PayWay customer.
// The id is always generated here so a request cannot address an existing method.
// POST /api/v1/payment-methods
func (h *Handler) CreatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req createPaymentMethodRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	method, err := h.service.CreatePaymentMethod(r.Context(), &domain.PaymentMethod{
		ID:      h.ids.NewID(),
		OwnerID: req.OwnerID,
	}, svcports.PaymentDetails{
		CreditCardToken: req.Token,
		Customer:        req.Customer,
		Card: svcports.CardDetails{
			Type:     req.Card.Type,
			Number:   req.Card.Number,
			ExpMonth: req.Card.ExpMonth,
			ExpYear:  req.Card.ExpYear,
		},
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, method)
}

// DeletePaymentMethod removes a payment method locally and at PayWay
// DELETE /api/v1/payment-methods/{id}
func (h *Handler) DeletePaymentMethod(w http.ResponseWriter, r *http.Request) {
	method, err := h.service.GetPaymentMethod(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.service.DeletePaymentMethod(r.Context(), method); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusFor maps a domain error code to its HTTP status
func statusFor(code domain.ErrorCode) int {
	switch code {
	case domain.ErrorCodeInvalidArgument:
		return http.StatusBadRequest
	case domain.ErrorCodeNotFound:
		return http.StatusNotFound
	case domain.ErrorCodeHardDecline:
		return http.StatusPaymentRequired
	case domain.ErrorCodePaymentGateway, domain.ErrorCodeTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError responds with the sanitized message only; the cause is logged
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.GetErrorCode(err)
	status := statusFor(code)

	if status >= http.StatusInternalServerError {
		h.logger.Error("Checkout request failed",
			ports.String("path", r.URL.Path),
			ports.String("code", string(code)),
			ports.Err(err),
		)
	}

	errCode := strings.ToLower(string(code))
	if errCode == "" {
		errCode = strings.ToLower(string(domain.ErrorCodeInternal))
	}
	writeJSON(w, status, errorResponse{
		Error:   errCode,
		Message: domain.UserMessage(err),
	})
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return domain.NewInvalidArgument("invalid request body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
