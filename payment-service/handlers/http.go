package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/LuanFernandes23/SagaPattern/payment-service/application"
	"github.com/LuanFernandes23/SagaPattern/payment-service/domain"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
)

// PaymentHandlers contains payment HTTP handlers
type PaymentHandlers struct {
	refundPayment *application.RefundPayment
	getPayment    *application.GetPayment
}

// NewPaymentHandlers creates new payment handlers
func NewPaymentHandlers(
	refundPayment *application.RefundPayment,
	getPayment *application.GetPayment,
) *PaymentHandlers {
	return &PaymentHandlers{
		refundPayment: refundPayment,
		getPayment:    getPayment,
	}
}

// RefundPayment handles manual refund requests
func (h *PaymentHandlers) RefundPayment(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "id")
	if paymentID == "" {
		http.Error(w, "Payment ID is required", http.StatusBadRequest)
		return
	}

	var cmd application.RefundPaymentCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	cmd.PaymentID = paymentID
	if cmd.Reason == "" {
		cmd.Reason = "refunded by operator"
	}

	if err := h.refundPayment.Execute(r.Context(), &cmd); err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			http.Error(w, "payment not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, domain.ErrInvalidState) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetPayment handles payment retrieval requests
func (h *PaymentHandlers) GetPayment(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "id")
	if paymentID == "" {
		http.Error(w, "Payment ID is required", http.StatusBadRequest)
		return
	}

	payment, err := h.getPayment.Execute(r.Context(), &application.GetPaymentQuery{PaymentID: paymentID})
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			http.Error(w, "payment not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payment)
}

// RegisterRoutes registers payment routes
func (h *PaymentHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/payments/{id}", func(r chi.Router) {
		r.Get("/", h.GetPayment)
		r.Post("/refund", h.RefundPayment)
	})
}
