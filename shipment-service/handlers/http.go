package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/LuanFernandes23/SagaPattern/shipment-service/application"
	"github.com/LuanFernandes23/SagaPattern/shipment-service/domain"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
)

// ShipmentHandlers contains shipment HTTP handlers
type ShipmentHandlers struct {
	cancelShipment *application.CancelShipment
	getShipment    *application.GetShipment
}

// NewShipmentHandlers creates new shipment handlers
func NewShipmentHandlers(
	cancelShipment *application.CancelShipment,
	getShipment *application.GetShipment,
) *ShipmentHandlers {
	return &ShipmentHandlers{
		cancelShipment: cancelShipment,
		getShipment:    getShipment,
	}
}

// CancelShipment handles manual shipment cancellation requests
func (h *ShipmentHandlers) CancelShipment(w http.ResponseWriter, r *http.Request) {
	shipmentID := chi.URLParam(r, "id")
	if shipmentID == "" {
		http.Error(w, "Shipment ID is required", http.StatusBadRequest)
		return
	}

	var cmd application.CancelShipmentCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	cmd.ShipmentID = shipmentID
	if cmd.Reason == "" {
		cmd.Reason = "cancelled by operator"
	}

	if err := h.cancelShipment.Execute(r.Context(), &cmd); err != nil {
		if errors.Is(err, domain.ErrShipmentNotFound) {
			http.Error(w, "shipment not found", http.StatusNotFound)
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

// GetShipment handles shipment retrieval requests
func (h *ShipmentHandlers) GetShipment(w http.ResponseWriter, r *http.Request) {
	shipmentID := chi.URLParam(r, "id")
	if shipmentID == "" {
		http.Error(w, "Shipment ID is required", http.StatusBadRequest)
		return
	}

	shipment, err := h.getShipment.Execute(r.Context(), &application.GetShipmentQuery{ShipmentID: shipmentID})
	if err != nil {
		if errors.Is(err, domain.ErrShipmentNotFound) {
			http.Error(w, "shipment not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(shipment)
}

// RegisterRoutes registers shipment routes
func (h *ShipmentHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/shipments/{id}", func(r chi.Router) {
		r.Get("/", h.GetShipment)
		r.Put("/cancel", h.CancelShipment)
	})
}
