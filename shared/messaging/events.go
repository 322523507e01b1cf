package messaging

import (
	"github.com/LuanFernandes23/SagaPattern/shared/models"
)

// Message type tags. The tag in the envelope is the discriminant used for
// dispatch; every queue receives every message and discards the types it does
// not recognize.
const (
	// Order events
	TypeOrderCreated   = "OrderCreated"
	TypeOrderCancelled = "OrderCancelled"

	// Payment commands and outcomes
	TypeProcessPayment  = "ProcessPayment"
	TypePaymentApproved = "PaymentApproved"
	TypePaymentRefused  = "PaymentRefused"
	TypePaymentRefunded = "PaymentRefunded"

	// Shipment commands and outcomes
	TypeProcessShipment   = "ProcessShipment"
	TypeShipmentProcessed = "ShipmentProcessed"
	TypeShipmentFailed    = "ShipmentFailed"
)

// Event variants. Each carries only its own fields; the envelope type tag
// selects the variant.

// OrderCreated is the root event that starts a saga run.
type OrderCreated struct {
	OrderID         models.ID    `json:"orderId"`
	CustomerID      models.ID    `json:"customerId"`
	Total           models.Money `json:"total"`
	DeliveryAddress string       `json:"deliveryAddress"`
	PaymentMethod   string       `json:"paymentMethod"`
}

// OrderCancelled terminates a saga run with a reason.
type OrderCancelled struct {
	OrderID models.ID `json:"orderId"`
	Reason  string    `json:"reason"`
}

// ProcessPayment commands the payment service to capture the order total.
type ProcessPayment struct {
	OrderID models.ID    `json:"orderId"`
	Amount  models.Money `json:"amount"`
	Method  string       `json:"method"`
}

// PaymentApproved reports a captured payment.
type PaymentApproved struct {
	OrderID models.ID `json:"orderId"`
}

// PaymentRefused reports a declined payment.
type PaymentRefused struct {
	OrderID models.ID `json:"orderId"`
	Reason  string    `json:"reason"`
}

// PaymentRefunded commands the compensation of a captured payment.
type PaymentRefunded struct {
	OrderID models.ID `json:"orderId"`
}

// ProcessShipment commands the shipment service to dispatch the order.
type ProcessShipment struct {
	OrderID         models.ID `json:"orderId"`
	DeliveryAddress string    `json:"deliveryAddress"`
}

// ShipmentProcessed reports a dispatched shipment; terminal success for the saga.
type ShipmentProcessed struct {
	ShipmentID models.ID `json:"shipmentId"`
	OrderID    models.ID `json:"orderId"`
}

// ShipmentFailed reports a failed shipment and triggers compensation.
type ShipmentFailed struct {
	OrderID models.ID `json:"orderId"`
	Reason  string    `json:"reason"`
}

// Decode returns the typed event variant for the message, or nil when the
// type tag is not part of the saga contract. Consumers treat a nil result as
// a message to discard.
func Decode(msg *Message) (interface{}, error) {
	switch msg.Type {
	case TypeOrderCreated:
		var e OrderCreated
		return &e, msg.UnmarshalPayload(&e)
	case TypeOrderCancelled:
		var e OrderCancelled
		return &e, msg.UnmarshalPayload(&e)
	case TypeProcessPayment:
		var e ProcessPayment
		return &e, msg.UnmarshalPayload(&e)
	case TypePaymentApproved:
		var e PaymentApproved
		return &e, msg.UnmarshalPayload(&e)
	case TypePaymentRefused:
		var e PaymentRefused
		return &e, msg.UnmarshalPayload(&e)
	case TypePaymentRefunded:
		var e PaymentRefunded
		return &e, msg.UnmarshalPayload(&e)
	case TypeProcessShipment:
		var e ProcessShipment
		return &e, msg.UnmarshalPayload(&e)
	case TypeShipmentProcessed:
		var e ShipmentProcessed
		return &e, msg.UnmarshalPayload(&e)
	case TypeShipmentFailed:
		var e ShipmentFailed
		return &e, msg.UnmarshalPayload(&e)
	default:
		return nil, nil
	}
}
