// Package queue defines message payloads exchanged over the message broker.
package queue

// QueueName is the durable queue every ticketing event is published to.
const QueueName = "ticketing.events"

// Event types.
const (
	TypeRegistrationCreated = "registration.created"
	TypePurchaseCreated     = "purchase.created"
	TypeTableAssigned       = "table.assigned"
	TypeDataCleared         = "data.cleared"
)

// TicketingEvent is published after a state change has been persisted.  It
// carries enough to write an audit trail without reading the store back.
// Fields that do not apply to a given type are left empty.
type TicketingEvent struct {
	Type            string   `json:"type"`
	RegistrationIDs []string `json:"registration_ids,omitempty"`
	PurchaseID      string   `json:"purchase_id,omitempty"`
	BuyerName       string   `json:"buyer_name,omitempty"`
	Table           string   `json:"table,omitempty"`
	Action          string   `json:"action,omitempty"`
	Count           int      `json:"count"`
	OccurredAt      string   `json:"occurred_at"`
}
