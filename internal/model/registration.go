package model

import "time"

// TableUnassigned is the table label every registration starts with.
const TableUnassigned = "Sin asignar"

// StatusActive is the lifecycle flag written at issuance.
const StatusActive = "activo"

// Registration is one guest's ticket.  It is stored as JSON under
// registration:id:{id} and, for legacy single-guest tickets, also under
// registration:dni:{dni}.  The JSON names are part of the persisted format.
//
// Fields:
//
//	ID              - generated at issuance, immutable; encoded into the QR.
//	PurchaseID      - owning purchase; empty for legacy single-guest tickets.
//	DNI             - national id, legacy flow only, unique when present.
//	BuyerName...    - buyer identity copied onto every guest of a group.
//	GuestNumber     - 1-based position inside the group, <= TotalGuests.
//	Table           - TableUnassigned until the table service changes it.
//	TableAssignedAt - set on every table mutation.
type Registration struct {
	ID              string     `json:"id"`
	PurchaseID      string     `json:"purchaseId,omitempty"`
	DNI             string     `json:"dni,omitempty"`
	Name            string     `json:"nombre"`
	Phone           string     `json:"telefono,omitempty"`
	Email           string     `json:"email,omitempty"`
	BuyerName       string     `json:"compradorNombre"`
	BuyerEmail      string     `json:"compradorEmail"`
	BuyerPhone      string     `json:"compradorTelefono"`
	GuestNumber     int        `json:"numeroInvitado"`
	TotalGuests     int        `json:"totalInvitados"`
	Table           string     `json:"mesa"`
	Status          string     `json:"estado"`
	Event           string     `json:"evento,omitempty"`
	RegisteredAt    time.Time  `json:"fechaRegistro"`
	TableAssignedAt *time.Time `json:"fechaAsignacionMesa,omitempty"`
}

// IsLegacy reports whether the registration came from the national-id flow.
func (r *Registration) IsLegacy() bool { return r.DNI != "" }

// Purchase is one buyer's group checkout.  It references its guests by
// registration id only and is never mutated after creation.
type Purchase struct {
	ID              string    `json:"id"`
	BuyerName       string    `json:"compradorNombre"`
	BuyerEmail      string    `json:"compradorEmail"`
	BuyerPhone      string    `json:"compradorTelefono"`
	TotalGuests     int       `json:"totalInvitados"`
	RegistrationIDs []string  `json:"registrationIds"`
	CreatedAt       time.Time `json:"fechaCompra"`
}
