package model

import "time"

// RegistrationSummary is what door staff see after a scan.
type RegistrationSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"nombre"`
	DNI          string    `json:"dni,omitempty"`
	Event        string    `json:"evento"`
	GuestNumber  int       `json:"numeroInvitado"`
	TotalGuests  int       `json:"totalInvitados"`
	BuyerName    string    `json:"compradorNombre"`
	Table        string    `json:"mesa"`
	Status       string    `json:"estado"`
	RegisteredAt time.Time `json:"fechaRegistro"`
}

// ValidationResult is the outcome of a scan.  Error is set only when Valid
// is false.
type ValidationResult struct {
	Valid        bool                 `json:"valid"`
	Error        string               `json:"error,omitempty"`
	Registration *RegistrationSummary `json:"registration,omitempty"`
}
