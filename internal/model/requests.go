package model

import (
	"bytes"
	"encoding/json"
)

// SingleRegistrationRequest is the legacy single-guest form.
type SingleRegistrationRequest struct {
	Name  string `json:"nombre"`
	Phone string `json:"telefono"`
	DNI   string `json:"dni"`
	Email string `json:"email"`
}

// GroupRegistrationRequest is the buyer/guest checkout form.  GenerateFlyers
// asks the server to email the tickets; when false the caller renders the
// flyers itself from the returned registrations.
type GroupRegistrationRequest struct {
	BuyerName      string       `json:"compradorNombre"`
	BuyerEmail     string       `json:"compradorEmail"`
	BuyerPhone     string       `json:"compradorTelefono"`
	Guests         []GuestInput `json:"invitados"`
	GenerateFlyers bool         `json:"generarFlyers"`
}

// GuestInput is one guest line of a group form.  Clients send either a bare
// name or an object with a "nombre" field.
type GuestInput struct {
	Name string `json:"nombre"`
}

func (g *GuestInput) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &g.Name)
	}
	type plain GuestInput
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*g = GuestInput(p)
	return nil
}

// AssignTableRequest targets a single registration.
type AssignTableRequest struct {
	RegistrationID string `json:"registrationId"`
	Table          string `json:"mesa"`
}

// AssignGroupTableRequest targets every registration of a buyer.
type AssignGroupTableRequest struct {
	BuyerName string `json:"compradorNombre"`
	Table     string `json:"mesa"`
}

// ValidateRequest carries a raw scanned QR payload.
type ValidateRequest struct {
	QRData string `json:"qrData"`
}

// AdminRequest drives the maintenance endpoint.
type AdminRequest struct {
	Action   string `json:"action"`
	AdminKey string `json:"adminKey"`
}
