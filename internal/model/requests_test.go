package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGuestInput_AcceptsStringsAndObjects(t *testing.T) {
	var req GroupRegistrationRequest
	body := `{"compradorNombre":"Ana Gomez","invitados":["Luis",{"nombre":"Marta"}],"generarFlyers":true}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	require.Equal(t, "Ana Gomez", req.BuyerName)
	require.True(t, req.GenerateFlyers)
	require.Equal(t, []GuestInput{{Name: "Luis"}, {Name: "Marta"}}, req.Guests)
}

func TestGuestInput_RejectsOtherTypes(t *testing.T) {
	var g GuestInput
	require.Error(t, json.Unmarshal([]byte(`42`), &g))
}

func TestRegistration_IsLegacy(t *testing.T) {
	require.True(t, (&Registration{DNI: "12345678"}).IsLegacy())
	require.False(t, (&Registration{PurchaseID: "p"}).IsLegacy())
}
