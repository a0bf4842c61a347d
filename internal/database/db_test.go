package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/config"
)

func TestDSN(t *testing.T) {
	mc := config.MySQLConfig{User: "app", Host: "db", Port: "3306", Name: "ticketing"}
	require.Equal(t, "app@tcp(db:3306)/ticketing?charset=utf8mb4&parseTime=true&loc=UTC", DSN(mc))

	mc.Pass = "pw"
	require.Equal(t, "app:pw@tcp(db:3306)/ticketing?charset=utf8mb4&parseTime=true&loc=UTC", DSN(mc))
}
