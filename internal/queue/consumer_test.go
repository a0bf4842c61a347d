package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/require"
)

func TestFormatLine(t *testing.T) {
	line := FormatLine(TicketingEvent{
		Type:            TypeTableAssigned,
		BuyerName:       "Ana Gomez",
		Table:           "Mesa 5",
		Count:           2,
		RegistrationIDs: []string{"a", "b"},
		OccurredAt:      "2024-10-01T20:00:00Z",
	})
	require.Equal(t, "[2024-10-01T20:00:00Z] table.assigned | buyer=\"Ana Gomez\" | table=\"Mesa 5\" | count=2 | ids=[a,b]\n", line)
}

func TestConsumer_HandleAppends(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	c := NewConsumer("amqp://unused", dir, log.New("test"))

	for _, ev := range []TicketingEvent{
		{Type: TypePurchaseCreated, PurchaseID: "p-1", Count: 2, OccurredAt: "t1"},
		{Type: TypeDataCleared, Action: "clear-all", OccurredAt: "t2"},
	} {
		body, err := json.Marshal(ev)
		require.NoError(t, err)
		require.NoError(t, c.Handle(body))
	}

	b, err := os.ReadFile(filepath.Join(dir, LogFileName))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "purchase_id=p-1")
	require.Contains(t, lines[1], "action=clear-all")
}

func TestConsumer_HandleRejectsGarbage(t *testing.T) {
	c := NewConsumer("amqp://unused", t.TempDir(), log.New("test"))
	require.Error(t, c.Handle([]byte("not json")))
	require.Error(t, c.Handle([]byte(`{"count":1}`)))
}
