package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"scriptorium/pkg/platform/eventlog"
)

func TestBuildSearch(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("no filters", func(t *testing.T) {
		query, args := buildSearch(eventlog.Query{})
		assert.Equal(t, "SELECT id, topic, code, payload, occurred_at FROM event_log ORDER BY seq", query)
		assert.Empty(t, args)
	})

	t.Run("all filters number placeholders in order", func(t *testing.T) {
		query, args := buildSearch(eventlog.Query{
			AfterID: "evt-1",
			Topic:   "user",
			Code:    "validated",
			From:    &from,
			To:      &from,
			Limit:   10,
		})
		assert.Equal(t,
			"SELECT id, topic, code, payload, occurred_at FROM event_log"+
				" WHERE seq > (SELECT seq FROM event_log WHERE id = $1) AND topic = $2 AND code = $3"+
				" AND occurred_at >= $4 AND occurred_at <= $5 ORDER BY seq LIMIT $6",
			query)
		assert.Equal(t, []any{"evt-1", "user", "validated", from, from, 10}, args)
	})
}
