package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Jane Doe", displayName("jane", "jane.doe@example.com"))
	assert.Equal(t, "Ann", displayName("", "ann@example.com"))
	assert.Equal(t, "jane", displayName("jane", ""))
	assert.Equal(t, "Anonymous", displayName("", ""))
}

func TestAuthorJSONRoundTrip(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	a, err := NewAuthor("usr-1", "jane", "jane.doe@example.com", now)
	require.NoError(t, err)

	raw, err := json.Marshal(a)
	require.NoError(t, err)

	var back Author
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, a.ID(), back.ID())
	assert.Equal(t, "Jane Doe", back.DisplayName())
	assert.True(t, now.Equal(back.CreatedAt()))
	assert.Zero(t, back.PendingEvents())
	assert.Equal(t, 1, a.PendingEvents())
}

func TestReaderLifecycle(t *testing.T) {
	now := time.Now()
	r, err := NewReader("usr-1", "jane", "jane@example.com", now)
	require.NoError(t, err)
	r.Delete(now)

	events, err := r.Events()
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.True(t, events[0].Is(TopicReader, CodeCreated))
	assert.True(t, events[1].Is(TopicReader, CodeDeleted))
	assert.True(t, r.IsDeleted())
}
