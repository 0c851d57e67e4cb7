package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "scriptorium/pkg/domain-errors"
)

// light is a minimal status type: off -> on -> broken, on <-> off.
type light string

const (
	lightOff    light = "off"
	lightOn     light = "on"
	lightBroken light = "broken"
)

func (l light) switchOn() (light, error) {
	if l != lightOff {
		return l, dErrors.New(dErrors.CodeConflict, "not_off")
	}
	return lightOn, nil
}

func (l light) switchOff() (light, error) {
	if l != lightOn {
		return l, dErrors.New(dErrors.CodeConflict, "not_on")
	}
	return lightOff, nil
}

func (l light) burn() (light, error) {
	if l != lightOn {
		return l, dErrors.New(dErrors.CodeConflict, "not_on")
	}
	return lightBroken, nil
}

func TestStatusHistory_TransitionsThroughStatusType(t *testing.T) {
	h := NewStatusHistory(lightOff, now)
	assert.Equal(t, lightOff, h.Current())
	assert.Equal(t, 1, h.Len())

	steps := []func(light) (light, error){
		light.switchOn, light.switchOff, light.switchOn, light.burn,
		light.switchOn, light.switchOff, light.burn,
	}
	accepted := 0
	for i, step := range steps {
		next, err := step(h.Current())
		if err != nil {
			assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
			continue
		}
		h.Add(next, now.Add(time.Duration(i)*time.Second))
		accepted++
		assert.Equal(t, next, h.Current(), "current reflects the last accepted transition")
	}

	assert.Equal(t, 4, accepted)
	assert.Equal(t, accepted+1, h.Len())
	assert.Equal(t, lightBroken, h.Current())
}

// TestStatusHistory_AddDoesNotValidate documents the validate-then-append split:
// the history records whatever it is given.
func TestStatusHistory_AddDoesNotValidate(t *testing.T) {
	h := NewStatusHistory(lightBroken, now)
	h.Add(lightOn, now)
	assert.Equal(t, lightOn, h.Current(), "bypassing the status type corrupts history")
	assert.Equal(t, 2, h.Len())
}

func TestStatusHistory_DatesNeverDecrease(t *testing.T) {
	h := NewStatusHistory(lightOff, now)
	h.Add(lightOn, now.Add(-time.Hour))
	h.Add(lightOff, now.Add(time.Hour))

	items := h.Items()
	require.Len(t, items, 3)
	for i := 1; i < len(items); i++ {
		assert.False(t, items[i].Date.Before(items[i-1].Date))
	}
	assert.Equal(t, now, items[1].Date)
}

func TestStatusHistory_ItemsAreCopies(t *testing.T) {
	h := NewStatusHistory(lightOff, now)
	items := h.Items()
	items[0].Status = lightBroken
	assert.Equal(t, lightOff, h.Current())

	clone := h.Clone()
	clone.Add(lightOn, now)
	assert.Equal(t, 1, h.Len())
	assert.Equal(t, 2, clone.Len())
}

func TestStatusHistory_JSON(t *testing.T) {
	h := NewStatusHistory(lightOff, now)
	h.Add(lightOn, now.Add(time.Second))

	raw, err := json.Marshal(h)
	require.NoError(t, err)

	var restored StatusHistory[light]
	require.NoError(t, json.Unmarshal(raw, &restored))
	assert.Equal(t, h.Items(), restored.Items())

	err = json.Unmarshal([]byte(`[]`), &restored)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	err = json.Unmarshal([]byte(`[{"status":"off","date":"2024-06-01T10:00:00Z"},{"status":"on","date":"2024-06-01T09:00:00Z"}]`), &restored)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

type holder struct {
	history StatusHistory[light]
}

func (h holder) History() StatusHistory[light] { return h.history }

func TestStatusHistory_ReadableFromReturnedValue(t *testing.T) {
	history := NewStatusHistory(lightOff, now)
	history.Add(lightOn, now.Add(time.Second))
	owner := holder{history: history}

	assert.Equal(t, lightOn, owner.History().Current())
	assert.Equal(t, 2, owner.History().Len())
	assert.Equal(t, lightOn, owner.History().CurrentItem().Status)
	assert.Len(t, owner.History().Items(), 2)
}

func TestStatusHistory_ZeroValue(t *testing.T) {
	var h StatusHistory[light]
	assert.NotPanics(t, func() {
		assert.Equal(t, light(""), h.Current())
		assert.Equal(t, StatusItem[light]{}, h.CurrentItem())
	})
	assert.Equal(t, 0, h.Len())

	h.Add(lightOff, now)
	assert.Equal(t, lightOff, h.Current())
}
