package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		address string
		want    string
	}{
		{"jane.doe@example.com", "Jane Doe"},
		{"ann@example.com", "Ann"},
		{"JOHN_ronald_TOLKIEN@example.com", "John Tolkien"},
		{"jane.doe+news@example.com", "Jane Doe"},
		{"x-y@example.com", "X Y"},
		{"...@example.com", ""},
		{"", ""},
		{"noatsign", "Noatsign"},
	}
	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayName(tt.address))
		})
	}
}

func TestLocalPart(t *testing.T) {
	assert.Equal(t, "jane", LocalPart("jane@example.com"))
	assert.Equal(t, "a@b", LocalPart("a@b@example.com"))
	assert.Equal(t, "@example.com", LocalPart("@example.com"))
}
