package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedTraceGenerator(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want string
	}{
		{"custom id", "0190a0b1-7c1e-7a3f-9c41-0f6a1b2c3d4e", "0190a0b1-7c1e-7a3f-9c41-0f6a1b2c3d4e"},
		{"empty uses default", "", "test-trace-default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := NewFixedTraceGenerator(tt.id)
			assert.Equal(t, tt.want, gen.Generate())
			assert.Equal(t, tt.want, gen.Generate(), "every call returns the same id")
		})
	}
}
