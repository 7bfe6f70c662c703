package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeE164(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		region string
		want   string
	}{
		{"national swedish mobile", "070-123 45 67", "SE", "+46701234567"},
		{"already international", "+46 70 123 45 67", "NL", "+46701234567"},
		{"garbage kept trimmed", "  call me  ", "SE", "call me"},
		{"empty", "   ", "SE", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeE164(tt.input, tt.region))
		})
	}
}
