package enum

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to QuoteStatus
		allowed  bool
	}{
		{QuoteStatusDraft, QuoteStatusSent, true},
		{QuoteStatusDraft, QuoteStatusViewed, false},
		{QuoteStatusDraft, QuoteStatusAccepted, false},
		{QuoteStatusSent, QuoteStatusViewed, true},
		{QuoteStatusSent, QuoteStatusAccepted, true},
		{QuoteStatusViewed, QuoteStatusRejected, true},
		{QuoteStatusViewed, QuoteStatusSent, false},
		{QuoteStatusAccepted, QuoteStatusRejected, false},
		{QuoteStatusRejected, QuoteStatusAccepted, false},
		{QuoteStatusSent, QuoteStatusExpired, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestQuoteStatusJSON(t *testing.T) {
	data, err := json.Marshal(QuoteStatusViewed)
	require.NoError(t, err)
	assert.JSONEq(t, `"viewed"`, string(data))

	var s QuoteStatus
	require.NoError(t, json.Unmarshal([]byte(`"Accepted"`), &s))
	assert.Equal(t, QuoteStatusAccepted, s)

	require.NoError(t, json.Unmarshal([]byte(`1`), &s))
	assert.Equal(t, QuoteStatusSent, s)

	assert.Error(t, json.Unmarshal([]byte(`"archived"`), &s))
	assert.Error(t, json.Unmarshal([]byte(`99`), &s))
	assert.Error(t, json.Unmarshal([]byte(`-1`), &s))
	assert.Equal(t, QuoteStatusSent, s, "rejected input leaves the value untouched")
}

func TestQuoteStatusTerminalAndExpiry(t *testing.T) {
	assert.True(t, QuoteStatusAccepted.IsTerminal())
	assert.True(t, QuoteStatusRejected.IsTerminal())
	assert.False(t, QuoteStatusViewed.IsTerminal())

	assert.True(t, QuoteStatusSent.CanExpire())
	assert.True(t, QuoteStatusViewed.CanExpire())
	assert.False(t, QuoteStatusDraft.CanExpire())
	assert.False(t, QuoteStatusAccepted.CanExpire())
}
