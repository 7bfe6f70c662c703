package entity

import (
	"testing"
	"time"

	"github.com/sangkips/quotebuilder-api/internal/domain/enum"
	"github.com/stretchr/testify/assert"
)

func TestQuoteEffectiveStatus(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	tests := []struct {
		name       string
		status     enum.QuoteStatus
		validUntil *time.Time
		want       enum.QuoteStatus
	}{
		{"sent and lapsed", enum.QuoteStatusSent, &yesterday, enum.QuoteStatusExpired},
		{"viewed and lapsed", enum.QuoteStatusViewed, &yesterday, enum.QuoteStatusExpired},
		{"sent and still valid", enum.QuoteStatusSent, &tomorrow, enum.QuoteStatusSent},
		{"sent without validity", enum.QuoteStatusSent, nil, enum.QuoteStatusSent},
		{"draft never expires", enum.QuoteStatusDraft, &yesterday, enum.QuoteStatusDraft},
		{"accepted never expires", enum.QuoteStatusAccepted, &yesterday, enum.QuoteStatusAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &Quote{Status: tt.status, ValidUntil: tt.validUntil}
			assert.Equal(t, tt.want, q.EffectiveStatus(now))
			assert.Equal(t, tt.want == enum.QuoteStatusExpired, q.IsExpired(now))
		})
	}
}
