package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// QuoteStatus represents the lifecycle status of a quote
type QuoteStatus int

const (
	QuoteStatusDraft    QuoteStatus = 0
	QuoteStatusSent     QuoteStatus = 1
	QuoteStatusViewed   QuoteStatus = 2
	QuoteStatusAccepted QuoteStatus = 3
	QuoteStatusRejected QuoteStatus = 4
	// QuoteStatusExpired is derived on read and never stored
	QuoteStatusExpired QuoteStatus = 5
)

var quoteStatusNames = [...]string{"draft", "sent", "viewed", "accepted", "rejected", "expired"}

// quoteTransitions lists the statuses reachable from each stored status
var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	QuoteStatusDraft:  {QuoteStatusSent},
	QuoteStatusSent:   {QuoteStatusViewed, QuoteStatusAccepted, QuoteStatusRejected},
	QuoteStatusViewed: {QuoteStatusAccepted, QuoteStatusRejected},
}

func (s QuoteStatus) String() string {
	if s < 0 || int(s) >= len(quoteStatusNames) {
		return fmt.Sprintf("QuoteStatus(%d)", int(s))
	}
	return quoteStatusNames[s]
}

// IsValid reports whether s is one of the declared statuses
func (s QuoteStatus) IsValid() bool {
	return s >= QuoteStatusDraft && s <= QuoteStatusExpired
}

// IsTerminal reports whether no further transition is possible
func (s QuoteStatus) IsTerminal() bool {
	return s == QuoteStatusAccepted || s == QuoteStatusRejected
}

// CanExpire reports whether a quote in status s lapses once its validity date passes
func (s QuoteStatus) CanExpire() bool {
	return s == QuoteStatusSent || s == QuoteStatusViewed
}

// CanTransitionTo reports whether moving from s to next follows the lifecycle graph
func (s QuoteStatus) CanTransitionTo(next QuoteStatus) bool {
	for _, allowed := range quoteTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseQuoteStatus parses a status name, case-insensitively
func ParseQuoteStatus(str string) (QuoteStatus, error) {
	name := strings.ToLower(strings.TrimSpace(str))
	for i, n := range quoteStatusNames {
		if n == name {
			return QuoteStatus(i), nil
		}
	}
	return QuoteStatusDraft, fmt.Errorf("unknown quote status %q", str)
}

func (s QuoteStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *QuoteStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		if !QuoteStatus(i).IsValid() {
			return fmt.Errorf("unknown quote status %d", i)
		}
		*s = QuoteStatus(i)
		return nil
	}
	parsed, err := ParseQuoteStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s QuoteStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *QuoteStatus) Scan(value interface{}) error {
	if value == nil {
		*s = QuoteStatusDraft
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = QuoteStatus(v)
	case int:
		*s = QuoteStatus(v)
	case []byte:
		var i int
		if _, err := fmt.Sscanf(string(v), "%d", &i); err != nil {
			return fmt.Errorf("scan quote status: %w", err)
		}
		*s = QuoteStatus(i)
	}
	return nil
}
