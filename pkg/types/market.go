package types

import (
	"encoding/json"
	"strings"
	"time"
)

// MarketContext describes the market a signal belongs to, as returned by
// the Gamma API. It is fetched fresh for every decision and never cached
// across signals.
type MarketContext struct {
	ConditionID string     `json:"conditionId"`
	Question    string     `json:"question"`
	Slug        string     `json:"slug"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Closed      bool       `json:"closed"`
	Active      bool       `json:"active"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	TickSize    float64    `json:"orderPriceMinTickSize"`
	NegRisk     bool       `json:"negRisk"`
	Tokens      []Token    `json:"-"`             // Populated from outcomes + clobTokenIds
	Outcomes    string     `json:"outcomes"`     // JSON string: "[\"Yes\", \"No\"]"
	ClobTokens  string     `json:"clobTokenIds"` // JSON string: "[\"token1\", \"token2\"]"
}

// UnmarshalJSON custom unmarshaler to parse outcomes and clobTokenIds into Tokens.
func (m *MarketContext) UnmarshalJSON(data []byte) error {
	type Alias MarketContext
	aux := &struct {
		*Alias
	}{
		Alias: (*Alias)(m),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	// Parse outcomes and clobTokenIds to populate Tokens
	if m.Outcomes != "" && m.ClobTokens != "" {
		var outcomes []string
		var tokenIDs []string

		if err := json.Unmarshal([]byte(m.Outcomes), &outcomes); err == nil {
			if err := json.Unmarshal([]byte(m.ClobTokens), &tokenIDs); err == nil {
				m.Tokens = make([]Token, 0, len(outcomes))
				for i, outcome := range outcomes {
					if i < len(tokenIDs) {
						m.Tokens = append(m.Tokens, Token{
							TokenID: tokenIDs[i],
							Outcome: outcome,
						})
					}
				}
			}
		}
	}

	return nil
}

// Token represents a market outcome token.
type Token struct {
	TokenID string  `json:"token_id"`
	Outcome string  `json:"outcome"`
	Price   float64 `json:"price,omitempty"`
}

// TokenForOutcome returns the token whose outcome label matches,
// case-insensitively, or nil when the market has no such outcome.
func (m *MarketContext) TokenForOutcome(outcome string) *Token {
	for i := range m.Tokens {
		if strings.EqualFold(m.Tokens[i].Outcome, outcome) {
			return &m.Tokens[i]
		}
	}

	return nil
}

// MinutesToResolution returns the number of minutes until the market's
// end date, or -1 when no end date is known.
func (m *MarketContext) MinutesToResolution(now time.Time) float64 {
	if m.EndDate == nil {
		return -1
	}

	return m.EndDate.Sub(now).Minutes()
}
