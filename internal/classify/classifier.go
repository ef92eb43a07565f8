// Package classify maps a trade signal plus market context onto a trade
// category or a rejection reason.
package classify

import (
	"fmt"
	"strings"
	"time"

	"github.com/mselser95/polymarket-mirror/pkg/types"
)

// Category is the classification outcome for a signal.
type Category string

const (
	// Certainty marks a conviction bet: extreme price backed by a huge
	// share of the trader's portfolio.
	Certainty Category = "CERTAINTY"
	// Inventory marks a routine position inside the tradeable price band.
	Inventory Category = "INVENTORY"
	// None marks a signal that will not be mirrored.
	None Category = "NONE"
)

// Result pairs a category with a human-readable reason. The reason is
// for observability and tests, never for control flow.
type Result struct {
	Category Category
	Reason   string
}

// Config holds the classification thresholds.
type Config struct {
	MinNotionalUSD        float64
	InventoryMinPrice     float64
	InventoryMaxPrice     float64
	InventoryAllocCeiling float64
	CertaintyHighPrice    float64
	CertaintyLowPrice     float64
	HugeSizeThreshold     float64
	ResolutionCutoff      time.Duration
}

// MarketFilter is the eligibility gate applied before classification.
// The market must match the category label exactly, its question must
// contain both the topic and sub-type filters, and its description must
// name the required resolution source (case-insensitive).
type MarketFilter struct {
	Category         string
	TopicFilter      string
	SubtypeFilter    string
	ResolutionSource string
}

// Eligible reports whether the market passes the filter.
func (f MarketFilter) Eligible(mc *types.MarketContext) bool {
	if mc == nil {
		return false
	}

	if mc.Category != f.Category {
		return false
	}

	if !strings.Contains(mc.Question, f.TopicFilter) {
		return false
	}

	if !strings.Contains(mc.Question, f.SubtypeFilter) {
		return false
	}

	if !strings.Contains(strings.ToLower(mc.Description), strings.ToLower(f.ResolutionSource)) {
		return false
	}

	return true
}

// Classifier applies the category rules. Pure given its inputs: repeated
// calls with the same arguments return the same result.
type Classifier struct {
	cfg Config
}

// New creates a classifier.
func New(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify maps one signal onto a category. allocFraction is the share
// of the tracked trader's portfolio committed by this fill. Rules are
// evaluated in order; the first match wins.
func (c *Classifier) Classify(signal *types.TradeSignal, mc *types.MarketContext, allocFraction float64, now time.Time) Result {
	notional := signal.Notional()

	if notional < c.cfg.MinNotionalUSD {
		ClassificationsTotal.WithLabelValues(string(None)).Inc()
		return Result{
			Category: None,
			Reason:   fmt.Sprintf("below minimum notional ($%.2f < $%.2f)", notional, c.cfg.MinNotionalUSD),
		}
	}

	priceInBand := signal.Price >= c.cfg.InventoryMinPrice && signal.Price <= c.cfg.InventoryMaxPrice
	allocBelowCeiling := allocFraction <= c.cfg.InventoryAllocCeiling

	if priceInBand && allocBelowCeiling {
		ClassificationsTotal.WithLabelValues(string(Inventory)).Inc()
		return Result{
			Category: Inventory,
			Reason: fmt.Sprintf("price %.2f within [%.2f, %.2f], allocation %.1f%% within ceiling",
				signal.Price, c.cfg.InventoryMinPrice, c.cfg.InventoryMaxPrice, allocFraction*100),
		}
	}

	extremePrice := signal.Price >= c.cfg.CertaintyHighPrice || signal.Price <= c.cfg.CertaintyLowPrice
	hugeAllocation := allocFraction >= c.cfg.HugeSizeThreshold

	if extremePrice && hugeAllocation {
		if mc != nil && mc.EndDate != nil && mc.EndDate.Sub(now) < c.cfg.ResolutionCutoff {
			ClassificationsTotal.WithLabelValues(string(None)).Inc()
			return Result{
				Category: None,
				Reason: fmt.Sprintf("too close to resolution (%.0f minutes remaining)",
					mc.EndDate.Sub(now).Minutes()),
			}
		}

		ClassificationsTotal.WithLabelValues(string(Certainty)).Inc()
		return Result{
			Category: Certainty,
			Reason: fmt.Sprintf("extreme price %.2f with %.1f%% portfolio allocation",
				signal.Price, allocFraction*100),
		}
	}

	// Compose every failing sub-condition so a rejected signal is fully
	// diagnosable from its reason alone.
	var misses []string

	if !priceInBand {
		misses = append(misses, fmt.Sprintf("price %.2f outside inventory band [%.2f, %.2f]",
			signal.Price, c.cfg.InventoryMinPrice, c.cfg.InventoryMaxPrice))
	}

	if !allocBelowCeiling {
		misses = append(misses, fmt.Sprintf("allocation %.1f%% above inventory ceiling %.1f%%",
			allocFraction*100, c.cfg.InventoryAllocCeiling*100))
	}

	misses = append(misses, fmt.Sprintf("no certainty match (extreme price: %t, huge allocation: %t)",
		extremePrice, hugeAllocation))

	ClassificationsTotal.WithLabelValues(string(None)).Inc()

	return Result{
		Category: None,
		Reason:   strings.Join(misses, "; "),
	}
}
