// Package risk classifies products into reorder risk tiers.
package risk

import (
	"errors"

	"github.com/abgdnv/stockguard/internal/inventory/store"
)

// DefaultLowLimit is the stock level below which a product is always high risk.
const DefaultLowLimit = 10

// ErrNegativeDemand is returned when a daily demand below zero is classified.
var ErrNegativeDemand = errors.New("daily demand cannot be negative")

// Tier is a risk classification.
type Tier string

const (
	HighRisk   Tier = "HIGH_RISK"
	MediumRisk Tier = "MEDIUM_RISK"
	Safe       Tier = "SAFE"
)

var recommendations = map[Tier]string{
	HighRisk:   "Reorder immediately.",
	MediumRisk: "Monitor closely, plan reorder.",
	Safe:       "Stock levels healthy.",
}

// Assessment is the outcome of classifying one product.
type Assessment struct {
	Tier           Tier   `json:"tier"`
	Recommendation string `json:"recommendation"`
	PriorityScore  int    `json:"priority_score"`
	WeekForecast   int    `json:"week_forecast"`
}

// Classify maps stock and daily demand to a risk tier.
// The low-stock check is evaluated before the priority score and always wins.
func Classify(stock, dailyDemand, lowLimit int) (Assessment, error) {
	if dailyDemand < 0 {
		return Assessment{}, ErrNegativeDemand
	}

	a := Assessment{
		PriorityScore: 2*dailyDemand - stock,
		WeekForecast:  7 * dailyDemand,
	}
	switch {
	case stock < lowLimit:
		a.Tier = HighRisk
	case a.PriorityScore > 0:
		a.Tier = MediumRisk
	default:
		a.Tier = Safe
	}
	a.Recommendation = recommendations[a.Tier]
	return a, nil
}

// Classifier binds Classify to a configured low-stock threshold.
type Classifier struct {
	LowLimit int
}

// NewClassifier creates a Classifier. A non-positive lowLimit selects DefaultLowLimit.
func NewClassifier(lowLimit int) Classifier {
	if lowLimit <= 0 {
		lowLimit = DefaultLowLimit
	}
	return Classifier{LowLimit: lowLimit}
}

// Assess classifies a product.
func (c Classifier) Assess(p store.Product) (Assessment, error) {
	return Classify(p.Stock, p.DailyDemand, c.LowLimit)
}

// IsLowStock reports whether stock is below the threshold.
func (c Classifier) IsLowStock(stock int) bool {
	return stock < c.LowLimit
}
