package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/stockguard/pkg/messaging"
)

// LowStockEvent reports a product that was classified high risk after a mutation.
type LowStockEvent struct {
	ProductID     string    `json:"product_id"`
	ProductName   string    `json:"product_name"`
	Stock         int       `json:"stock"`
	DailyDemand   int       `json:"daily_demand"`
	Tier          string    `json:"tier"`
	PriorityScore int       `json:"priority_score"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func (e LowStockEvent) Subject() string {
	return messaging.LowStockSubject
}

func (e LowStockEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
