package sale

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicSaleFinalized = "sale.finalized"

	EventSaleFinalized = "SaleFinalized"
)

// PartitionKey keys messages by order id so events for one order stay ordered.
func PartitionKey(orderID int64) []byte {
	return []byte(strconv.FormatInt(orderID, 10))
}

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type SaleFinalizedPayload struct {
	OrderID    int64           `json:"order_id"`
	OperatorID int64           `json:"operator_id"`
	Total      decimal.Decimal `json:"total"`
	Paid       decimal.Decimal `json:"paid"`
	Change     decimal.Decimal `json:"change"`
	LineCount  int             `json:"line_count"`
}
