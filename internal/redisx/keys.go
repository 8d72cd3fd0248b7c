package redisx

import "time"

const (
	// Reprint cache for finalized orders: receipt:{order_id} -> order JSON.
	KeyReceipt = "receipt:%d"

	// Dedup for event processing: dedup:{service}:{event_id}.
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLReceipt = 24 * time.Hour
	TTLDedup   = 48 * time.Hour
)
