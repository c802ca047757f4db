package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Ledger documents are plain JSON numbers, same as the stats counters,
	// so they stay hand-editable.
	decimal.MarshalJSONWithoutQuotes = true
}

// Purchase is a single purchase attempt. It lives in exactly one of the
// pending or confirmed ledgers; ConfirmedAt is set once, on confirmation.
type Purchase struct {
	ConfirmationCode string          `json:"confirmation_code"`
	ItemID           string          `json:"item_id"`
	TransactionID    string          `json:"transaction_id"`
	Price            decimal.Decimal `json:"price"`
	Status           string          `json:"status"` // pending | confirmed
	SubmittedAt      time.Time       `json:"submitted_at"`
	ConfirmedAt      *time.Time      `json:"confirmed_at,omitempty"`
}

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
)

// Ledger is the on-disk shape of the pending and confirmed collections.
type Ledger struct {
	Purchases []Purchase `json:"purchases"`
}

func EmptyLedger() *Ledger {
	return &Ledger{Purchases: []Purchase{}}
}

// ItemStats are the per-item download and revenue counters. All counters are
// monotonically non-decreasing.
type ItemStats struct {
	TotalDownloads int64           `json:"total_downloads"`
	FreeDownloads  int64           `json:"free_downloads"`
	PaidDownloads  int64           `json:"paid_downloads"`
	Revenue        decimal.Decimal `json:"revenue"`
}

// Stats is the aggregate stats document, keyed by item id. Entries are
// created lazily and never deleted.
type Stats struct {
	Books          map[string]*ItemStats `json:"books"`
	TotalRevenue   decimal.Decimal       `json:"total_revenue"`
	TotalPurchases int64                 `json:"total_purchases"`
}

func EmptyStats() *Stats {
	return &Stats{Books: map[string]*ItemStats{}}
}

// Book returns the stats entry for an item, creating a zeroed one if absent.
func (s *Stats) Book(itemID string) *ItemStats {
	if s.Books == nil {
		s.Books = map[string]*ItemStats{}
	}
	entry, ok := s.Books[itemID]
	if !ok {
		entry = &ItemStats{}
		s.Books[itemID] = entry
	}
	return entry
}
