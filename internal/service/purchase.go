package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"bookstore-purchase-api/internal/model"
	"bookstore-purchase-api/internal/repository"
	"bookstore-purchase-api/internal/telemetry"
)

// recentPurchasesLimit caps the admin recent-purchases listing.
const recentPurchasesLimit = 50

// confirmationCodeBytes gives an 8-hex-char code: short enough to read over
// the phone, large enough that collisions among outstanding attempts are
// negligible. No uniqueness check is performed.
const confirmationCodeBytes = 4

// PurchaseService owns the purchase-attempt state machine:
// pending -> confirmed (terminal) or pending -> deleted (terminal).
type PurchaseService interface {
	Submit(ctx context.Context, itemID, transactionID string, price decimal.Decimal) (string, error)
	Confirm(ctx context.Context, code string) (*model.Purchase, error)
	Reject(ctx context.Context, code string) error
	RecordDownload(ctx context.Context, itemID string, isFree bool) error

	CheckStatus(ctx context.Context, itemID, transactionID string) *CheckResult
	Poll(ctx context.Context, code, itemID string) *PollResult

	PendingList(ctx context.Context) *model.Ledger
	RecentPurchases(ctx context.Context) []model.Purchase
	Stats(ctx context.Context) *model.Stats
}

// CheckResult is the outcome of a status lookup keyed by what the client
// already knows: its own item id and transaction id.
type CheckResult struct {
	Purchased        bool
	ConfirmedAt      *time.Time
	Status           string
	ConfirmationCode string
}

// PollResult is the narrow answer for fixed-interval client polling.
type PollResult struct {
	Approved bool
	Status   string
}

// Status strings reported by the lookup surfaces, distinct from the ledger
// record statuses in the model package.
const (
	StatusPending  = "pending"
	StatusNotFound = "not_found"
)

type purchaseServiceImpl struct {
	ledgerRepo repository.LedgerRepository

	// mu serializes all read-modify-write sequences across the three
	// documents; the repository only guarantees atomicity per save.
	mu sync.Mutex
}

func NewPurchaseService(ledgerRepo repository.LedgerRepository) PurchaseService {
	return &purchaseServiceImpl{
		ledgerRepo: ledgerRepo,
	}
}

// Submit validates the attempt, enforces transaction-id uniqueness against
// the confirmed ledger only (simultaneous pending duplicates are tolerated
// until one is confirmed), and appends the attempt as pending. Returns the
// generated confirmation code.
func (s *purchaseServiceImpl) Submit(ctx context.Context, itemID, transactionID string, price decimal.Decimal) (string, error) {
	if itemID == "" || transactionID == "" {
		return "", ErrInvalidRequest
	}
	if price.IsNegative() {
		return "", ErrInvalidRequest
	}

	code, err := generateConfirmationCode()
	if err != nil {
		return "", fmt.Errorf("generate confirmation code: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	confirmed := s.ledgerRepo.LoadConfirmed()
	for _, p := range confirmed.Purchases {
		if p.TransactionID == transactionID {
			telemetry.DuplicateTransactions.Inc()
			return "", ErrDuplicateTransaction
		}
	}

	pending := s.ledgerRepo.LoadPending()
	pending.Purchases = append(pending.Purchases, model.Purchase{
		ConfirmationCode: code,
		ItemID:           itemID,
		TransactionID:    transactionID,
		Price:            price,
		Status:           model.StatusPending,
		SubmittedAt:      time.Now(),
	})
	if err := s.ledgerRepo.SavePending(pending); err != nil {
		return "", fmt.Errorf("persist pending ledger: %w", err)
	}

	telemetry.PurchasesSubmitted.Inc()
	return code, nil
}

// Confirm moves the attempt carrying code from the pending ledger to the
// confirmed ledger and rolls its price into the stats document. The
// confirmed ledger is persisted before the pending one: a crash in between
// duplicates the record across both ledgers, which is detectable, instead of
// losing it, which is not. Not idempotent; a second call finds nothing.
func (s *purchaseServiceImpl) Confirm(ctx context.Context, code string) (*model.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := s.ledgerRepo.LoadPending()

	// Every record carrying the code is swept out of pending; the last one
	// is the one confirmed. Collisions among outstanding codes are
	// negligible, so in practice this is a single record.
	var match *model.Purchase
	remaining := make([]model.Purchase, 0, len(pending.Purchases))
	for _, p := range pending.Purchases {
		if p.ConfirmationCode == code {
			p := p
			match = &p
			continue
		}
		remaining = append(remaining, p)
	}
	if match == nil {
		return nil, ErrNotFound
	}

	now := time.Now()
	match.Status = model.StatusConfirmed
	match.ConfirmedAt = &now

	confirmed := s.ledgerRepo.LoadConfirmed()
	confirmed.Purchases = append(confirmed.Purchases, *match)
	if err := s.ledgerRepo.SaveConfirmed(confirmed); err != nil {
		return nil, fmt.Errorf("persist confirmed ledger: %w", err)
	}

	pending.Purchases = remaining
	if err := s.ledgerRepo.SavePending(pending); err != nil {
		return nil, fmt.Errorf("persist pending ledger: %w", err)
	}

	if err := s.applyConfirmationStats(match.ItemID, match.Price); err != nil {
		return nil, err
	}

	telemetry.PurchasesConfirmed.Inc()
	return match, nil
}

// Reject deletes the matching attempt from the pending ledger. Destructive:
// no tombstone and no confirmed-ledger entry is written.
func (s *purchaseServiceImpl) Reject(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := s.ledgerRepo.LoadPending()

	found := false
	remaining := make([]model.Purchase, 0, len(pending.Purchases))
	for _, p := range pending.Purchases {
		if p.ConfirmationCode == code {
			found = true
			continue
		}
		remaining = append(remaining, p)
	}
	if !found {
		return ErrNotFound
	}

	pending.Purchases = remaining
	if err := s.ledgerRepo.SavePending(pending); err != nil {
		return fmt.Errorf("persist pending ledger: %w", err)
	}

	telemetry.PurchasesRejected.Inc()
	return nil
}

// RecordDownload is an independent telemetry signal with no relation to any
// purchase attempt; it may count items never sold through this system.
func (s *purchaseServiceImpl) RecordDownload(ctx context.Context, itemID string, isFree bool) error {
	if itemID == "" {
		return ErrInvalidRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stats := s.ledgerRepo.LoadStats()
	entry := stats.Book(itemID)
	entry.TotalDownloads++
	if isFree {
		entry.FreeDownloads++
	} else {
		entry.PaidDownloads++
	}
	if err := s.ledgerRepo.SaveStats(stats); err != nil {
		return fmt.Errorf("persist stats: %w", err)
	}

	telemetry.DownloadsTracked.Inc()
	return nil
}

// CheckStatus reveals only records matching both fields exactly: the
// confirmed ledger first, then pending, where the stored confirmation code
// is returned so a client that lost it can recover it.
func (s *purchaseServiceImpl) CheckStatus(ctx context.Context, itemID, transactionID string) *CheckResult {
	confirmed := s.ledgerRepo.LoadConfirmed()
	for _, p := range confirmed.Purchases {
		if p.ItemID == itemID && p.TransactionID == transactionID && p.Status == model.StatusConfirmed {
			return &CheckResult{Purchased: true, ConfirmedAt: p.ConfirmedAt}
		}
	}

	pending := s.ledgerRepo.LoadPending()
	for _, p := range pending.Purchases {
		if p.ItemID == itemID && p.TransactionID == transactionID {
			return &CheckResult{
				Status:           StatusPending,
				ConfirmationCode: p.ConfirmationCode,
			}
		}
	}

	return &CheckResult{Status: StatusNotFound}
}

// Poll answers the cheap fixed-interval probe. The confirmed branch matches
// code and item; the pending branch matches the code alone, an asymmetry
// kept from the source system.
func (s *purchaseServiceImpl) Poll(ctx context.Context, code, itemID string) *PollResult {
	confirmed := s.ledgerRepo.LoadConfirmed()
	for _, p := range confirmed.Purchases {
		if p.ConfirmationCode == code && p.ItemID == itemID {
			return &PollResult{Approved: true}
		}
	}

	pending := s.ledgerRepo.LoadPending()
	for _, p := range pending.Purchases {
		if p.ConfirmationCode == code {
			return &PollResult{Status: StatusPending}
		}
	}

	return &PollResult{Status: StatusNotFound}
}

func (s *purchaseServiceImpl) PendingList(ctx context.Context) *model.Ledger {
	return s.ledgerRepo.LoadPending()
}

// RecentPurchases returns the newest confirmed purchases first, capped at
// 50, with storage order as the stable tie-break.
func (s *purchaseServiceImpl) RecentPurchases(ctx context.Context) []model.Purchase {
	confirmed := s.ledgerRepo.LoadConfirmed()

	purchases := make([]model.Purchase, len(confirmed.Purchases))
	copy(purchases, confirmed.Purchases)

	sort.SliceStable(purchases, func(i, j int) bool {
		return confirmedAt(purchases[i]).After(confirmedAt(purchases[j]))
	})

	if len(purchases) > recentPurchasesLimit {
		purchases = purchases[:recentPurchasesLimit]
	}
	return purchases
}

func (s *purchaseServiceImpl) Stats(ctx context.Context) *model.Stats {
	return s.ledgerRepo.LoadStats()
}

// applyConfirmationStats rolls a confirmed purchase into the per-item and
// global counters. Runs after the ledger writes; paid_downloads may double
// count against RecordDownload, a known accounting property of the system.
func (s *purchaseServiceImpl) applyConfirmationStats(itemID string, price decimal.Decimal) error {
	stats := s.ledgerRepo.LoadStats()

	entry := stats.Book(itemID)
	entry.PaidDownloads++
	entry.Revenue = entry.Revenue.Add(price)

	stats.TotalPurchases++
	stats.TotalRevenue = stats.TotalRevenue.Add(price)

	if err := s.ledgerRepo.SaveStats(stats); err != nil {
		return fmt.Errorf("persist stats: %w", err)
	}
	return nil
}

func confirmedAt(p model.Purchase) time.Time {
	if p.ConfirmedAt == nil {
		return time.Time{}
	}
	return *p.ConfirmedAt
}

func generateConfirmationCode() (string, error) {
	buf := make([]byte, confirmationCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}
