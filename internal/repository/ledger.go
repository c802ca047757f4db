package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"bookstore-purchase-api/internal/model"
)

// LedgerRepository is the only way in or out of the persisted state: three
// independently-loadable JSON documents with whole-document read and
// whole-document replace semantics. There is no field-level update and no
// lock spanning a load/mutate/save sequence; callers doing read-modify-write
// serialize themselves.
type LedgerRepository interface {
	LoadPending() *model.Ledger
	SavePending(ledger *model.Ledger) error
	LoadConfirmed() *model.Ledger
	SaveConfirmed(ledger *model.Ledger) error
	LoadStats() *model.Stats
	SaveStats(stats *model.Stats) error
}

const (
	pendingFile   = "pending.json"
	confirmedFile = "purchases.json"
	statsFile     = "stats.json"
)

type fileLedgerRepository struct {
	dir string

	pendingMu   sync.RWMutex
	confirmedMu sync.RWMutex
	statsMu     sync.RWMutex
}

// NewFileLedgerRepository stores each collection as an indented JSON file
// under dir, safe to inspect or hand-edit between runs.
func NewFileLedgerRepository(dir string) (LedgerRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &fileLedgerRepository{dir: dir}, nil
}

func (r *fileLedgerRepository) LoadPending() *model.Ledger {
	r.pendingMu.RLock()
	defer r.pendingMu.RUnlock()
	return r.loadLedger(pendingFile)
}

func (r *fileLedgerRepository) SavePending(ledger *model.Ledger) error {
	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()
	return r.save(pendingFile, ledger)
}

func (r *fileLedgerRepository) LoadConfirmed() *model.Ledger {
	r.confirmedMu.RLock()
	defer r.confirmedMu.RUnlock()
	return r.loadLedger(confirmedFile)
}

func (r *fileLedgerRepository) SaveConfirmed(ledger *model.Ledger) error {
	r.confirmedMu.Lock()
	defer r.confirmedMu.Unlock()
	return r.save(confirmedFile, ledger)
}

func (r *fileLedgerRepository) LoadStats() *model.Stats {
	r.statsMu.RLock()
	defer r.statsMu.RUnlock()

	data, err := os.ReadFile(filepath.Join(r.dir, statsFile))
	if err != nil {
		return model.EmptyStats()
	}
	var parsed model.Stats
	if err := json.Unmarshal(data, &parsed); err != nil {
		return model.EmptyStats()
	}
	if parsed.Books == nil {
		parsed.Books = map[string]*model.ItemStats{}
	}
	return &parsed
}

func (r *fileLedgerRepository) SaveStats(stats *model.Stats) error {
	r.statsMu.Lock()
	defer r.statsMu.Unlock()
	return r.save(statsFile, stats)
}

// loadLedger returns the stored snapshot, or the empty ledger if the file is
// missing, unreadable or corrupt. Corruption is recovered locally, never
// surfaced.
func (r *fileLedgerRepository) loadLedger(name string) *model.Ledger {
	data, err := os.ReadFile(filepath.Join(r.dir, name))
	if err != nil {
		return model.EmptyLedger()
	}
	var parsed model.Ledger
	if err := json.Unmarshal(data, &parsed); err != nil {
		return model.EmptyLedger()
	}
	if parsed.Purchases == nil {
		parsed.Purchases = []model.Purchase{}
	}
	return &parsed
}

// save replaces the stored snapshot atomically: write a temp file in the
// same directory, then rename over the target, so a concurrent load sees
// either the fully-old or fully-new document.
func (r *fileLedgerRepository) save(name string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(r.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(r.dir, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
