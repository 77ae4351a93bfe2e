package inventory_test

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yms2/mes-core/internal/application/inventory"
	"github.com/yms2/mes-core/internal/domain"
	"github.com/yms2/mes-core/internal/domain/entity"
	"github.com/yms2/mes-core/internal/domain/repository"
	"github.com/yms2/mes-core/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria: un memStore compartido y repos/tx runner sobre él.
// El tx runner toma un snapshot antes de fn y lo restaura si fn falla, para
// reproducir la semántica de rollback de la implementación real.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	inv     map[string]*entity.InventoryRecord
	lots    map[string]*entity.LotRecord
	entries []*entity.AdjustmentEntry
}

func newMemStore() *memStore {
	return &memStore{
		inv:  make(map[string]*entity.InventoryRecord),
		lots: make(map[string]*entity.LotRecord),
	}
}

func lotKey(productCode, lotCode string) string { return productCode + "/" + lotCode }

func (s *memStore) snapshot() *memStore {
	snap := newMemStore()
	for k, v := range s.inv {
		cp := *v
		snap.inv[k] = &cp
	}
	for k, v := range s.lots {
		cp := *v
		snap.lots[k] = &cp
	}
	snap.entries = append(snap.entries, s.entries...)
	return snap
}

func (s *memStore) restore(snap *memStore) {
	s.inv = snap.inv
	s.lots = snap.lots
	s.entries = snap.entries
}

// successEntriesFor entradas SUCCESS de un código, en orden de escritura.
func (s *memStore) successEntriesFor(code string) []*entity.AdjustmentEntry {
	var out []*entity.AdjustmentEntry
	for _, e := range s.entries {
		if e.InventoryCode == code && e.Status == entity.AdjustmentStatusSUCCESS {
			out = append(out, e)
		}
	}
	return out
}

func (s *memStore) failedEntriesFor(code string) []*entity.AdjustmentEntry {
	var out []*entity.AdjustmentEntry
	for _, e := range s.entries {
		if e.InventoryCode == code && e.Status == entity.AdjustmentStatusFAILED {
			out = append(out, e)
		}
	}
	return out
}

// ── InventoryRepository ───────────────────────────────────────────────────────

type fakeInventoryRepo struct {
	s          *memStore
	upsertErr  error
	forUpdateN int // contador de GetForUpdate, para asserts de bloqueo
}

func (r *fakeInventoryRepo) Get(code string) (*entity.InventoryRecord, error) {
	rec, ok := r.s.inv[code]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *fakeInventoryRepo) GetForUpdate(code string) (*entity.InventoryRecord, error) {
	r.forUpdateN++
	return r.Get(code)
}

func (r *fakeInventoryRepo) Upsert(rec *entity.InventoryRecord) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	cp := *rec
	r.s.inv[rec.Code] = &cp
	return nil
}

func (r *fakeInventoryRepo) List(_ context.Context, codeOrName string, limit, offset int) ([]*entity.InventoryRecord, error) {
	var out []*entity.InventoryRecord
	for _, rec := range r.s.inv {
		if codeOrName != "" &&
			!strings.Contains(rec.Code, codeOrName) && !strings.Contains(rec.Name, codeOrName) {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// ── LotRepository ─────────────────────────────────────────────────────────────

type fakeLotRepo struct {
	s *memStore
}

func (r *fakeLotRepo) Get(productCode, lotCode string) (*entity.LotRecord, error) {
	lot, ok := r.s.lots[lotKey(productCode, lotCode)]
	if !ok {
		return nil, nil
	}
	cp := *lot
	return &cp, nil
}

func (r *fakeLotRepo) GetForUpdate(productCode, lotCode string) (*entity.LotRecord, error) {
	return r.Get(productCode, lotCode)
}

func (r *fakeLotRepo) Upsert(lot *entity.LotRecord) error {
	cp := *lot
	r.s.lots[lotKey(lot.ProductCode, lot.LotCode)] = &cp
	return nil
}

func (r *fakeLotRepo) ListByProduct(productCode string) ([]*entity.LotRecord, error) {
	var out []*entity.LotRecord
	for _, lot := range r.s.lots {
		if lot.ProductCode == productCode {
			cp := *lot
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LotCode < out[j].LotCode })
	return out, nil
}

// ── AdjustmentRepository ──────────────────────────────────────────────────────

type fakeAuditRepo struct {
	s         *memStore
	createErr error
}

func (r *fakeAuditRepo) Create(entry *entity.AdjustmentEntry) error {
	if r.createErr != nil {
		return r.createErr
	}
	cp := *entry
	r.s.entries = append(r.s.entries, &cp)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, filter repository.AdjustmentFilter, limit, offset int) ([]*entity.AdjustmentEntry, error) {
	var out []*entity.AdjustmentEntry
	for i := len(r.s.entries) - 1; i >= 0; i-- {
		e := r.s.entries[i]
		if filter.Code != "" && e.InventoryCode != filter.Code {
			continue
		}
		if filter.Actor != "" && e.CreatedBy != filter.Actor {
			continue
		}
		out = append(out, e)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeAuditRepo) Statistics(_ context.Context, filter repository.AdjustmentFilter) (*repository.AdjustmentStatistics, error) {
	stats := &repository.AdjustmentStatistics{
		TotalChanged: decimal.Zero,
		AvgChange:    decimal.Zero,
	}
	for _, e := range r.s.entries {
		if filter.Code != "" && e.InventoryCode != filter.Code {
			continue
		}
		stats.Count++
		if e.Status == entity.AdjustmentStatusSUCCESS {
			stats.SuccessCount++
			stats.TotalChanged = stats.TotalChanged.Add(e.QuantityChange)
		} else {
			stats.FailureCount++
		}
	}
	if stats.SuccessCount > 0 {
		stats.AvgChange = stats.TotalChanged.Div(decimal.NewFromInt(stats.SuccessCount))
	}
	return stats, nil
}

func (r *fakeAuditRepo) ListForPeriod(_ context.Context, from, to time.Time, code string) ([]*entity.AdjustmentEntry, error) {
	var out []*entity.AdjustmentEntry
	for _, e := range r.s.entries {
		if e.Status != entity.AdjustmentStatusSUCCESS {
			continue
		}
		if code != "" && e.InventoryCode != code {
			continue
		}
		if e.CreatedAt.Before(from) || e.CreatedAt.After(to) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *fakeAuditRepo) LastSuccessBefore(_ context.Context, before time.Time, code string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal)
	for _, e := range r.s.entries {
		if e.Status != entity.AdjustmentStatusSUCCESS || !e.CreatedAt.Before(before) {
			continue
		}
		if code != "" && e.InventoryCode != code {
			continue
		}
		out[e.InventoryCode] = e.AfterQuantity
	}
	return out, nil
}

// ── ProductRepository ─────────────────────────────────────────────────────────

type fakeProductRepo struct {
	products map[string]*entity.Product
}

func (r *fakeProductRepo) GetByCode(code string) (*entity.Product, error) {
	p, ok := r.products[code]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// ── TxRunner ──────────────────────────────────────────────────────────────────

type fakeTxRunner struct {
	s         *memStore
	conflicts int // devuelve ErrConcurrencyConflict las primeras N llamadas
	auditErr  error
}

func (r *fakeTxRunner) Run(_ context.Context, fn func(
	invRepo repository.InventoryRepository,
	lotRepo repository.LotRepository,
	auditRepo repository.AdjustmentRepository,
) error) error {
	if r.conflicts > 0 {
		r.conflicts--
		return domain.ErrConcurrencyConflict
	}
	snap := r.s.snapshot()
	err := fn(&fakeInventoryRepo{s: r.s}, &fakeLotRepo{s: r.s}, &fakeAuditRepo{s: r.s, createErr: r.auditErr})
	if err != nil {
		r.s.restore(snap)
		return err
	}
	return nil
}

// ── Harness ───────────────────────────────────────────────────────────────────

type harness struct {
	store      *memStore
	tx         *fakeTxRunner
	products   *fakeProductRepo
	ledger     *inventory.AdjustStockUseCase
	lots       *inventory.LotUseCase
	reconciler *inventory.ReconcileUseCase
}

func newHarness() *harness {
	store := newMemStore()
	tx := &fakeTxRunner{s: store}
	products := &fakeProductRepo{products: make(map[string]*entity.Product)}
	log := logger.Nop()

	ledger := inventory.NewAdjustStockUseCase(tx, &fakeInventoryRepo{s: store}, &fakeAuditRepo{s: store}, log)
	lots := inventory.NewLotUseCase(tx, products, &fakeLotRepo{s: store}, &fakeAuditRepo{s: store}, log)
	reconciler := inventory.NewReconcileUseCase(ledger, lots, log)

	return &harness{
		store:      store,
		tx:         tx,
		products:   products,
		ledger:     ledger,
		lots:       lots,
		reconciler: reconciler,
	}
}

func (h *harness) seedRecord(code, name string, qty int64) {
	h.store.inv[code] = &entity.InventoryRecord{
		Code:     code,
		Name:     name,
		Quantity: decimal.NewFromInt(qty),
		Unit:     "EA",
		Status:   "ACTIVE",
	}
}

func (h *harness) seedProduct(code, name string) {
	h.products.products[code] = &entity.Product{
		Code: code,
		Name: name,
		Type: "RAW",
		Unit: "EA",
	}
}

func (h *harness) quantityOf(code string) decimal.Decimal {
	rec, ok := h.store.inv[code]
	if !ok {
		return decimal.Zero
	}
	return rec.Quantity
}

func (h *harness) lotQuantity(productCode, lotCode string) decimal.Decimal {
	lot, ok := h.store.lots[lotKey(productCode, lotCode)]
	if !ok {
		return decimal.Zero
	}
	return lot.Quantity
}

func d(n int64) decimal.Decimal { return decimal.NewFromInt(n) }
