package commands_test

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"testing"
	"time"

	"booking/internal/core/domain/model/audit"
	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/order"
	"booking/internal/core/domain/model/payment"
	"booking/internal/core/domain/model/payout"
	"booking/internal/core/domain/model/proprofile"
	"booking/internal/core/ports"
	"booking/internal/pkg/errs"

	"github.com/stretchr/testify/require"
)

// memStore is an in-memory database with the same compare-and-swap rules as the
// postgres repositories. A unit of work copies the committed state on Begin and
// swaps its copy back on Commit, so a rollback simply drops the copy. Updates
// re-check their version against the committed state at Commit, which makes a
// racing writer fail with a ConflictError.
type memStore struct {
	mu        sync.Mutex
	committed *memState
	commits   int
}

type memState struct {
	orders   map[kernel.UUID]order.Snapshot
	payments map[kernel.UUID]payment.Snapshot
	payouts  map[kernel.UUID]payout.Snapshot
	earnings map[kernel.UUID]earningRow
	pros     map[kernel.UUID]proprofile.Snapshot
	entries  []*audit.Entry
	exported map[kernel.UUID]time.Time
}

type earningRow struct {
	id, proProfileID, orderID, paymentID kernel.UUID
	gross, fee, net                      kernel.Money
	payoutID                             *kernel.UUID
	createdAt                            time.Time
}

func newMemStore() *memStore {
	return &memStore{committed: &memState{
		orders:   map[kernel.UUID]order.Snapshot{},
		payments: map[kernel.UUID]payment.Snapshot{},
		payouts:  map[kernel.UUID]payout.Snapshot{},
		earnings: map[kernel.UUID]earningRow{},
		pros:     map[kernel.UUID]proprofile.Snapshot{},
		exported: map[kernel.UUID]time.Time{},
	}}
}

func (s *memState) clone() *memState {
	return &memState{
		orders:   maps.Clone(s.orders),
		payments: maps.Clone(s.payments),
		payouts:  maps.Clone(s.payouts),
		earnings: maps.Clone(s.earnings),
		pros:     maps.Clone(s.pros),
		entries:  slices.Clone(s.entries),
		exported: maps.Clone(s.exported),
	}
}

func (s *memStore) Create() ports.UnitOfWork {
	return &memUoW{store: s}
}

func (s *memStore) snapshot() *memState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.committed.clone()
}

// auditOf returns the committed entries of one entity.
func (s *memStore) auditOf(entityID string) []*audit.Entry {
	var out []*audit.Entry
	for _, e := range s.snapshot().entries {
		if e.EntityID() == entityID {
			out = append(out, e)
		}
	}
	return out
}

func (s *memStore) auditCount() int {
	return len(s.snapshot().entries)
}

func (s *memStore) order(t *testing.T, id kernel.UUID) *order.Order {
	t.Helper()
	o, err := s.Create().OrderRepository().Get(context.Background(), id)
	require.NoError(t, err)
	return o
}

func (s *memStore) payment(t *testing.T, id kernel.UUID) *payment.Payment {
	t.Helper()
	p, err := s.Create().PaymentRepository().Get(context.Background(), id)
	require.NoError(t, err)
	return p
}

func (s *memStore) payout(t *testing.T, id kernel.UUID) *payout.Payout {
	t.Helper()
	p, err := s.Create().PayoutRepository().Get(context.Background(), id)
	require.NoError(t, err)
	return p
}

func (s *memStore) pro(t *testing.T, id kernel.UUID) *proprofile.ProProfile {
	t.Helper()
	p, err := s.Create().ProProfileRepository().Get(context.Background(), id)
	require.NoError(t, err)
	return p
}

// seed runs fn in its own committed unit of work.
func (s *memStore) seed(t *testing.T, fn func(uow ports.UnitOfWork)) {
	t.Helper()
	ctx := context.Background()
	uow := s.Create()
	require.NoError(t, uow.Begin(ctx))
	fn(uow)
	require.NoError(t, uow.Commit(ctx))
}

// barrierFactory holds the first Begin of each of parties callers until all of
// them have begun, so racing handlers read the same committed state.
type barrierFactory struct {
	store   *memStore
	mu      sync.Mutex
	pending int
	release chan struct{}
}

func newBarrierFactory(store *memStore, parties int) *barrierFactory {
	return &barrierFactory{store: store, pending: parties, release: make(chan struct{})}
}

func (f *barrierFactory) Create() ports.UnitOfWork {
	return &barrierUoW{UnitOfWork: f.store.Create(), factory: f}
}

func (f *barrierFactory) arrive() {
	f.mu.Lock()
	if f.pending == 0 {
		f.mu.Unlock()
		return
	}
	f.pending--
	if f.pending == 0 {
		close(f.release)
	}
	f.mu.Unlock()
	<-f.release
}

type barrierUoW struct {
	ports.UnitOfWork
	factory *barrierFactory
}

func (u *barrierUoW) Begin(ctx context.Context) error {
	if err := u.UnitOfWork.Begin(ctx); err != nil {
		return err
	}
	u.factory.arrive()
	return nil
}

type memUoW struct {
	store  *memStore
	tx     *memState
	checks map[string]func(committed *memState) error
}

// expect registers a compare-and-swap precondition evaluated at Commit. Only the
// first write of a key inside one transaction counts.
func (u *memUoW) expect(key string, check func(committed *memState) error) {
	if u.tx == nil {
		return
	}
	if u.checks == nil {
		u.checks = map[string]func(*memState) error{}
	}
	if _, ok := u.checks[key]; !ok {
		u.checks[key] = check
	}
}

func (u *memUoW) Begin(context.Context) error {
	if u.tx != nil {
		return errors.New("transaction already started")
	}
	u.tx = u.store.snapshot()
	return nil
}

func (u *memUoW) Commit(context.Context) error {
	if u.tx == nil {
		return errors.New("no active transaction")
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	tx, checks := u.tx, u.checks
	u.tx, u.checks = nil, nil
	for _, check := range checks {
		if err := check(u.store.committed); err != nil {
			return err
		}
	}
	u.store.committed = tx
	u.store.commits++
	return nil
}

func (u *memUoW) Rollback(context.Context) error {
	if u.tx == nil {
		return errors.New("no active transaction")
	}
	u.tx, u.checks = nil, nil
	return nil
}

// state returns the open transaction, or a private copy of the committed
// state for reads outside a transaction.
func (u *memUoW) state() *memState {
	if u.tx != nil {
		return u.tx
	}
	return u.store.snapshot()
}

func (u *memUoW) OrderRepository() ports.OrderRepository           { return memOrders{u} }
func (u *memUoW) PaymentRepository() ports.PaymentRepository       { return memPayments{u} }
func (u *memUoW) PayoutRepository() ports.PayoutRepository         { return memPayouts{u} }
func (u *memUoW) EarningRepository() ports.EarningRepository       { return memEarnings{u} }
func (u *memUoW) ProProfileRepository() ports.ProProfileRepository { return memPros{u} }
func (u *memUoW) AuditRepository() ports.AuditRepository           { return memAudit{u} }

type memOrders struct{ uow *memUoW }

func (r memOrders) Add(_ context.Context, o *order.Order) error {
	st := r.uow.state()
	if _, ok := st.orders[o.ID()]; ok {
		return errs.NewConflictError("order", o.ID().String())
	}
	st.orders[o.ID()] = o.Snapshot()
	return nil
}

func (r memOrders) Update(_ context.Context, o *order.Order) error {
	st := r.uow.state()
	stored, ok := st.orders[o.ID()]
	if !ok {
		return errs.NewObjectNotFoundError("order", o.ID().String())
	}
	if stored.Status != o.PersistedStatus() || stored.Version != o.Version() {
		return errs.NewStatusConflictError("order", o.ID().String(), o.PersistedStatus().String(), stored.Status.String())
	}
	id, version := o.ID(), o.Version()
	r.uow.expect("order:"+id.String(), func(committed *memState) error {
		if current := committed.orders[id]; current.Version != version {
			return errs.NewStatusConflictError("order", id.String(), stored.Status.String(), current.Status.String())
		}
		return nil
	})
	s := o.Snapshot()
	s.Version++
	st.orders[o.ID()] = s
	o.MarkPersisted()
	return nil
}

func (r memOrders) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	s, ok := r.uow.state().orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return order.RestoreOrder(s)
}

type memPayments struct{ uow *memUoW }

func (r memPayments) Add(_ context.Context, p *payment.Payment) error {
	st := r.uow.state()
	for _, s := range st.payments {
		if s.OrderID.IsEqual(p.OrderID()) && s.Status.IsActive() {
			return errs.NewConflictError("payment", p.OrderID().String())
		}
	}
	orderID := p.OrderID()
	r.uow.expect("active:"+orderID.String(), func(committed *memState) error {
		for _, s := range committed.payments {
			if s.OrderID.IsEqual(orderID) && s.Status.IsActive() {
				return errs.NewConflictError("payment", orderID.String())
			}
		}
		return nil
	})
	st.payments[p.ID()] = p.Snapshot()
	return nil
}

func (r memPayments) Update(_ context.Context, p *payment.Payment) error {
	st := r.uow.state()
	stored, ok := st.payments[p.ID()]
	if !ok {
		return errs.NewObjectNotFoundError("payment", p.ID().String())
	}
	if stored.Version != p.Version() {
		return errs.NewConflictError("payment", p.ID().String())
	}
	r.uow.expect("payment:"+p.ID().String(), versionCheck("payment", p.ID(), p.Version(), func(c *memState) int64 { return c.payments[p.ID()].Version }))
	s := p.Snapshot()
	s.Version++
	st.payments[p.ID()] = s
	p.MarkPersisted()
	return nil
}

func (r memPayments) Get(_ context.Context, id kernel.UUID) (*payment.Payment, error) {
	s, ok := r.uow.state().payments[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("payment", id.String())
	}
	return payment.RestorePayment(s)
}

func (r memPayments) GetActiveByOrder(_ context.Context, orderID kernel.UUID) (*payment.Payment, error) {
	for _, s := range r.uow.state().payments {
		if s.OrderID.IsEqual(orderID) && s.Status.IsActive() {
			return payment.RestorePayment(s)
		}
	}
	return nil, errs.NewObjectNotFoundError("payment", "order "+orderID.String())
}

func (r memPayments) GetByProviderReference(_ context.Context, provider, reference string) (*payment.Payment, error) {
	for _, s := range r.uow.state().payments {
		if s.Provider == provider && s.ProviderReference == reference {
			return payment.RestorePayment(s)
		}
	}
	return nil, errs.NewObjectNotFoundError("payment", provider+":"+reference)
}

func (r memPayments) ListByStatus(_ context.Context, statuses []payment.Status, limit int) ([]*payment.Payment, error) {
	var out []*payment.Payment
	for _, s := range r.uow.state().payments {
		if !slices.Contains(statuses, s.Status) {
			continue
		}
		p, err := payment.RestorePayment(s)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b *payment.Payment) int { return a.UpdatedAt().Compare(b.UpdatedAt()) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memPayouts struct{ uow *memUoW }

func (r memPayouts) Add(_ context.Context, p *payout.Payout) error {
	st := r.uow.state()
	if _, ok := st.payouts[p.ID()]; ok {
		return errs.NewConflictError("payout", p.ID().String())
	}
	for _, e := range p.Earnings() {
		row, ok := st.earnings[e.ID()]
		if !ok || row.payoutID != nil {
			return errs.NewConflictError("earning", p.ID().String())
		}
	}
	claimed := make([]kernel.UUID, 0, len(p.Earnings()))
	for _, e := range p.Earnings() {
		claimed = append(claimed, e.ID())
	}
	payoutID := p.ID()
	r.uow.expect("claim:"+payoutID.String(), func(committed *memState) error {
		for _, id := range claimed {
			if committed.earnings[id].payoutID != nil {
				return errs.NewConflictError("earning", payoutID.String())
			}
		}
		return nil
	})
	for _, e := range p.Earnings() {
		row := st.earnings[e.ID()]
		id := p.ID()
		row.payoutID = &id
		st.earnings[e.ID()] = row
	}
	s := p.Snapshot()
	s.Earnings = nil
	st.payouts[p.ID()] = s
	return nil
}

func (r memPayouts) Update(_ context.Context, p *payout.Payout) error {
	st := r.uow.state()
	stored, ok := st.payouts[p.ID()]
	if !ok {
		return errs.NewObjectNotFoundError("payout", p.ID().String())
	}
	if stored.Version != p.Version() {
		return errs.NewConflictError("payout", p.ID().String())
	}
	r.uow.expect("payout:"+p.ID().String(), versionCheck("payout", p.ID(), p.Version(), func(c *memState) int64 { return c.payouts[p.ID()].Version }))
	s := p.Snapshot()
	s.Earnings = nil
	s.Version++
	st.payouts[p.ID()] = s
	p.MarkPersisted()
	return nil
}

func (r memPayouts) Get(_ context.Context, id kernel.UUID) (*payout.Payout, error) {
	st := r.uow.state()
	s, ok := st.payouts[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("payout", id.String())
	}
	return restorePayout(st, s)
}

func (r memPayouts) ListByStatus(_ context.Context, status payout.Status, limit int) ([]*payout.Payout, error) {
	st := r.uow.state()
	var out []*payout.Payout
	for _, s := range st.payouts {
		if s.Status != status {
			continue
		}
		p, err := restorePayout(st, s)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b *payout.Payout) int { return a.CreatedAt().Compare(b.CreatedAt()) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func versionCheck(entity string, id kernel.UUID, version int64, current func(*memState) int64) func(*memState) error {
	return func(committed *memState) error {
		if current(committed) != version {
			return errs.NewConflictError(entity, id.String())
		}
		return nil
	}
}

func restorePayout(st *memState, s payout.Snapshot) (*payout.Payout, error) {
	for _, row := range st.earnings {
		if row.payoutID != nil && row.payoutID.IsEqual(s.ID) {
			e, err := row.restore()
			if err != nil {
				return nil, err
			}
			s.Earnings = append(s.Earnings, e)
		}
	}
	slices.SortFunc(s.Earnings, func(a, b *payout.Earning) int { return a.CreatedAt().Compare(b.CreatedAt()) })
	return payout.RestorePayout(s)
}

func (row earningRow) restore() (*payout.Earning, error) {
	return payout.RestoreEarning(row.id, row.proProfileID, row.orderID, row.paymentID,
		row.gross, row.fee, row.net, row.payoutID, row.createdAt)
}

type memEarnings struct{ uow *memUoW }

func (r memEarnings) Add(_ context.Context, e *payout.Earning) error {
	st := r.uow.state()
	for _, row := range st.earnings {
		if row.paymentID.IsEqual(e.PaymentID()) {
			return errs.NewConflictError("earning", e.PaymentID().String())
		}
	}
	st.earnings[e.ID()] = earningRow{
		id: e.ID(), proProfileID: e.ProProfileID(), orderID: e.OrderID(), paymentID: e.PaymentID(),
		gross: e.Gross(), fee: e.Fee(), net: e.Net(), payoutID: e.PayoutID(), createdAt: e.CreatedAt(),
	}
	return nil
}

func (r memEarnings) GetByPayment(_ context.Context, paymentID kernel.UUID) (*payout.Earning, error) {
	for _, row := range r.uow.state().earnings {
		if row.paymentID.IsEqual(paymentID) {
			return row.restore()
		}
	}
	return nil, errs.NewObjectNotFoundError("earning", "payment "+paymentID.String())
}

func (r memEarnings) ListUnclaimed(_ context.Context, proProfileID kernel.UUID) ([]*payout.Earning, error) {
	var out []*payout.Earning
	for _, row := range r.uow.state().earnings {
		if row.payoutID != nil || !row.proProfileID.IsEqual(proProfileID) {
			continue
		}
		e, err := row.restore()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b *payout.Earning) int { return a.CreatedAt().Compare(b.CreatedAt()) })
	return out, nil
}

func (r memEarnings) ListProsWithUnclaimed(_ context.Context, limit int) ([]kernel.UUID, error) {
	var out []kernel.UUID
	for _, row := range r.uow.state().earnings {
		if row.payoutID == nil && !slices.ContainsFunc(out, row.proProfileID.IsEqual) {
			out = append(out, row.proProfileID)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memPros struct{ uow *memUoW }

func (r memPros) Add(_ context.Context, p *proprofile.ProProfile) error {
	st := r.uow.state()
	if _, ok := st.pros[p.ID()]; ok {
		return errs.NewConflictError("proProfile", p.ID().String())
	}
	st.pros[p.ID()] = p.Snapshot()
	return nil
}

func (r memPros) Update(_ context.Context, p *proprofile.ProProfile) error {
	st := r.uow.state()
	stored, ok := st.pros[p.ID()]
	if !ok {
		return errs.NewObjectNotFoundError("proProfile", p.ID().String())
	}
	if stored.Version != p.Version() {
		return errs.NewConflictError("proProfile", p.ID().String())
	}
	r.uow.expect("proProfile:"+p.ID().String(), versionCheck("proProfile", p.ID(), p.Version(), func(c *memState) int64 { return c.pros[p.ID()].Version }))
	s := p.Snapshot()
	s.Version++
	st.pros[p.ID()] = s
	p.MarkPersisted()
	return nil
}

func (r memPros) Get(_ context.Context, id kernel.UUID) (*proprofile.ProProfile, error) {
	s, ok := r.uow.state().pros[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("proProfile", id.String())
	}
	return proprofile.RestoreProProfile(s)
}

type memAudit struct{ uow *memUoW }

func (r memAudit) Append(_ context.Context, e *audit.Entry) error {
	st := r.uow.state()
	st.entries = append(st.entries, e)
	return nil
}

func (r memAudit) ListByEntity(_ context.Context, entityID string) ([]*audit.Entry, error) {
	var out []*audit.Entry
	for _, e := range r.uow.state().entries {
		if e.EntityID() == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r memAudit) ListUnexported(_ context.Context, limit int) ([]*audit.Entry, error) {
	st := r.uow.state()
	var out []*audit.Entry
	for _, e := range st.entries {
		if _, done := st.exported[e.ID()]; !done && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r memAudit) MarkExported(_ context.Context, ids []kernel.UUID, at time.Time) error {
	st := r.uow.state()
	for _, id := range ids {
		st.exported[id] = at
	}
	return nil
}
