// Package memory is an in-process implementation of every repository and of
// tx.Manager. Transactions are fully serialized and roll back by restoring a
// snapshot taken at BEGIN. Used for tests and for running the API without Postgres.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"tidewater/internal/app"
	"tidewater/internal/core/id"
	"tidewater/internal/domain/audit"
	"tidewater/internal/domain/catalog"
	"tidewater/internal/domain/delivery"
	"tidewater/internal/domain/events"
	"tidewater/internal/domain/inventory"
	"tidewater/internal/domain/order"
	"tidewater/internal/domain/payment"
	"tidewater/internal/domain/purchasing"
)

type state struct {
	customers      map[id.ID]catalog.Customer
	suppliers      map[id.ID]catalog.Supplier
	products       map[id.ID]catalog.Product
	inventory      map[id.ID]inventory.Inventory
	movements      []inventory.Movement
	orders         map[id.ID]order.Order
	orderItems     []order.Item
	deliveries     map[id.ID]delivery.Delivery
	payments       map[id.ID]payment.Payment
	purchaseOrders map[id.ID]purchasing.PurchaseOrder
	poItems        []purchasing.Item
	events         []events.Event
	audit          []audit.Record
}

func newState() *state {
	return &state{
		customers:      make(map[id.ID]catalog.Customer),
		suppliers:      make(map[id.ID]catalog.Supplier),
		products:       make(map[id.ID]catalog.Product),
		inventory:      make(map[id.ID]inventory.Inventory),
		orders:         make(map[id.ID]order.Order),
		deliveries:     make(map[id.ID]delivery.Delivery),
		payments:       make(map[id.ID]payment.Payment),
		purchaseOrders: make(map[id.ID]purchasing.PurchaseOrder),
	}
}

// clone copies every collection. Stored values never share mutable state with
// callers (repositories copy on the way in and out), so a shallow copy per
// collection is a complete snapshot.
func (s *state) clone() *state {
	return &state{
		customers:      maps.Clone(s.customers),
		suppliers:      maps.Clone(s.suppliers),
		products:       maps.Clone(s.products),
		inventory:      maps.Clone(s.inventory),
		movements:      slices.Clone(s.movements),
		orders:         maps.Clone(s.orders),
		orderItems:     slices.Clone(s.orderItems),
		deliveries:     maps.Clone(s.deliveries),
		payments:       maps.Clone(s.payments),
		purchaseOrders: maps.Clone(s.purchaseOrders),
		poItems:        slices.Clone(s.poItems),
		events:         slices.Clone(s.events),
		audit:          slices.Clone(s.audit),
	}
}

// Store owns the data and implements tx.Manager.
type Store struct {
	mu   sync.Mutex
	data *state
}

func NewStore() *Store {
	return &Store{data: newState()}
}

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// RunInTransaction holds the store lock for the whole of fn. Nested calls
// join the outer transaction. On error or panic the snapshot is restored.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	defer func() {
		if p := recover(); p != nil {
			s.data = snapshot
			panic(p)
		}
		if err != nil {
			s.data = snapshot
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, s))
}

// ReadOnly runs fn under the lock without snapshotting.
func (s *Store) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, s))
}

// with runs fn against the current data, taking the lock unless ctx already
// holds it.
func (s *Store) with(ctx context.Context, fn func(st *state) error) error {
	if s.inTx(ctx) {
		return fn(s.data)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// Events returns a copy of everything published so far.
func (s *Store) Events() []events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.data.events)
}

// AuditRecords returns a copy of the audit log in insertion order.
func (s *Store) AuditRecords() []audit.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.data.audit)
}

// Counts reports row counts per collection; tests use it to assert that a
// failed unit of work left nothing behind.
type Counts struct {
	Orders, OrderItems, Deliveries, Movements, Payments, Events int
}

func (s *Store) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Counts{
		Orders:     len(s.data.orders),
		OrderItems: len(s.data.orderItems),
		Deliveries: len(s.data.deliveries),
		Movements:  len(s.data.movements),
		Payments:   len(s.data.payments),
		Events:     len(s.data.events),
	}
}

// Publisher writes events into the store's event log inside the current transaction.
type Publisher struct{ s *Store }

func (s *Store) Publisher() *Publisher { return &Publisher{s: s} }

func (p *Publisher) Publish(ctx context.Context, e events.Event) error {
	if !p.s.inTx(ctx) {
		return fmt.Errorf("publish %s: transaction required", e.Type)
	}
	p.s.data.events = append(p.s.data.events, e)
	return nil
}

// Auditor appends audit entries inside the current transaction.
type Auditor struct{ s *Store }

func (s *Store) Auditor() *Auditor { return &Auditor{s: s} }

func (a *Auditor) Record(ctx context.Context, e audit.Entry) error {
	snapshot, err := json.Marshal(e.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal audit snapshot: %w", err)
	}
	return a.s.with(ctx, func(st *state) error {
		st.audit = append(st.audit, audit.Record{
			ID:         id.New(),
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Action:     e.Action,
			Actor:      e.Actor,
			Snapshot:   snapshot,
			CreatedAt:  time.Now().UTC(),
		})
		return nil
	})
}

func (a *Auditor) History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]audit.Record, error) {
	if limit <= 0 {
		limit = 50
	}
	out := make([]audit.Record, 0)
	err := a.s.with(ctx, func(st *state) error {
		for i := len(st.audit) - 1; i >= 0 && len(out) < limit; i-- {
			if r := st.audit[i]; r.EntityType == entityType && r.EntityID == entityID {
				out = append(out, r)
			}
		}
		return nil
	})
	return out, err
}

// Backend exposes the store as a complete app.Backend.
func (s *Store) Backend() app.Backend {
	return app.Backend{
		TxManager:      s,
		Customers:      s.Catalog(),
		Products:       s.Catalog(),
		Suppliers:      s.Catalog(),
		Inventory:      s.Inventory(),
		Orders:         s.Orders(),
		Deliveries:     s.Deliveries(),
		Payments:       s.Payments(),
		PurchaseOrders: s.PurchaseOrders(),
		Events:         s.Publisher(),
		Audit:          s.Auditor(),
	}
}
