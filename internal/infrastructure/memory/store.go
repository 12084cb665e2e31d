// Package memory implementa los puertos de inventario en memoria para pruebas y modo demo.
// Una transacción toma el lock de escritura del Store completo y trabaja sobre el estado vivo;
// si la función falla se restaura la copia tomada al inicio.
//
// Ese lock global serializa también movimientos de filas distintas, por eso config.Validate
// sólo admite este adaptador con APP_ENV=development. Producción usa PostgreSQL con bloqueo por fila.
package memory

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/jhoicas/inventario-sucursales/internal/application/inventory"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
)

type stockKey struct {
	branchID  string
	productID string
}

type state struct {
	stock     map[stockKey]*entity.BranchStock
	movements []*entity.StockMovement
	transfers map[string]*entity.StockTransfer
	bags      map[string]*entity.OpenBag
}

func newState() *state {
	return &state{
		stock:     make(map[stockKey]*entity.BranchStock),
		transfers: make(map[string]*entity.StockTransfer),
		bags:      make(map[string]*entity.OpenBag),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.stock {
		c.stock[k] = copyStock(v)
	}
	c.movements = make([]*entity.StockMovement, len(s.movements))
	copy(c.movements, s.movements)
	for k, v := range s.transfers {
		c.transfers[k] = copyTransfer(v)
	}
	for k, v := range s.bags {
		c.bags[k] = copyBag(v)
	}
	return c
}

// Store contiene el estado y el catálogo sembrado.
type Store struct {
	mu          sync.RWMutex
	st          *state
	products    map[string]*entity.Product
	branches    map[string]*entity.Branch
	transferSeq atomic.Int64
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		st:       newState(),
		products: make(map[string]*entity.Product),
		branches: make(map[string]*entity.Branch),
	}
}

// SeedProduct registra un producto del catálogo.
func (s *Store) SeedProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := p
	s.products[p.ID] = &cp
}

// SeedBranch registra una sucursal.
func (s *Store) SeedBranch(b entity.Branch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := b
	s.branches[b.ID] = &cp
}

// Deps arma las dependencias de los casos de uso sobre este store.
func (s *Store) Deps() inventory.Deps {
	return inventory.Deps{
		Tx:        s.TxRunner(),
		Stock:     &stockRepo{access{s: s}},
		Movements: &movementRepo{access{s: s}},
		Transfers: &transferRepo{access{s: s}},
		Bags:      &bagRepo{access{s: s}},
		Products:  &productRepo{access{s: s}},
		Branches:  &branchRepo{access{s: s}},
	}
}

// TxRunner devuelve el ejecutor transaccional del store.
func (s *Store) TxRunner() *TxRunner {
	return &TxRunner{s: s}
}

// Movements devuelve una copia del libro completo en orden de inserción.
func (s *Store) Movements() []entity.StockMovement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.StockMovement, 0, len(s.st.movements))
	for _, m := range s.st.movements {
		out = append(out, *m)
	}
	return out
}

// TxRunner ejecuta la función con el store bloqueado; rollback restaurando la copia.
type TxRunner struct {
	s *Store
}

// Run implementa inventory.TxRunner.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	snapshot := r.s.st.clone()
	repos := inventory.TxRepos{
		Stock:     &stockRepo{access{s: r.s, tx: true}},
		Movements: &movementRepo{access{s: r.s, tx: true}},
		Transfers: &transferRepo{access{s: r.s, tx: true}},
		Bags:      &bagRepo{access{s: r.s, tx: true}},
	}
	if err := fn(ctx, repos); err != nil {
		r.s.st = snapshot
		return err
	}
	return nil
}

// access bloquea para lectura o escritura salvo dentro de una transacción (ya bloqueado).
type access struct {
	s  *Store
	tx bool
}

func (a access) rlock() func() {
	if a.tx {
		return func() {}
	}
	a.s.mu.RLock()
	return a.s.mu.RUnlock
}

func (a access) lock() func() {
	if a.tx {
		return func() {}
	}
	a.s.mu.Lock()
	return a.s.mu.Unlock
}

func copyStock(v *entity.BranchStock) *entity.BranchStock {
	c := *v
	if v.LastCountedAt != nil {
		t := *v.LastCountedAt
		c.LastCountedAt = &t
	}
	if v.LastCountedQuantity != nil {
		q := *v.LastCountedQuantity
		c.LastCountedQuantity = &q
	}
	return &c
}

func copyTransfer(v *entity.StockTransfer) *entity.StockTransfer {
	c := *v
	c.Items = make([]entity.StockTransferItem, len(v.Items))
	for i, it := range v.Items {
		ci := it
		if it.ShippedQuantity != nil {
			q := *it.ShippedQuantity
			ci.ShippedQuantity = &q
		}
		if it.ReceivedQuantity != nil {
			q := *it.ReceivedQuantity
			ci.ReceivedQuantity = &q
		}
		c.Items[i] = ci
	}
	return &c
}

func copyBag(v *entity.OpenBag) *entity.OpenBag {
	c := *v
	if v.ClosedAt != nil {
		t := *v.ClosedAt
		c.ClosedAt = &t
	}
	return &c
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
