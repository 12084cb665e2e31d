package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-sucursales/internal/domain"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/internal/domain/repository"
)

// stockRepo implementa repository.BranchStockRepository.
type stockRepo struct{ access }

func (r *stockRepo) Get(_ context.Context, branchID, productID string) (*entity.BranchStock, error) {
	defer r.rlock()()
	if v, ok := r.s.st.stock[stockKey{branchID, productID}]; ok {
		return copyStock(v), nil
	}
	return entity.NewBranchStock(branchID, productID), nil
}

func (r *stockRepo) GetForUpdate(_ context.Context, branchID, productID string) (*entity.BranchStock, error) {
	defer r.lock()()
	k := stockKey{branchID, productID}
	v, ok := r.s.st.stock[k]
	if !ok {
		v = entity.NewBranchStock(branchID, productID)
		v.UpdatedAt = time.Now()
		r.s.st.stock[k] = v
	}
	return copyStock(v), nil
}

func (r *stockRepo) Update(_ context.Context, stock *entity.BranchStock) error {
	defer r.lock()()
	k := stockKey{stock.BranchID, stock.ProductID}
	cur, ok := r.s.st.stock[k]
	if !ok || cur.Version != stock.Version {
		return domain.ErrConcurrencyConflict
	}
	stock.Version++
	r.s.st.stock[k] = copyStock(stock)
	return nil
}

func (r *stockRepo) List(_ context.Context, q repository.BranchStockQuery) ([]*entity.BranchStockView, int, error) {
	defer r.rlock()()
	search := strings.ToLower(q.Search)
	var out []*entity.BranchStockView
	for _, v := range r.s.st.stock {
		if v.BranchID != q.BranchID {
			continue
		}
		view := r.view(v)
		if search != "" && !strings.Contains(strings.ToLower(view.ProductName), search) &&
			!strings.Contains(strings.ToLower(view.SKU), search) {
			continue
		}
		if q.LowStock && !view.IsLow() {
			continue
		}
		out = append(out, view)
	}
	sortViews(out)
	return page(out, q.Limit, q.Offset), len(out), nil
}

func (r *stockRepo) ListLowStock(_ context.Context, branchID string) ([]*entity.BranchStockView, error) {
	defer r.rlock()()
	var out []*entity.BranchStockView
	for _, v := range r.s.st.stock {
		if branchID != "" && v.BranchID != branchID {
			continue
		}
		if view := r.view(v); view.IsLow() {
			out = append(out, view)
		}
	}
	sortViews(out)
	return out, nil
}

func (r *stockRepo) view(v *entity.BranchStock) *entity.BranchStockView {
	view := &entity.BranchStockView{BranchStock: *copyStock(v), MinStock: decimal.Zero}
	if p, ok := r.s.products[v.ProductID]; ok {
		view.ProductName = p.Name
		view.SKU = p.SKU
		view.MinStock = p.MinStock
	}
	return view
}

func sortViews(v []*entity.BranchStockView) {
	sort.Slice(v, func(i, j int) bool {
		if v[i].BranchID != v[j].BranchID {
			return v[i].BranchID < v[j].BranchID
		}
		if v[i].ProductName != v[j].ProductName {
			return v[i].ProductName < v[j].ProductName
		}
		return v[i].ProductID < v[j].ProductID
	})
}

// movementRepo implementa repository.StockMovementRepository (sólo inserción).
type movementRepo struct{ access }

func (r *movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	defer r.lock()()
	cp := *m
	r.s.st.movements = append(r.s.st.movements, &cp)
	return nil
}

// List devuelve los más recientes primero.
func (r *movementRepo) List(_ context.Context, f entity.MovementFilter) ([]*entity.StockMovement, int, error) {
	defer r.rlock()()
	var out []*entity.StockMovement
	for i := len(r.s.st.movements) - 1; i >= 0; i-- {
		m := r.s.st.movements[i]
		switch {
		case f.BranchID != "" && m.BranchID != f.BranchID,
			f.ProductID != "" && m.ProductID != f.ProductID,
			f.Type != "" && m.Type != f.Type,
			f.ReferenceID != "" && m.ReferenceID != f.ReferenceID,
			f.From != nil && m.CreatedAt.Before(*f.From),
			f.To != nil && m.CreatedAt.After(*f.To):
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	return page(out, f.Limit, f.Offset), len(out), nil
}

// transferRepo implementa repository.StockTransferRepository.
type transferRepo struct{ access }

func (r *transferRepo) NextNumber(context.Context) (int64, error) {
	// Como una secuencia de PostgreSQL: no retrocede con el rollback.
	return r.s.transferSeq.Add(1), nil
}

func (r *transferRepo) Create(_ context.Context, t *entity.StockTransfer) error {
	defer r.lock()()
	r.s.st.transfers[t.ID] = copyTransfer(t)
	return nil
}

func (r *transferRepo) GetByID(_ context.Context, id string) (*entity.StockTransfer, error) {
	defer r.rlock()()
	if t, ok := r.s.st.transfers[id]; ok {
		return copyTransfer(t), nil
	}
	return nil, nil
}

func (r *transferRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockTransfer, error) {
	return r.GetByID(ctx, id)
}

func (r *transferRepo) Update(_ context.Context, t *entity.StockTransfer) error {
	defer r.lock()()
	if _, ok := r.s.st.transfers[t.ID]; !ok {
		return domain.NotFound("traslado", t.ID)
	}
	r.s.st.transfers[t.ID] = copyTransfer(t)
	return nil
}

func (r *transferRepo) List(_ context.Context, f entity.TransferFilter) ([]*entity.StockTransfer, int, error) {
	defer r.rlock()()
	var out []*entity.StockTransfer
	for _, t := range r.s.st.transfers {
		if f.BranchID != "" && t.SourceBranchID != f.BranchID && t.DestinationBranchID != f.BranchID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		out = append(out, copyTransfer(t))
	}
	sort.Slice(out, func(i, j int) bool { return newerTransfer(out[i], out[j]) })
	return page(out, f.Limit, f.Offset), len(out), nil
}

// newerTransfer ordena por requested_at DESC como el List de PostgreSQL. En empate desempata el
// número, comparado por longitud antes que por texto para que TR-1000000 sea posterior a TR-999999.
func newerTransfer(a, b *entity.StockTransfer) bool {
	if !a.RequestedAt.Equal(b.RequestedAt) {
		return a.RequestedAt.After(b.RequestedAt)
	}
	if len(a.TransferNumber) != len(b.TransferNumber) {
		return len(a.TransferNumber) > len(b.TransferNumber)
	}
	return a.TransferNumber > b.TransferNumber
}

func (r *transferRepo) IncomingByBranch(_ context.Context, branchID string) ([]entity.IncomingStock, error) {
	defer r.rlock()()
	acc := make(map[string]*entity.IncomingStock)
	for _, t := range r.s.st.transfers {
		if t.Status != entity.TransferInTransit || t.DestinationBranchID != branchID {
			continue
		}
		for _, it := range t.Items {
			if it.ShippedQuantity == nil || !it.ShippedQuantity.IsPositive() {
				continue
			}
			in, ok := acc[it.ProductID]
			if !ok {
				in = &entity.IncomingStock{ProductID: it.ProductID, Quantity: decimal.Zero}
				acc[it.ProductID] = in
			}
			in.Quantity = in.Quantity.Add(*it.ShippedQuantity)
			in.TransferCount++
			if t.ShippedAt != nil && (in.OldestShippedAt.IsZero() || t.ShippedAt.Before(in.OldestShippedAt)) {
				in.OldestShippedAt = *t.ShippedAt
			}
		}
	}
	out := make([]entity.IncomingStock, 0, len(acc))
	for _, v := range acc {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

// bagRepo implementa repository.OpenBagRepository.
type bagRepo struct{ access }

func (r *bagRepo) Create(_ context.Context, b *entity.OpenBag) error {
	defer r.lock()()
	if b.Status == entity.OpenBagOpen {
		for _, o := range r.s.st.bags {
			if o.Status == entity.OpenBagOpen && o.BranchID == b.BranchID && o.ProductID == b.ProductID {
				return domain.ErrBagAlreadyOpen
			}
		}
	}
	r.s.st.bags[b.ID] = copyBag(b)
	return nil
}

func (r *bagRepo) GetByID(_ context.Context, id string) (*entity.OpenBag, error) {
	defer r.rlock()()
	if b, ok := r.s.st.bags[id]; ok {
		return copyBag(b), nil
	}
	return nil, nil
}

func (r *bagRepo) GetForUpdate(ctx context.Context, id string) (*entity.OpenBag, error) {
	return r.GetByID(ctx, id)
}

func (r *bagRepo) FindOpen(_ context.Context, branchID, productID string) (*entity.OpenBag, error) {
	defer r.rlock()()
	for _, b := range r.s.st.bags {
		if b.Status == entity.OpenBagOpen && b.BranchID == branchID && b.ProductID == productID {
			return copyBag(b), nil
		}
	}
	return nil, nil
}

func (r *bagRepo) Update(_ context.Context, b *entity.OpenBag) error {
	defer r.lock()()
	if _, ok := r.s.st.bags[b.ID]; !ok {
		return domain.NotFound("bolsa", b.ID)
	}
	r.s.st.bags[b.ID] = copyBag(b)
	return nil
}

func (r *bagRepo) List(_ context.Context, f entity.OpenBagFilter) ([]*entity.OpenBag, int, error) {
	defer r.rlock()()
	var out []*entity.OpenBag
	for _, b := range r.s.st.bags {
		switch {
		case f.BranchID != "" && b.BranchID != f.BranchID,
			f.ProductID != "" && b.ProductID != f.ProductID,
			f.Status != "" && b.Status != f.Status:
			continue
		}
		out = append(out, copyBag(b))
	}
	sortBags(out)
	return page(out, f.Limit, f.Offset), len(out), nil
}

func (r *bagRepo) ListLow(_ context.Context, branchID string) ([]*entity.OpenBag, error) {
	defer r.rlock()()
	var out []*entity.OpenBag
	for _, b := range r.s.st.bags {
		if branchID != "" && b.BranchID != branchID {
			continue
		}
		if b.IsLow() {
			out = append(out, copyBag(b))
		}
	}
	sortBags(out)
	return out, nil
}

func sortBags(b []*entity.OpenBag) {
	sort.Slice(b, func(i, j int) bool {
		if !b[i].OpenedAt.Equal(b[j].OpenedAt) {
			return b[i].OpenedAt.After(b[j].OpenedAt)
		}
		return b[i].ID < b[j].ID
	})
}

// productRepo lectura del catálogo sembrado.
type productRepo struct{ access }

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	defer r.rlock()()
	if p, ok := r.s.products[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

// branchRepo lectura de sucursales sembradas.
type branchRepo struct{ access }

func (r *branchRepo) GetByID(_ context.Context, id string) (*entity.Branch, error) {
	defer r.rlock()()
	if b, ok := r.s.branches[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}
