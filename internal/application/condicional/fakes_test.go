package condicional_test

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/condicional-api/internal/application/condicional"
	"github.com/jhoicas/condicional-api/internal/domain/entity"
	"github.com/jhoicas/condicional-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles en memoria de los puertos de persistencia. El fakeTxRunner ejecuta la
// función sobre una copia del almacén y solo vuelca los cambios al original si
// no hubo error, imitando el Commit/Rollback real: un error a mitad de
// operación deja el estado exactamente como estaba.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	items   map[int64]*entity.Item
	clients map[int64]*entity.Client
	conds   map[int64]*entity.Condicional
	lines   map[int64]*entity.CondicionalItem
	sales   map[int64]*entity.Sale
	nextID  int64
}

func newMemStore() *memStore {
	return &memStore{
		items:   map[int64]*entity.Item{},
		clients: map[int64]*entity.Client{},
		conds:   map[int64]*entity.Condicional{},
		lines:   map[int64]*entity.CondicionalItem{},
		sales:   map[int64]*entity.Sale{},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) clone() *memStore {
	c := newMemStore()
	c.nextID = s.nextID
	for id, it := range s.items {
		cp := *it
		c.items[id] = &cp
	}
	for id, cl := range s.clients {
		cp := *cl
		c.clients[id] = &cp
	}
	for id, cond := range s.conds {
		cp := *cond
		cp.Client = nil
		cp.Items = nil
		c.conds[id] = &cp
	}
	for id, ln := range s.lines {
		cp := *ln
		cp.Item = nil
		c.lines[id] = &cp
	}
	for id, sale := range s.sales {
		cp := *sale
		c.sales[id] = &cp
	}
	return c
}

// ── ItemRepository ────────────────────────────────────────────────────────────

type fakeItemRepo struct{ s *memStore }

var _ repository.ItemRepository = (*fakeItemRepo)(nil)

func (r *fakeItemRepo) Create(item *entity.Item) error {
	item.ID = r.s.id()
	cp := *item
	r.s.items[item.ID] = &cp
	return nil
}

func (r *fakeItemRepo) GetByID(id int64) (*entity.Item, error) {
	it, ok := r.s.items[id]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (r *fakeItemRepo) GetForUpdate(id int64) (*entity.Item, error) {
	return r.GetByID(id)
}

func (r *fakeItemRepo) GetByExactName(name string) (*entity.Item, error) {
	for _, it := range r.s.items {
		if condicional.NormalizeItemName(it.Name) == name {
			cp := *it
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeItemRepo) SearchByName(name string) ([]*entity.Item, error) {
	var out []*entity.Item
	for _, it := range r.s.items {
		if strings.Contains(condicional.NormalizeItemName(it.Name), name) {
			cp := *it
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeItemRepo) List(limit, offset int) ([]*entity.Item, error) {
	var out []*entity.Item
	for _, it := range r.s.items {
		cp := *it
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeItemRepo) Update(item *entity.Item) error {
	cp := *item
	r.s.items[item.ID] = &cp
	return nil
}

func (r *fakeItemRepo) AdjustQuantity(id int64, delta int) error {
	if it, ok := r.s.items[id]; ok {
		it.Quantity += delta
	}
	return nil
}

func (r *fakeItemRepo) UpdateStatus(id int64, status string) error {
	if it, ok := r.s.items[id]; ok {
		it.Status = status
	}
	return nil
}

func (r *fakeItemRepo) Delete(id int64) error {
	delete(r.s.items, id)
	return nil
}

// ── ClientRepository ──────────────────────────────────────────────────────────

type fakeClientRepo struct{ s *memStore }

var _ repository.ClientRepository = (*fakeClientRepo)(nil)

func (r *fakeClientRepo) Create(client *entity.Client) error {
	client.ID = r.s.id()
	cp := *client
	r.s.clients[client.ID] = &cp
	return nil
}

func (r *fakeClientRepo) GetByID(id int64) (*entity.Client, error) {
	cl, ok := r.s.clients[id]
	if !ok {
		return nil, nil
	}
	cp := *cl
	return &cp, nil
}

func (r *fakeClientRepo) List(limit, offset int) ([]*entity.Client, error) {
	var out []*entity.Client
	for _, cl := range r.s.clients {
		cp := *cl
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeClientRepo) Update(client *entity.Client) error {
	cp := *client
	r.s.clients[client.ID] = &cp
	return nil
}

func (r *fakeClientRepo) Delete(id int64) error {
	delete(r.s.clients, id)
	return nil
}

// ── CondicionalRepository ─────────────────────────────────────────────────────

type fakeCondRepo struct{ s *memStore }

var _ repository.CondicionalRepository = (*fakeCondRepo)(nil)

func (r *fakeCondRepo) Create(cond *entity.Condicional) error {
	cond.ID = r.s.id()
	cp := *cond
	cp.Client = nil
	cp.Items = nil
	r.s.conds[cond.ID] = &cp
	return nil
}

func (r *fakeCondRepo) GetByID(id int64) (*entity.Condicional, error) {
	cond, ok := r.s.conds[id]
	if !ok {
		return nil, nil
	}
	cp := *cond
	if cl, ok := r.s.clients[cp.ClientID]; ok {
		clCp := *cl
		cp.Client = &clCp
	}
	var lines []*entity.CondicionalItem
	for _, ln := range r.s.lines {
		if ln.CondicionalID != id {
			continue
		}
		lnCp := *ln
		if it, ok := r.s.items[ln.ItemID]; ok {
			itCp := *it
			lnCp.Item = &itCp
		}
		lines = append(lines, &lnCp)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
	cp.Items = lines
	return &cp, nil
}

func (r *fakeCondRepo) GetForUpdate(id int64) (*entity.Condicional, error) {
	return r.GetByID(id)
}

func (r *fakeCondRepo) Update(cond *entity.Condicional) error {
	stored, ok := r.s.conds[cond.ID]
	if !ok {
		return nil
	}
	stored.ClientID = cond.ClientID
	stored.ReturnDate = cond.ReturnDate
	stored.Notes = cond.Notes
	stored.UpdatedAt = cond.UpdatedAt
	return nil
}

func (r *fakeCondRepo) SetReturned(id int64, returned bool) error {
	if cond, ok := r.s.conds[id]; ok {
		cond.Returned = returned
	}
	return nil
}

func (r *fakeCondRepo) AccumulateReturned(id int64, quantity int, value decimal.Decimal) error {
	if cond, ok := r.s.conds[id]; ok {
		cond.ReturnedItems += quantity
		cond.ReturnedValue = cond.ReturnedValue.Add(value)
	}
	return nil
}

func (r *fakeCondRepo) Delete(id int64) error {
	delete(r.s.conds, id)
	for lnID, ln := range r.s.lines {
		if ln.CondicionalID == id {
			delete(r.s.lines, lnID)
		}
	}
	return nil
}

func (r *fakeCondRepo) AddItem(line *entity.CondicionalItem) error {
	line.ID = r.s.id()
	cp := *line
	cp.Item = nil
	r.s.lines[line.ID] = &cp
	return nil
}

func (r *fakeCondRepo) UpdateItemQuantity(lineID int64, quantity int) error {
	if ln, ok := r.s.lines[lineID]; ok {
		ln.Quantity = quantity
	}
	return nil
}

func (r *fakeCondRepo) DeleteItem(lineID int64) error {
	delete(r.s.lines, lineID)
	return nil
}

func (r *fakeCondRepo) ListActive(filter repository.CondicionalFilter) ([]*entity.Condicional, error) {
	out := r.list(false, filter)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReturnDate.Equal(out[j].ReturnDate) {
			return out[i].ReturnDate.Before(out[j].ReturnDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeCondRepo) ListReturned(filter repository.CondicionalFilter) ([]*entity.Condicional, error) {
	out := r.list(true, filter)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeCondRepo) list(returned bool, filter repository.CondicionalFilter) []*entity.Condicional {
	var out []*entity.Condicional
	for id, cond := range r.s.conds {
		if cond.Returned != returned {
			continue
		}
		if filter.ClientID != nil && cond.ClientID != *filter.ClientID {
			continue
		}
		// Las activas filtran por fecha de devolución; las devueltas por creación.
		ref := cond.ReturnDate
		if returned {
			ref = cond.CreatedAt
		}
		if filter.DateFrom != nil && ref.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && ref.After(filter.DateTo.Add(24*time.Hour)) {
			continue
		}
		full, _ := r.GetByID(id)
		out = append(out, full)
	}
	return out
}

func (r *fakeCondRepo) CountByStatus(filter repository.CondicionalFilter) (total, active, returned int, err error) {
	for _, cond := range r.s.conds {
		if filter.DateFrom != nil && cond.CreatedAt.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && cond.CreatedAt.After(filter.DateTo.Add(24*time.Hour)) {
			continue
		}
		total++
		if cond.Returned {
			returned++
		} else {
			active++
		}
	}
	return total, active, returned, nil
}

// ── SaleRepository ────────────────────────────────────────────────────────────

type fakeSaleRepo struct{ s *memStore }

var _ repository.SaleRepository = (*fakeSaleRepo)(nil)

func (r *fakeSaleRepo) Create(sale *entity.Sale) error {
	sale.ID = r.s.id()
	for _, ln := range sale.Items {
		ln.ID = r.s.id()
		ln.SaleID = sale.ID
	}
	cp := *sale
	r.s.sales[sale.ID] = &cp
	return nil
}

func (r *fakeSaleRepo) GetByID(id int64) (*entity.Sale, error) {
	sale, ok := r.s.sales[id]
	if !ok {
		return nil, nil
	}
	cp := *sale
	return &cp, nil
}

func (r *fakeSaleRepo) List(limit, offset int) ([]*entity.Sale, error) {
	var out []*entity.Sale
	for _, sale := range r.s.sales {
		cp := *sale
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// ── TxRunner ──────────────────────────────────────────────────────────────────

type fakeTxRunner struct{ s *memStore }

var _ condicional.TxRunner = (*fakeTxRunner)(nil)

func (r *fakeTxRunner) Run(ctx context.Context, fn func(
	condRepo repository.CondicionalRepository,
	itemRepo repository.ItemRepository,
	saleRepo repository.SaleRepository,
	clientRepo repository.ClientRepository,
) error) error {
	tx := r.s.clone()
	if err := fn(&fakeCondRepo{tx}, &fakeItemRepo{tx}, &fakeSaleRepo{tx}, &fakeClientRepo{tx}); err != nil {
		return err
	}
	*r.s = *tx
	return nil
}

// hookedTxRunner ejecuta before justo antes de abrir la transacción, para
// simular escrituras concurrentes que aterrizan entre la lectura previa del
// llamador y el inicio de su transacción.
type hookedTxRunner struct {
	inner  *fakeTxRunner
	before func()
}

var _ condicional.TxRunner = (*hookedTxRunner)(nil)

func (r *hookedTxRunner) Run(ctx context.Context, fn func(
	condRepo repository.CondicionalRepository,
	itemRepo repository.ItemRepository,
	saleRepo repository.SaleRepository,
	clientRepo repository.ClientRepository,
) error) error {
	if r.before != nil {
		r.before()
	}
	return r.inner.Run(ctx, fn)
}

// ── helpers de fixture ────────────────────────────────────────────────────────

type engineFixture struct {
	store   *memStore
	uc      *condicional.CondicionalUseCase
	reports *condicional.ReportUseCase
}

func newEngineFixture() *engineFixture {
	store := newMemStore()
	condRepo := &fakeCondRepo{store}
	return &engineFixture{
		store:   store,
		uc:      condicional.NewCondicionalUseCase(&fakeTxRunner{store}, condRepo),
		reports: condicional.NewReportUseCase(condRepo),
	}
}

func (f *engineFixture) seedClient(name string) *entity.Client {
	client := &entity.Client{Name: name, Phone: "3001234567", CreatedAt: time.Now()}
	_ = (&fakeClientRepo{f.store}).Create(client)
	return client
}

func (f *engineFixture) seedItem(name string, price int64, quantity int) *entity.Item {
	item := &entity.Item{
		Name:      name,
		Price:     decimal.NewFromInt(price),
		Quantity:  quantity,
		Status:    entity.ItemStatusDisponible,
		CreatedAt: time.Now(),
	}
	_ = (&fakeItemRepo{f.store}).Create(item)
	return item
}

func (f *engineFixture) item(id int64) *entity.Item {
	return f.store.items[id]
}

func (f *engineFixture) cond(id int64) *entity.Condicional {
	cond, _ := (&fakeCondRepo{f.store}).GetByID(id)
	return cond
}

// totalUnits suma el stock disponible más las unidades retenidas en líneas:
// las operaciones que no venden deben conservar esta suma.
func (f *engineFixture) totalUnits(itemID int64) int {
	total := 0
	if it, ok := f.store.items[itemID]; ok {
		total = it.Quantity
	}
	for _, ln := range f.store.lines {
		if ln.ItemID == itemID {
			total += ln.Quantity
		}
	}
	return total
}

// tomorrow fecha de devolución válida por defecto.
func tomorrow() string {
	return time.Now().AddDate(0, 0, 1).Format("2006-01-02")
}
