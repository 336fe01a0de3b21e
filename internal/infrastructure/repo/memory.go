package repo

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"madhughor-backend/internal/domain"
	"madhughor-backend/internal/usecase"
)

type MemoryOrderRepo struct {
	mu  sync.RWMutex
	m   map[string]*domain.Order
	seq int
}

func NewMemoryOrderRepo() *MemoryOrderRepo {
	return &MemoryOrderRepo{m: make(map[string]*domain.Order)}
}

func (r *MemoryOrderRepo) InsertOrder(o *domain.Order) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	r.seq++
	o.ID = randomID()
	o.OrderNumber = fmt.Sprintf("MH-%s-%05d", now.Format("20060102"), r.seq)
	o.CreatedAt = now
	o.UpdatedAt = now
	cp := *o
	r.m[o.ID] = &cp
	return o.OrderNumber, nil
}

func (r *MemoryOrderRepo) GetOrder(id string) (*domain.Order, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.m[id]
	if !ok {
		return nil, false
	}
	cp := *o
	return &cp, true
}

func (r *MemoryOrderRepo) ListOrders(page, pageSize int) ([]domain.Order, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]domain.Order, 0, len(r.m))
	for _, o := range r.m {
		all = append(all, *o)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return all[start:end], total
}

func (r *MemoryOrderRepo) UpdateOrderStatus(id string, status domain.OrderStatus, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.m[id]
	if !ok {
		return usecase.ErrNotFound("order")
	}
	o.Status = status
	o.UpdatedAt = at
	ts := at
	switch status {
	case domain.OrderConfirmed:
		o.ConfirmedAt = &ts
	case domain.OrderProcessing:
		o.ProcessingAt = &ts
	case domain.OrderShipped:
		o.ShippedAt = &ts
	case domain.OrderDelivered:
		o.DeliveredAt = &ts
	}
	return nil
}

func (r *MemoryOrderRepo) UpdatePaymentMethod(id string, method string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.m[id]
	if !ok {
		return usecase.ErrNotFound("order")
	}
	o.PaymentMethod = method
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryOrderRepo) OrderStats() (*usecase.OrderStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := &usecase.OrderStats{ByStatus: map[string]int{}}
	for _, o := range r.m {
		stats.TotalOrders++
		stats.ByStatus[string(o.Status)]++
		stats.Revenue += o.TotalAmount
		stats.DeliveryRevenue += o.DeliveryCharge
		stats.DiscountGiven += o.DiscountAmount
	}
	return stats, nil
}

type MemoryProductRepo struct {
	mu sync.RWMutex
	m  map[string]*domain.ProductVariation
}

func NewMemoryProductRepo() *MemoryProductRepo {
	return &MemoryProductRepo{m: make(map[string]*domain.ProductVariation)}
}

func (r *MemoryProductRepo) PutVariation(pv *domain.ProductVariation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *pv
	r.m[pv.ID] = &cp
	return nil
}

func (r *MemoryProductRepo) GetActiveVariation(id string) (*domain.ProductVariation, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pv, ok := r.m[id]
	if !ok || !pv.IsActive {
		return nil, false, nil
	}
	cp := *pv
	return &cp, true, nil
}

type MemoryCartRepo struct {
	mu sync.RWMutex
	m  map[string]*domain.AbandonedCart
}

func NewMemoryCartRepo() *MemoryCartRepo {
	return &MemoryCartRepo{m: make(map[string]*domain.AbandonedCart)}
}

func (r *MemoryCartRepo) InsertCart(c *domain.AbandonedCart) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	c.ID = randomID()
	c.CreatedAt = now
	c.UpdatedAt = now
	cp := *c
	r.m[c.ID] = &cp
	return c.ID, nil
}

// UpdateCart overwrites the stored form fields wholesale; concurrent
// debounce and unload saves are last-write-wins.
func (r *MemoryCartRepo) UpdateCart(id string, c *domain.AbandonedCart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.m[id]
	if !ok {
		return usecase.ErrNotFound("cart")
	}
	cp := *c
	cp.ID = id
	cp.IsConverted = old.IsConverted
	cp.Contacted = old.Contacted
	cp.ContactNotes = old.ContactNotes
	cp.CreatedAt = old.CreatedAt
	cp.UpdatedAt = time.Now().UTC()
	r.m[id] = &cp
	return nil
}

func (r *MemoryCartRepo) MarkConverted(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.m[id]
	if !ok {
		return usecase.ErrNotFound("cart")
	}
	c.IsConverted = true
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryCartRepo) ListUnconverted(page, pageSize int) ([]domain.AbandonedCart, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]domain.AbandonedCart, 0, len(r.m))
	for _, c := range r.m {
		if !c.IsConverted {
			all = append(all, *c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UpdatedAt.After(all[j].UpdatedAt) })
	total := len(all)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (r *MemoryCartRepo) SetContacted(id, notes string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.m[id]
	if !ok {
		return usecase.ErrNotFound("cart")
	}
	c.Contacted = true
	c.ContactNotes = notes
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryCartRepo) Get(id string) (*domain.AbandonedCart, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.m[id]
	if !ok {
		return nil, false
	}
	cp := *c
	return &cp, true
}

type MemoryEventRepo struct {
	mu     sync.RWMutex
	events []domain.VisitorEvent
}

func NewMemoryEventRepo() *MemoryEventRepo {
	return &MemoryEventRepo{}
}

func (r *MemoryEventRepo) InsertEvent(e *domain.VisitorEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = randomID()
	e.CreatedAt = time.Now().UTC()
	r.events = append(r.events, *e)
	return nil
}

func (r *MemoryEventRepo) Events() []domain.VisitorEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.VisitorEvent, len(r.events))
	copy(out, r.events)
	return out
}

type MemoryDistrictRepo struct {
	mu sync.RWMutex
	m  []domain.District
}

func NewMemoryDistrictRepo() *MemoryDistrictRepo {
	return &MemoryDistrictRepo{}
}

func (r *MemoryDistrictRepo) PutDistrict(d domain.District) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m = append(r.m, d)
}

func (r *MemoryDistrictRepo) ListActiveDistricts() ([]domain.District, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.District, 0, len(r.m))
	for _, d := range r.m {
		if d.IsActive {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type MemorySettingsRepo struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemorySettingsRepo() *MemorySettingsRepo {
	return &MemorySettingsRepo{m: make(map[string]string)}
}

func (r *MemorySettingsRepo) GetSetting(key string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.m[key]
	return v, ok
}

func (r *MemorySettingsRepo) PutSetting(key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[key] = value
	return nil
}

type MemoryUserRepo struct {
	mu    sync.RWMutex
	users map[string]*domain.AdminUser
	roles map[string]map[domain.Role]bool
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		users: make(map[string]*domain.AdminUser),
		roles: make(map[string]map[domain.Role]bool),
	}
}

func (r *MemoryUserRepo) PutUser(u *domain.AdminUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.Subject] = &cp
	if r.roles[u.UserID] == nil {
		r.roles[u.UserID] = map[domain.Role]bool{}
	}
	r.roles[u.UserID][u.Role] = true
	return nil
}

func (r *MemoryUserRepo) GetUserBySubject(subject string) (*domain.AdminUser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[subject]
	if !ok {
		return nil, false
	}
	cp := *u
	return &cp, true
}

func (r *MemoryUserRepo) HasRole(userID string, role domain.Role) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.roles[userID][role]
}
