package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fusionfit/storefront/app/models"
	"github.com/fusionfit/storefront/app/repositories"
)

// ─── fake user repository ─────────────────────────────────────────────────────

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]*models.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.ID = primitive.NewObjectID()
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserRepo) FindByVerificationToken(_ context.Context, hashed string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.VerificationToken == hashed && u.VerificationTokenExpire.After(time.Now()) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserRepo) FindByResetToken(_ context.Context, hashed string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ResetPasswordToken == hashed && u.ResetPasswordExpire.After(time.Now()) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserRepo) mutate(id primitive.ObjectID, fn func(u *models.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	fn(u)
	u.UpdatedAt = time.Now()
	return nil
}

func (f *fakeUserRepo) SetVerificationToken(_ context.Context, id primitive.ObjectID, hashed string, expire time.Time) error {
	return f.mutate(id, func(u *models.User) {
		u.VerificationToken = hashed
		u.VerificationTokenExpire = expire
	})
}

func (f *fakeUserRepo) MarkVerified(_ context.Context, id primitive.ObjectID) error {
	return f.mutate(id, func(u *models.User) {
		u.IsVerified = true
		u.VerificationToken = ""
		u.VerificationTokenExpire = time.Time{}
	})
}

func (f *fakeUserRepo) SetResetToken(_ context.Context, id primitive.ObjectID, hashed string, expire time.Time) error {
	return f.mutate(id, func(u *models.User) {
		u.ResetPasswordToken = hashed
		u.ResetPasswordExpire = expire
	})
}

func (f *fakeUserRepo) ClearResetToken(_ context.Context, id primitive.ObjectID) error {
	return f.mutate(id, func(u *models.User) {
		u.ResetPasswordToken = ""
		u.ResetPasswordExpire = time.Time{}
	})
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id primitive.ObjectID, hashedPassword string) error {
	return f.mutate(id, func(u *models.User) {
		u.Password = hashedPassword
		u.ResetPasswordToken = ""
		u.ResetPasswordExpire = time.Time{}
	})
}

func (f *fakeUserRepo) AddFavorite(_ context.Context, id, productID primitive.ObjectID) error {
	return f.mutate(id, func(u *models.User) {
		for _, fav := range u.Favorites {
			if fav == productID {
				return
			}
		}
		u.Favorites = append(u.Favorites, productID)
	})
}

func (f *fakeUserRepo) RemoveFavorite(_ context.Context, id, productID primitive.ObjectID) error {
	return f.mutate(id, func(u *models.User) {
		kept := u.Favorites[:0]
		for _, fav := range u.Favorites {
			if fav != productID {
				kept = append(kept, fav)
			}
		}
		u.Favorites = kept
	})
}

func (f *fakeUserRepo) PurgeExpiredTokens(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	var n int64
	for _, u := range f.users {
		if u.VerificationToken != "" && !u.VerificationTokenExpire.After(now) {
			u.VerificationToken = ""
			u.VerificationTokenExpire = time.Time{}
			n++
		}
		if u.ResetPasswordToken != "" && !u.ResetPasswordExpire.After(now) {
			u.ResetPasswordToken = ""
			u.ResetPasswordExpire = time.Time{}
			n++
		}
	}
	return n, nil
}

// ─── fake product repository ──────────────────────────────────────────────────

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]*models.Product
	order    []primitive.ObjectID // insertion order, the store's natural order
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[primitive.ObjectID]*models.Product{}}
}

func (f *fakeProductRepo) snapshot() map[primitive.ObjectID]models.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := make(map[primitive.ObjectID]models.Product, len(f.products))
	for id, p := range f.products {
		snap[id] = *p
	}
	return snap
}

func (f *fakeProductRepo) restore(snap map[primitive.ObjectID]models.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id := range f.products {
		if _, ok := snap[id]; !ok {
			delete(f.products, id)
		}
	}
	for id, p := range snap {
		cp := p
		f.products[id] = &cp
	}
}

func (f *fakeProductRepo) Create(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = primitive.NewObjectID()
	cp := *p
	f.products[p.ID] = &cp
	f.order = append(f.order, p.ID)
	return nil
}

func (f *fakeProductRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.products[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeProductRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Product{}
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) FindByListedBy(_ context.Context, adminID primitive.ObjectID) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Product{}
	for _, id := range f.order {
		if p, ok := f.products[id]; ok && p.ListedBy == adminID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) Update(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[p.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *p
	f.products[p.ID] = &cp
	return nil
}

func (f *fakeProductRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.products, id)
	return nil
}

func matches(p *models.Product, opts repositories.ListOptions) bool {
	if opts.TargetShape != "" {
		found := false
		for _, s := range p.TargetShapes {
			if s == opts.TargetShape {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if opts.Type != "" && p.Type != opts.Type {
		return false
	}
	if opts.NameQuery != "" &&
		!strings.Contains(strings.ToLower(p.Name), strings.ToLower(opts.NameQuery)) {
		return false
	}
	return true
}

func (f *fakeProductRepo) List(_ context.Context, opts repositories.ListOptions) ([]models.Product, int64, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = repositories.PageSize
	}

	f.mu.Lock()
	all := []models.Product{}
	for _, id := range f.order {
		if p, ok := f.products[id]; ok && matches(p, opts) {
			all = append(all, *p)
		}
	}
	f.mu.Unlock()

	switch opts.SortBy {
	case repositories.SortPriceLowToHigh:
		sort.SliceStable(all, func(i, j int) bool { return all[i].Price < all[j].Price })
	case repositories.SortPriceHighToLow:
		sort.SliceStable(all, func(i, j int) bool { return all[i].Price > all[j].Price })
	case repositories.SortNewest:
		sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	}

	total := int64(len(all))
	start := (opts.Page - 1) * opts.Limit
	if start >= len(all) {
		return []models.Product{}, total, nil
	}
	end := start + opts.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (f *fakeProductRepo) Suggestions(_ context.Context, query string) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := strings.ToLower(query)
	out := []models.Product{}
	for _, id := range f.order {
		p, ok := f.products[id]
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, *p)
			if len(out) == repositories.SuggestionLimit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeProductRepo) DecrementStock(_ context.Context, id primitive.ObjectID, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok || p.Stock < qty {
		return repositories.ErrInsufficientStock
	}
	p.Stock -= qty
	return nil
}

func (f *fakeProductRepo) CountAll(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.products)), nil
}

func (f *fakeProductRepo) CountOutOfStock(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, p := range f.products {
		if p.Stock == 0 {
			n++
		}
	}
	return n, nil
}

func (f *fakeProductRepo) CountLowStock(_ context.Context, threshold int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, p := range f.products {
		if p.Stock > 0 && p.Stock <= threshold {
			n++
		}
	}
	return n, nil
}

// ─── fake order repository ────────────────────────────────────────────────────

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[primitive.ObjectID]*models.Order
	seq    []primitive.ObjectID
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[primitive.ObjectID]*models.Order{}}
}

func (f *fakeOrderRepo) snapshot() map[primitive.ObjectID]models.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := make(map[primitive.ObjectID]models.Order, len(f.orders))
	for id, o := range f.orders {
		snap[id] = *o
	}
	return snap
}

func (f *fakeOrderRepo) restore(snap map[primitive.ObjectID]models.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id := range f.orders {
		if _, ok := snap[id]; !ok {
			delete(f.orders, id)
		}
	}
	for id, o := range snap {
		cp := o
		f.orders[id] = &cp
	}
}

func (f *fakeOrderRepo) Create(_ context.Context, o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o.ID = primitive.NewObjectID()
	o.CreatedAt = time.Now()
	cp := *o
	f.orders[o.ID] = &cp
	f.seq = append(f.seq, o.ID)
	return nil
}

func (f *fakeOrderRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.orders[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeOrderRepo) newestFirst(keep func(o *models.Order) bool) []models.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Order{}
	for i := len(f.seq) - 1; i >= 0; i-- {
		if o, ok := f.orders[f.seq[i]]; ok && keep(o) {
			out = append(out, *o)
		}
	}
	return out
}

func (f *fakeOrderRepo) FindByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return f.newestFirst(func(o *models.Order) bool { return o.User == userID }), nil
}

func (f *fakeOrderRepo) FindByProducts(_ context.Context, productIDs []primitive.ObjectID) ([]models.Order, error) {
	wanted := map[primitive.ObjectID]bool{}
	for _, id := range productIDs {
		wanted[id] = true
	}
	return f.newestFirst(func(o *models.Order) bool {
		for _, item := range o.Items {
			if wanted[item.Product] {
				return true
			}
		}
		return false
	}), nil
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.OrderStatus, completePayment bool) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	o.OrderStatus = status
	if completePayment {
		o.PaymentStatus = models.PaymentCompleted
	}
	o.UpdatedAt = time.Now()
	cp := *o
	return &cp, nil
}

func (f *fakeOrderRepo) CountAll(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.orders)), nil
}

func (f *fakeOrderRepo) CountByStatus(_ context.Context, status models.OrderStatus) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, o := range f.orders {
		if o.OrderStatus == status {
			n++
		}
	}
	return n, nil
}

func (f *fakeOrderRepo) CountCreatedBetween(_ context.Context, from, to time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, o := range f.orders {
		if !o.CreatedAt.Before(from) && o.CreatedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

func (f *fakeOrderRepo) RevenueBetween(_ context.Context, from, to time.Time) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum float64
	for _, o := range f.orders {
		if o.PaymentStatus == models.PaymentCompleted &&
			!o.CreatedAt.Before(from) && o.CreatedAt.Before(to) {
			sum += o.TotalAmount
		}
	}
	return sum, nil
}

// ─── fake storage disk ────────────────────────────────────────────────────────

type fakeDisk struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeDisk() *fakeDisk {
	return &fakeDisk{objects: map[string][]byte{}}
}

func (d *fakeDisk) Put(_ context.Context, key string, content []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.objects[key] = content
	return nil
}

func (d *fakeDisk) Get(_ context.Context, key string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if content, ok := d.objects[key]; ok {
		return content, nil
	}
	return nil, repositories.ErrNotFound
}

func (d *fakeDisk) Exists(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.objects[key]
	return ok
}

func (d *fakeDisk) Delete(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.objects, key)
	return nil
}

func (d *fakeDisk) URL(key string) string { return "https://cdn.test/" + key }
