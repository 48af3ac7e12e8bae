// Package dbtest provides an in-memory db.Store for handler and service tests.
package dbtest

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Nixie-Tech-LLC/perks/internal/db"
	"github.com/Nixie-Tech-LLC/perks/internal/model"
)

type Memory struct {
	mu          sync.Mutex
	nextID      int
	users       map[int]*model.User
	stores      map[int]model.Store
	discounts   map[uuid.UUID]model.Discount
	Redemptions []model.Redemption

	// DiscountReads counts GetDiscount calls.
	DiscountReads int
}

var _ db.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		users:     map[int]*model.User{},
		stores:    map[int]model.Store{},
		discounts: map[uuid.UUID]model.Discount{},
	}
}

func (m *Memory) id() int {
	m.nextID++
	return m.nextID
}

func (m *Memory) CreateUser(_ context.Context, email, hashedPassword string, name *string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	u := &model.User{ID: m.id(), Email: email, HashedPassword: hashedPassword, Name: name, CreatedAt: now, UpdatedAt: now}
	m.users[u.ID] = u
	return u.ID, nil
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *Memory) GetUserByID(_ context.Context, id int) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) UpdateUserProfile(_ context.Context, id int, email string, name *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return db.ErrNotFound
	}
	u.Email, u.Name, u.UpdatedAt = email, name, time.Now()
	return nil
}

func (m *Memory) CreateStore(_ context.Context, ownerID int, name, timezone string) (model.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	st := model.Store{ID: m.id(), OwnerID: ownerID, Name: name, Timezone: timezone, CreatedAt: now, UpdatedAt: now}
	m.stores[st.ID] = st
	return st, nil
}

func (m *Memory) GetStore(_ context.Context, id int) (model.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.stores[id]
	if !ok {
		return model.Store{}, db.ErrNotFound
	}
	return st, nil
}

func (m *Memory) ListStores(_ context.Context, ownerID int) ([]model.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Store{}
	for id := 1; id <= m.nextID; id++ {
		if st, ok := m.stores[id]; ok && st.OwnerID == ownerID {
			out = append(out, st)
		}
	}
	return out, nil
}

// PutDiscount stores d as-is, for seeding rows the API would reject.
func (m *Memory) PutDiscount(d model.Discount) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.stores[d.StoreID]; ok {
		d.Timezone = st.Timezone
	}
	m.discounts[d.ID] = d
}

func (m *Memory) CreateDiscount(_ context.Context, d *model.Discount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if st, ok := m.stores[d.StoreID]; ok {
		d.Timezone = st.Timezone
	}
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	m.discounts[d.ID] = *d
	d.DecodeAvailability()
	return nil
}

func (m *Memory) UpdateDiscount(_ context.Context, d *model.Discount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.discounts[d.ID]; !ok {
		return db.ErrNotFound
	}
	d.UpdatedAt = time.Now()
	m.discounts[d.ID] = *d
	d.DecodeAvailability()
	return nil
}

func (m *Memory) SetDiscountActive(_ context.Context, id uuid.UUID, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.discounts[id]
	if !ok {
		return db.ErrNotFound
	}
	d.Active = active
	m.discounts[id] = d
	return nil
}

func (m *Memory) DeleteDiscount(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.discounts[id]; !ok {
		return db.ErrNotFound
	}
	delete(m.discounts, id)
	return nil
}

func (m *Memory) GetDiscount(_ context.Context, id uuid.UUID) (*model.Discount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DiscountReads++
	d, ok := m.discounts[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	d.DecodeAvailability()
	return &d, nil
}

func (m *Memory) ListDiscounts(_ context.Context, storeID int) ([]model.Discount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Discount{}
	for _, d := range m.discounts {
		if d.StoreID == storeID {
			d.DecodeAvailability()
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *Memory) CreateRedemption(_ context.Context, discountID uuid.UUID, userID int) (model.Redemption, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := model.Redemption{ID: uuid.New(), DiscountID: discountID, UserID: userID, RedeemedAt: time.Now()}
	m.Redemptions = append(m.Redemptions, r)
	return r, nil
}
