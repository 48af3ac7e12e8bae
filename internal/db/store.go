// exposes a Store interface that is passed to services and handlers
package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Nixie-Tech-LLC/perks/internal/model"
)

var ErrNotFound = errors.New("not found")

type Store interface {
	// user functions
	CreateUser(ctx context.Context, email, hashedPassword string, name *string) (int, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id int) (*model.User, error)
	UpdateUserProfile(ctx context.Context, id int, email string, name *string) error

	// store functions
	CreateStore(ctx context.Context, ownerID int, name, timezone string) (model.Store, error)
	GetStore(ctx context.Context, id int) (model.Store, error)
	ListStores(ctx context.Context, ownerID int) ([]model.Store, error)

	// discount functions
	CreateDiscount(ctx context.Context, d *model.Discount) error
	UpdateDiscount(ctx context.Context, d *model.Discount) error
	SetDiscountActive(ctx context.Context, id uuid.UUID, active bool) error
	DeleteDiscount(ctx context.Context, id uuid.UUID) error
	GetDiscount(ctx context.Context, id uuid.UUID) (*model.Discount, error)
	ListDiscounts(ctx context.Context, storeID int) ([]model.Discount, error)

	// redemption functions
	CreateRedemption(ctx context.Context, discountID uuid.UUID, userID int) (model.Redemption, error)
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

func NewStore(conn *sqlx.DB) Store {
	return &pgStore{db: conn}
}

// notFound maps sql.ErrNoRows to ErrNotFound and passes anything else through.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func expectOne(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
