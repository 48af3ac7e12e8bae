package db

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/perks/internal/model"
)

const storeColumns = `id, owner_id, name, timezone, created_at, updated_at`

func (s *pgStore) CreateStore(ctx context.Context, ownerID int, name, timezone string) (model.Store, error) {
	var st model.Store
	q := `
	INSERT INTO stores (owner_id, name, timezone, created_at, updated_at)
	VALUES ($1, $2, $3, now(), now())
	RETURNING ` + storeColumns + `;`
	if err := s.db.GetContext(ctx, &st, q, ownerID, name, timezone); err != nil {
		log.Error().Err(err).Int("owner_id", ownerID).Msg("CreateStore failed")
		return model.Store{}, err
	}
	return st, nil
}

func (s *pgStore) GetStore(ctx context.Context, id int) (model.Store, error) {
	var st model.Store
	err := s.db.GetContext(ctx, &st, `SELECT `+storeColumns+` FROM stores WHERE id = $1;`, id)
	if err != nil {
		if err = notFound(err); err != ErrNotFound {
			log.Error().Err(err).Int("store_id", id).Msg("GetStore failed")
		}
		return model.Store{}, err
	}
	return st, nil
}

func (s *pgStore) ListStores(ctx context.Context, ownerID int) ([]model.Store, error) {
	out := []model.Store{}
	q := `
	SELECT ` + storeColumns + `
	  FROM stores
	 WHERE owner_id = $1
	 ORDER BY id;`
	if err := s.db.SelectContext(ctx, &out, q, ownerID); err != nil {
		log.Error().Err(err).Int("owner_id", ownerID).Msg("ListStores failed")
		return nil, err
	}
	return out, nil
}
