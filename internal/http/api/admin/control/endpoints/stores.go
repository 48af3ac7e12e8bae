package endpoints

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/perks/internal/db"
	"github.com/Nixie-Tech-LLC/perks/internal/http/api"
	"github.com/Nixie-Tech-LLC/perks/internal/http/api/admin/control/packets"
	"github.com/Nixie-Tech-LLC/perks/internal/model"
)

type StoreController struct {
	store db.Store
}

// StoreModule mounts the authenticated /stores endpoints.
func StoreModule(store db.Store) api.Module {
	ctl := &StoreController{store: store}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/stores", ctl.listStores)
		c.POST("/stores", ctl.createStore)
		c.GET("/stores/:id", ctl.getStore)
	})
}

// ownedStore loads the store named by the :id param and checks the caller owns it.
func ownedStore(ctx *gin.Context, store db.Store, user *model.User, param string) (model.Store, *api.Error) {
	id, err := strconv.Atoi(ctx.Param(param))
	if err != nil {
		return model.Store{}, api.BadRequest("invalid store id")
	}
	st, err := store.GetStore(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return model.Store{}, api.NotFound("store not found")
	}
	if err != nil {
		return model.Store{}, api.Internal("could not load store")
	}
	if st.OwnerID != user.ID {
		return model.Store{}, &api.Error{Code: http.StatusForbidden, Message: "not your store"}
	}
	return st, nil
}

// GET /api/admin/stores
func (s *StoreController) listStores(ctx *gin.Context, user *model.User) (any, *api.Error) {
	all, err := s.store.ListStores(ctx, user.ID)
	if err != nil {
		return nil, api.Internal(err.Error())
	}
	out := make([]packets.StoreResponse, 0, len(all))
	for _, st := range all {
		out = append(out, packets.NewStore(st))
	}
	return out, nil
}

// POST /api/admin/stores
func (s *StoreController) createStore(ctx *gin.Context, user *model.User) (any, *api.Error) {
	var request packets.CreateStoreRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}
	if request.Timezone == "" {
		request.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(request.Timezone); err != nil {
		return nil, api.BadRequest("unknown timezone " + strconv.Quote(request.Timezone))
	}

	st, err := s.store.CreateStore(ctx, user.ID, request.Name, request.Timezone)
	if err != nil {
		return nil, api.Internal("could not create store")
	}
	return packets.NewStore(st), nil
}

// GET /api/admin/stores/:id
func (s *StoreController) getStore(ctx *gin.Context, user *model.User) (any, *api.Error) {
	st, apiErr := ownedStore(ctx, s.store, user, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	return packets.NewStore(st), nil
}
