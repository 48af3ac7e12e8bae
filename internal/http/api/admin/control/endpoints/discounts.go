package endpoints

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/Nixie-Tech-LLC/perks/internal/availability"
	"github.com/Nixie-Tech-LLC/perks/internal/db"
	"github.com/Nixie-Tech-LLC/perks/internal/http/api"
	"github.com/Nixie-Tech-LLC/perks/internal/http/api/admin/control/packets"
	"github.com/Nixie-Tech-LLC/perks/internal/model"
	"github.com/Nixie-Tech-LLC/perks/internal/service"
)

var hundred = decimal.NewFromInt(100)

type DiscountController struct {
	store     db.Store
	discounts *service.Discounts
}

// DiscountModule mounts the authenticated discount management endpoints.
func DiscountModule(store db.Store, discounts *service.Discounts) api.Module {
	ctl := &DiscountController{store: store, discounts: discounts}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/stores/:id/discounts", ctl.listDiscounts)
		c.POST("/stores/:id/discounts", ctl.createDiscount)
		c.GET("/discounts/:id", ctl.getDiscount)
		c.PUT("/discounts/:id", ctl.updateDiscount)
		c.PATCH("/discounts/:id/active", ctl.setActive)
		c.DELETE("/discounts/:id", ctl.deleteDiscount)
	})
}

// ownedDiscount resolves :id to a discount whose store the caller owns.
func (d *DiscountController) ownedDiscount(ctx *gin.Context, user *model.User) (*model.Discount, *api.Error) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return nil, api.BadRequest("invalid discount id")
	}
	found, err := d.discounts.Get(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, api.NotFound("discount not found")
	}
	if err != nil {
		return nil, api.Internal("could not load discount")
	}
	st, err := d.store.GetStore(ctx, found.StoreID)
	if err != nil {
		return nil, api.Internal("could not load store")
	}
	if st.OwnerID != user.ID {
		return nil, &api.Error{Code: http.StatusForbidden, Message: "not your discount"}
	}
	return found, nil
}

// apply validates request and copies it onto target.
func apply(request packets.DiscountRequest, target *model.Discount) *api.Error {
	if request.PercentOff.LessThanOrEqual(decimal.Zero) || request.PercentOff.GreaterThan(hundred) {
		return api.BadRequest("percent_off must be greater than 0 and at most 100")
	}
	if request.StartDate != nil && request.EndDate != nil && request.EndDate.Before(*request.StartDate) {
		return api.BadRequest("end_date is before start_date")
	}

	var rule *availability.AvailableDaysAndTimes
	if request.Availability != nil {
		days, err := availability.Normalize(*request.Availability)
		if err != nil {
			return api.BadRequest(err.Error())
		}
		rule = &days
	}

	target.Title = request.Title
	target.Description = request.Description
	target.PercentOff = request.PercentOff
	target.Active = request.Active == nil || *request.Active
	target.StartDate = request.StartDate
	target.EndDate = request.EndDate
	if err := target.SetAvailability(rule); err != nil {
		return api.Internal("could not encode availability")
	}
	return nil
}

// GET /api/admin/stores/:id/discounts
func (d *DiscountController) listDiscounts(ctx *gin.Context, user *model.User) (any, *api.Error) {
	st, apiErr := ownedStore(ctx, d.store, user, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	statuses, err := d.discounts.ListForStore(ctx, st.ID)
	if err != nil {
		return nil, api.Internal("could not list discounts")
	}
	out := make([]packets.DiscountResponse, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, packets.NewDiscount(s))
	}
	return out, nil
}

// POST /api/admin/stores/:id/discounts
func (d *DiscountController) createDiscount(ctx *gin.Context, user *model.User) (any, *api.Error) {
	st, apiErr := ownedStore(ctx, d.store, user, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	var request packets.DiscountRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}

	created := &model.Discount{StoreID: st.ID}
	if apiErr := apply(request, created); apiErr != nil {
		return nil, apiErr
	}
	if err := d.discounts.Save(ctx, created); err != nil {
		return nil, api.Internal("could not create discount")
	}
	log.Info().Str("discount_id", created.ID.String()).Int("store_id", st.ID).Msg("discount created")
	return d.statusOf(ctx, created.ID)
}

// GET /api/admin/discounts/:id
func (d *DiscountController) getDiscount(ctx *gin.Context, user *model.User) (any, *api.Error) {
	found, apiErr := d.ownedDiscount(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	return d.statusOf(ctx, found.ID)
}

// PUT /api/admin/discounts/:id
func (d *DiscountController) updateDiscount(ctx *gin.Context, user *model.User) (any, *api.Error) {
	found, apiErr := d.ownedDiscount(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	var request packets.DiscountRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}
	if apiErr := apply(request, found); apiErr != nil {
		return nil, apiErr
	}
	if err := d.discounts.Save(ctx, found); err != nil {
		return nil, api.Internal("could not update discount")
	}
	return d.statusOf(ctx, found.ID)
}

// PATCH /api/admin/discounts/:id/active
func (d *DiscountController) setActive(ctx *gin.Context, user *model.User) (any, *api.Error) {
	found, apiErr := d.ownedDiscount(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	var request packets.SetActiveRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}
	if err := d.discounts.SetActive(ctx, found.ID, *request.Active); err != nil {
		return nil, api.Internal("could not update discount")
	}
	return d.statusOf(ctx, found.ID)
}

// DELETE /api/admin/discounts/:id
func (d *DiscountController) deleteDiscount(ctx *gin.Context, user *model.User) (any, *api.Error) {
	found, apiErr := d.ownedDiscount(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := d.discounts.Delete(ctx, found.ID); err != nil {
		return nil, api.Internal("could not delete discount")
	}
	return gin.H{"deleted": found.ID}, nil
}

func (d *DiscountController) statusOf(ctx *gin.Context, id uuid.UUID) (any, *api.Error) {
	st, err := d.discounts.Status(ctx, id)
	if err != nil {
		return nil, api.Internal("could not evaluate discount")
	}
	return packets.NewDiscount(st), nil
}
