package endpoints

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/perks/internal/db"
	"github.com/Nixie-Tech-LLC/perks/internal/http/api"
	"github.com/Nixie-Tech-LLC/perks/internal/http/api/customer/packets"
	"github.com/Nixie-Tech-LLC/perks/internal/model"
	"github.com/Nixie-Tech-LLC/perks/internal/service"
)

type DiscountController struct {
	discounts *service.Discounts
}

// DiscountPublicModule mounts the unauthenticated discount views.
func DiscountPublicModule(discounts *service.Discounts, frames FrameSource) api.Module {
	ctl := &DiscountController{discounts: discounts}
	stream := newCountdownStream(discounts, frames)
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_GET("/discounts/:id", ctl.getStatus)
		c.RAW_GET("/discounts/:id/countdown", stream.serve)
	})
}

// DiscountRedeemModule mounts redemption, which needs a signed-in user.
func DiscountRedeemModule(discounts *service.Discounts) api.Module {
	ctl := &DiscountController{discounts: discounts}
	return api.ModuleFunc(func(c *api.Controller) {
		c.POST("/discounts/:id/redeem", ctl.redeem)
	})
}

func discountID(ctx *gin.Context) (uuid.UUID, *api.Error) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return uuid.Nil, api.BadRequest("invalid discount id")
	}
	return id, nil
}

// GET /api/discounts/:id
func (d *DiscountController) getStatus(ctx *gin.Context) (any, *api.Error) {
	id, apiErr := discountID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	st, err := d.discounts.Status(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, api.NotFound("discount not found")
	}
	if err != nil {
		return nil, api.Internal("could not evaluate discount")
	}
	return packets.NewDiscountStatus(st), nil
}

// POST /api/discounts/:id/redeem
func (d *DiscountController) redeem(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, apiErr := discountID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}

	r, err := d.discounts.Redeem(ctx, id, user.ID)
	var unavailable *service.UnavailableError
	switch {
	case errors.As(err, &unavailable):
		return nil, &api.Error{Code: http.StatusConflict, Message: packets.Message(unavailable.Reason)}
	case errors.Is(err, db.ErrNotFound):
		return nil, api.NotFound("discount not found")
	case err != nil:
		log.Error().Err(err).Str("discount_id", id.String()).Msg("redeem failed")
		return nil, api.Internal("could not redeem discount")
	}

	return packets.RedemptionResponse{
		ID:         r.ID,
		DiscountID: r.DiscountID,
		RedeemedAt: r.RedeemedAt.Format(time.RFC3339),
	}, nil
}
