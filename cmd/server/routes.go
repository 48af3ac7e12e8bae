package main

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/perks/internal/config"
	"github.com/Nixie-Tech-LLC/perks/internal/db"
	"github.com/Nixie-Tech-LLC/perks/internal/http/api"
	authapi "github.com/Nixie-Tech-LLC/perks/internal/http/api/admin/auth/endpoints"
	adminapi "github.com/Nixie-Tech-LLC/perks/internal/http/api/admin/control/endpoints"
	customerapi "github.com/Nixie-Tech-LLC/perks/internal/http/api/customer/endpoints"
	"github.com/Nixie-Tech-LLC/perks/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/perks/internal/service"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(r *gin.Engine, cfg *config.Config, store db.Store, discounts *service.Discounts, frames customerapi.FrameSource) {
	r.Use(middleware.RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/admin",
	},
		authapi.AuthPublicModule(cfg.JWTSecret, store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/admin",
		Auth:      true,
		SecretKey: cfg.JWTSecret,
		Users:     store,
	},
		authapi.AuthSessionModule(cfg.JWTSecret, store),
		adminapi.StoreModule(store),
		adminapi.DiscountModule(store, discounts),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api",
	},
		customerapi.DiscountPublicModule(discounts, frames),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api",
		Auth:      true,
		SecretKey: cfg.JWTSecret,
		Users:     store,
	},
		customerapi.DiscountRedeemModule(discounts),
	)
}
