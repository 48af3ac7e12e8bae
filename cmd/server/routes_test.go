package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/Nixie-Tech-LLC/perks/internal/availability"
	"github.com/Nixie-Tech-LLC/perks/internal/config"
	"github.com/Nixie-Tech-LLC/perks/internal/db/dbtest"
	"github.com/Nixie-Tech-LLC/perks/internal/service"
	"github.com/Nixie-Tech-LLC/perks/internal/watch"
)

func TestRegisterRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mem := dbtest.NewMemory()
	w := watch.New(nil, nil)
	defer w.Close()
	svc := service.NewDiscounts(service.Config{Store: mem, Policy: availability.DefaultPolicy})

	r := gin.New()
	RegisterRoutes(r, &config.Config{JWTSecret: "secret"}, mem, svc, w)

	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/admin/stores", http.StatusUnauthorized},
		{http.MethodGet, "/api/admin/auth/current_profile", http.StatusUnauthorized},
		{http.MethodPost, "/api/discounts/00000000-0000-0000-0000-000000000001/redeem", http.StatusUnauthorized},
		{http.MethodGet, "/api/discounts/00000000-0000-0000-0000-000000000001", http.StatusNotFound},
		{http.MethodPost, "/api/admin/auth/login", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
