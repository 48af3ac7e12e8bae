package endpoints

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/perks/internal/availability"
	"github.com/Nixie-Tech-LLC/perks/internal/clock"
	"github.com/Nixie-Tech-LLC/perks/internal/db/dbtest"
	"github.com/Nixie-Tech-LLC/perks/internal/http/api"
	"github.com/Nixie-Tech-LLC/perks/internal/http/api/customer/packets"
	"github.com/Nixie-Tech-LLC/perks/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/perks/internal/model"
	"github.com/Nixie-Tech-LLC/perks/internal/service"
	"github.com/Nixie-Tech-LLC/perks/internal/watch"
)

const secret = "test-secret"

// Tuesday; the seeded rule opens Mondays 09:00-17:00 UTC.
var (
	now      = time.Date(2024, time.January, 2, 10, 0, 0, 0, time.UTC)
	nextOpen = time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC)
)

func init() {
	gin.SetMode(gin.TestMode)
}

type ticks struct {
	mu    sync.Mutex
	chans []chan time.Time
}

func (tk *ticks) ticker() (<-chan time.Time, func()) {
	tk.mu.Lock()
	defer tk.mu.Unlock()
	ch := make(chan time.Time)
	tk.chans = append(tk.chans, ch)
	return ch, func() {}
}

func (tk *ticks) latest(t *testing.T) chan time.Time {
	var ch chan time.Time
	require.Eventually(t, func() bool {
		tk.mu.Lock()
		defer tk.mu.Unlock()
		if len(tk.chans) == 0 {
			return false
		}
		ch = tk.chans[len(tk.chans)-1]
		return true
	}, time.Second, 5*time.Millisecond)
	return ch
}

type harness struct {
	router *gin.Engine
	mem    *dbtest.Memory
	ticks  *ticks
	user   int
	store  model.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{mem: dbtest.NewMemory(), ticks: &ticks{}}
	ctx := context.Background()

	var err error
	h.user, err = h.mem.CreateUser(ctx, "customer@example.com", "x", nil)
	require.NoError(t, err)
	h.store, err = h.mem.CreateStore(ctx, h.user, "Cafe", "UTC")
	require.NoError(t, err)

	w := watch.New(nil, nil, watch.WithTicker(h.ticks.ticker))
	t.Cleanup(w.Close)
	svc := service.NewDiscounts(service.Config{
		Store:     h.mem,
		Scheduler: w,
		Clock:     clock.NewFixed(now),
		Policy:    availability.DefaultPolicy,
	})

	h.router = gin.New()
	api.MountGroup(h.router, api.GroupConfig{Prefix: "/api"}, DiscountPublicModule(svc, w))
	api.MountGroup(h.router, api.GroupConfig{Prefix: "/api", Auth: true, SecretKey: secret, Users: h.mem},
		DiscountRedeemModule(svc))
	return h
}

func (h *harness) seed(t *testing.T, rule string) uuid.UUID {
	t.Helper()
	d := model.Discount{
		ID:         uuid.New(),
		StoreID:    h.store.ID,
		Title:      "Lunch deal",
		PercentOff: decimal.NewFromInt(25),
		Active:     true,
	}
	if rule == "" {
		require.NoError(t, d.SetAvailability(nil))
	} else {
		d.AvailabilityJSON = []byte(rule)
	}
	h.mem.PutDiscount(d)
	return d.ID
}

const mondays = `{"availableDays":[{"dayIndex":0,"timeRanges":[{"start":"09:00","end":"17:00"}]}]}`

func (h *harness) do(t *testing.T, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func TestGetStatus_OutsideWindow(t *testing.T) {
	h := newHarness(t)
	id := h.seed(t, mondays)

	w := h.do(t, http.MethodGet, "/api/discounts/"+id.String(), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp packets.DiscountStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Lunch deal", resp.Title)
	assert.False(t, resp.Evaluation.IsValid)
	assert.Equal(t, "outside_window", resp.Evaluation.Reason)
	assert.Equal(t, "5d 23h 0m", resp.Evaluation.Countdown)
	require.NotNil(t, resp.Evaluation.NextAvailableAt)
	assert.True(t, nextOpen.Equal(*resp.Evaluation.NextAvailableAt))
	assert.False(t, resp.Evaluation.NoETA)
}

func TestGetStatus_Misconfigured(t *testing.T) {
	h := newHarness(t)
	id := h.seed(t, `{"availableDays":[{"dayIndex":9,"timeRanges":[]}]}`)

	w := h.do(t, http.MethodGet, "/api/discounts/"+id.String(), "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp packets.DiscountStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Evaluation.IsValid)
	assert.Equal(t, "misconfigured", resp.Evaluation.Reason)
	assert.Equal(t, "discount temporarily unavailable", resp.Evaluation.Message)
	assert.NotContains(t, w.Body.String(), "dayIndex", "rule details stay private")
}

func TestGetStatus_Errors(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodGet, "/api/discounts/not-a-uuid", "").Code)
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodGet, "/api/discounts/"+uuid.NewString(), "").Code)
}

func TestRedeem(t *testing.T) {
	h := newHarness(t)
	token, err := middleware.GenerateJWT(h.user, secret)
	require.NoError(t, err)

	restricted := h.seed(t, mondays)
	open := h.seed(t, "")

	assert.Equal(t, http.StatusUnauthorized, h.do(t, http.MethodPost, "/api/discounts/"+open.String()+"/redeem", "").Code)

	w := h.do(t, http.MethodPost, "/api/discounts/"+restricted.String()+"/redeem", token)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "not available right now")

	w = h.do(t, http.MethodPost, "/api/discounts/"+open.String()+"/redeem", token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp packets.RedemptionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, open, resp.DiscountID)
	assert.Len(t, h.mem.Redemptions, 1)
}

func dial(t *testing.T, srv *httptest.Server, id uuid.UUID) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/discounts/" + id.String() + "/countdown"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	return conn
}

func TestCountdownStream_UntilArrival(t *testing.T) {
	h := newHarness(t)
	id := h.seed(t, mondays)
	srv := httptest.NewServer(h.router)
	defer srv.Close()

	conn := dial(t, srv, id)

	var f watch.Frame
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, watch.Frame{Countdown: "5d 23h 0m"}, f)

	tick := h.ticks.latest(t)
	tick <- nextOpen.Add(-time.Minute)
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, watch.Frame{Countdown: "1m 0s"}, f)

	tick <- nextOpen
	require.NoError(t, conn.ReadJSON(&f))
	assert.True(t, f.Arrived)

	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestCountdownStream_NothingToCountDown(t *testing.T) {
	h := newHarness(t)
	id := h.seed(t, "")
	srv := httptest.NewServer(h.router)
	defer srv.Close()

	conn := dial(t, srv, id)

	var f watch.Frame
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, watch.Frame{Arrived: true}, f)
}

func TestCountdownStream_NoETA(t *testing.T) {
	h := newHarness(t)
	id := h.seed(t, `{"availableDays":[{"dayIndex":9,"timeRanges":[]}]}`)
	srv := httptest.NewServer(h.router)
	defer srv.Close()

	conn := dial(t, srv, id)

	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"countdown":"","arrived":false,"no_eta":true,"reason":"misconfigured"}`, string(raw))

	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestCountdownStream_NotFound(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodGet, "/api/discounts/"+uuid.NewString()+"/countdown", "").Code)
}
