package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/perks/internal/availability"
	"github.com/Nixie-Tech-LLC/perks/internal/model"
)

func newTestCache(t *testing.T, ttl time.Duration) (*DiscountCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := NewClient(mr.Addr(), "", "")
	t.Cleanup(func() { _ = rdb.Close() })
	return NewDiscountCache(rdb, ttl), mr
}

func sampleDiscount(t *testing.T) *model.Discount {
	t.Helper()
	days, err := availability.Normalize(availability.RawAvailableDaysAndTimes{
		AvailableDays: []availability.RawAvailableDay{
			{DayIndex: 0, TimeRanges: []availability.RawTimeRange{{Start: "09:00", End: "17:00"}}},
		},
	})
	require.NoError(t, err)

	d := &model.Discount{
		ID:         uuid.New(),
		StoreID:    4,
		Title:      "Happy hour",
		PercentOff: decimal.RequireFromString("15.5"),
		Active:     true,
		Timezone:   "Europe/Berlin",
	}
	require.NoError(t, d.SetAvailability(&days))
	return d
}

func TestDiscountCache_Miss(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)

	got, err := c.Get(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestDiscountCache_SetGetRederivesAvailability(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()
	d := sampleDiscount(t)

	require.NoError(t, c.Set(ctx, d))
	got, err := c.Get(ctx, d.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, d.Title, got.Title)
	assert.True(t, d.PercentOff.Equal(got.PercentOff))
	assert.Equal(t, "Europe/Berlin", got.Timezone)
	require.NotNil(t, got.Availability)
	assert.Equal(t, *d.Availability, *got.Availability)
	assert.NoError(t, got.ConfigError)
}

func TestDiscountCache_TTL(t *testing.T) {
	c, mr := newTestCache(t, 30*time.Second)
	ctx := context.Background()
	d := sampleDiscount(t)

	require.NoError(t, c.Set(ctx, d))
	mr.FastForward(31 * time.Second)

	got, err := c.Get(ctx, d.ID)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestDiscountCache_Invalidate(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()
	d := sampleDiscount(t)

	require.NoError(t, c.Set(ctx, d))
	require.NoError(t, c.Invalidate(ctx, d.ID))
	assert.False(t, mr.Exists("discount:"+d.ID.String()))

	// invalidating a missing key is fine
	assert.NoError(t, c.Invalidate(ctx, uuid.New()))
}

func TestDiscountCache_CorruptEntryIsDropped(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	id := uuid.New()
	require.NoError(t, mr.Set("discount:"+id.String(), "{not json"))

	got, err := c.Get(context.Background(), id)
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, mr.Exists("discount:"+id.String()))
}

func TestDiscountCache_Unreachable(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	mr.Close()

	_, err := c.Get(context.Background(), uuid.New())
	assert.Error(t, err)
}
