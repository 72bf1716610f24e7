package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOfWeek(t *testing.T) {
	tests := map[string]string{
		"2024-05-27": "2024-05-27", // Monday
		"2024-06-01": "2024-05-27", // Saturday
		"2024-06-02": "2024-05-27", // Sunday
		"2024-06-03": "2024-06-03",
	}
	for in, want := range tests {
		assert.Equal(t, want, StartOfWeek(*date(t, in)).String(), in)
	}
}

func TestAnalyticsSummary(t *testing.T) {
	f := newMealFixture(t)
	f.breakfast(t)
	svc := NewAnalyticsService(f.svc.meals, f.users)
	ctx := context.Background()

	t.Run("logged days only", func(t *testing.T) {
		out, err := svc.Summary(ctx, f.owner, *date(t, "2024-06-01"), *date(t, "2024-06-02"), false)
		require.NoError(t, err)
		assert.Equal(t, 1, out.DaysCounted)
		cal := out.Macros["calories"]
		assert.InDelta(t, 567, cal.AvgConsumed, 0.001)
		assert.Equal(t, 2000.0, cal.AvgGoal)
		assert.InDelta(t, 28.35, cal.AvgPercent, 0.01)
		assert.Equal(t, "kcal", cal.Unit)
	})

	t.Run("missing days included", func(t *testing.T) {
		out, err := svc.Summary(ctx, f.owner, *date(t, "2024-06-01"), *date(t, "2024-06-02"), true)
		require.NoError(t, err)
		assert.Equal(t, 2, out.DaysCounted)
		assert.InDelta(t, 283.5, out.Macros["calories"].AvgConsumed, 0.001)
	})

	t.Run("other user sees nothing", func(t *testing.T) {
		out, err := svc.Summary(ctx, f.other, *date(t, "2024-06-01"), *date(t, "2024-06-02"), false)
		require.NoError(t, err)
		assert.Zero(t, out.DaysCounted)
		assert.Zero(t, out.Macros["calories"].AvgConsumed)
	})

	t.Run("inverted range", func(t *testing.T) {
		_, err := svc.Summary(ctx, f.owner, *date(t, "2024-06-02"), *date(t, "2024-06-01"), false)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("range too long", func(t *testing.T) {
		_, err := svc.Summary(ctx, f.owner, *date(t, "2022-01-01"), *date(t, "2024-01-01"), false)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestAnalyticsWeeklyOverview(t *testing.T) {
	f := newMealFixture(t)
	f.breakfast(t)
	svc := NewAnalyticsService(f.svc.meals, f.users)
	ctx := context.Background()

	out, err := svc.WeeklyOverview(ctx, f.owner, *date(t, "2024-06-01"), WeeklyModeDetailed)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-27", out.WeekStart.String())

	days, ok := out.Days.([]DayDetailed)
	require.True(t, ok)
	require.Len(t, days, 7)
	sat := days[5]
	assert.Equal(t, "2024-06-01", sat.Date.String())
	assert.Equal(t, 1, sat.MealCount)
	assert.Equal(t, 567.0, sat.Totals.Calories)
	assert.Equal(t, 2000.0, sat.CalorieTarget)
	assert.Equal(t, 28.35, sat.CaloriePercent)
	assert.Zero(t, days[0].MealCount)

	out, err = svc.WeeklyOverview(ctx, f.owner, *date(t, "2024-06-01"), WeeklyModeChart)
	require.NoError(t, err)
	chart, ok := out.Days.([]DayChart)
	require.True(t, ok)
	require.Len(t, chart, 7)
	assert.Equal(t, 28.35, chart[5].CaloriePercent)

	_, err = svc.WeeklyOverview(ctx, f.owner, *date(t, "2024-06-01"), "pie")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
