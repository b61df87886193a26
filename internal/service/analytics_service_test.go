package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apprehension-service/internal/model"
	"apprehension-service/internal/query"
)

type fakeAnalyticsRepo struct {
	trendPoints []model.TrendPoint
	labelRows   []model.LabelCount
	total       int64
	hourRows    []model.BucketCount
	dayRows     []model.BucketCount
	current     int64
	previous    int64
	breakdown   model.StatsBreakdown

	gotMatch       query.Match
	gotGranularity model.Granularity
	gotField       string
	gotLimit       int
	gotCurrent     model.DateRange
	gotPrevious    *model.DateRange
	gotTopLimit    int
}

func (f *fakeAnalyticsRepo) Trends(_ context.Context, match query.Match, granularity model.Granularity) ([]model.TrendPoint, error) {
	f.gotMatch = match
	f.gotGranularity = granularity
	return f.trendPoints, nil
}

func (f *fakeAnalyticsRepo) Distribution(_ context.Context, match query.Match, field string, limit int) ([]model.LabelCount, int64, error) {
	f.gotMatch = match
	f.gotField = field
	f.gotLimit = limit
	return f.labelRows, f.total, nil
}

func (f *fakeAnalyticsRepo) TimePatterns(_ context.Context, match query.Match) ([]model.BucketCount, []model.BucketCount, error) {
	f.gotMatch = match
	return f.hourRows, f.dayRows, nil
}

func (f *fakeAnalyticsRepo) Summary(_ context.Context, base query.Match, current model.DateRange, previous *model.DateRange) (int64, int64, error) {
	f.gotMatch = base
	f.gotCurrent = current
	f.gotPrevious = previous
	return f.current, f.previous, nil
}

func (f *fakeAnalyticsRepo) Stats(_ context.Context, match query.Match, topLimit int) (model.StatsBreakdown, error) {
	f.gotMatch = match
	f.gotTopLimit = topLimit
	return f.breakdown, nil
}

func newAnalyticsService(repo *fakeAnalyticsRepo, now time.Time) *AnalyticsService {
	svc := NewAnalyticsService(repo)
	svc.now = func() time.Time { return now }
	return svc
}

func strPtr(s string) *string { return &s }

func TestGetTrendsDefaultsToDay(t *testing.T) {
	repo := &fakeAnalyticsRepo{trendPoints: []model.TrendPoint{{Date: "2025-01-05", Count: 3}}}
	svc := newAnalyticsService(repo, time.Now())

	resp, err := svc.GetTrends(context.Background(), model.TrendsFilter{})

	require.NoError(t, err)
	assert.Equal(t, model.GranularityDay, repo.gotGranularity)
	assert.Equal(t, model.GranularityDay, resp.Granularity)
	assert.Equal(t, repo.trendPoints, resp.Series)
}

func TestGetTrendsRejectsUnknownGranularity(t *testing.T) {
	svc := newAnalyticsService(&fakeAnalyticsRepo{}, time.Now())

	_, err := svc.GetTrends(context.Background(), model.TrendsFilter{Granularity: "hourly"})

	require.Error(t, err)
	assert.True(t, IsInvalidParameter(err))
	assert.Contains(t, err.Error(), "day, week, month")
}

func TestGetTrendsEmptySeriesIsNotNil(t *testing.T) {
	svc := newAnalyticsService(&fakeAnalyticsRepo{}, time.Now())

	resp, err := svc.GetTrends(context.Background(), model.TrendsFilter{Granularity: model.GranularityWeek})

	require.NoError(t, err)
	assert.NotNil(t, resp.Series)
	assert.Empty(t, resp.Series)
}

func TestGetDistributionsDefaults(t *testing.T) {
	repo := &fakeAnalyticsRepo{total: 42}
	svc := newAnalyticsService(repo, time.Now())

	resp, err := svc.GetDistributions(context.Background(), model.DistributionsFilter{})

	require.NoError(t, err)
	assert.Equal(t, query.FieldAgency, repo.gotField)
	assert.Equal(t, 10, repo.gotLimit)
	assert.Equal(t, model.GroupByAgency, resp.GroupBy)
	assert.Equal(t, int64(42), resp.Total)
}

func TestGetDistributionsLocationMapsToPlaceField(t *testing.T) {
	repo := &fakeAnalyticsRepo{}
	svc := newAnalyticsService(repo, time.Now())

	_, err := svc.GetDistributions(context.Background(), model.DistributionsFilter{GroupBy: model.GroupByLocation})

	require.NoError(t, err)
	assert.Equal(t, query.FieldPlace, repo.gotField)
}

func TestGetDistributionsRejectsUnknownGroupBy(t *testing.T) {
	svc := newAnalyticsService(&fakeAnalyticsRepo{}, time.Now())

	_, err := svc.GetDistributions(context.Background(), model.DistributionsFilter{GroupBy: "color"})

	require.Error(t, err)
	assert.True(t, IsInvalidParameter(err))
}

func TestGetDistributionsClampsLimit(t *testing.T) {
	repo := &fakeAnalyticsRepo{}
	svc := newAnalyticsService(repo, time.Now())

	_, err := svc.GetDistributions(context.Background(), model.DistributionsFilter{Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 50, repo.gotLimit)

	_, err = svc.GetDistributions(context.Background(), model.DistributionsFilter{Limit: -3})
	require.NoError(t, err)
	assert.Equal(t, 10, repo.gotLimit)
}

func TestGetDistributionsLabelsMissingGroupsUnknown(t *testing.T) {
	repo := &fakeAnalyticsRepo{
		labelRows: []model.LabelCount{
			{Label: strPtr("HPG"), Count: 9},
			{Label: nil, Count: 4},
			{Label: strPtr(""), Count: 2},
		},
		total: 15,
	}
	svc := newAnalyticsService(repo, time.Now())

	resp, err := svc.GetDistributions(context.Background(), model.DistributionsFilter{})

	require.NoError(t, err)
	require.Len(t, resp.Items, 3)
	assert.Equal(t, "HPG", resp.Items[0].Label)
	assert.Equal(t, "Unknown", resp.Items[1].Label)
	assert.Equal(t, "Unknown", resp.Items[2].Label)
}

func TestGetTimePatternsZeroFillsAllBuckets(t *testing.T) {
	repo := &fakeAnalyticsRepo{
		hourRows: []model.BucketCount{{Bucket: 8, Count: 5}, {Bucket: 17, Count: 2}},
		dayRows:  []model.BucketCount{{Bucket: 1, Count: 7}, {Bucket: 6, Count: 3}},
	}
	svc := newAnalyticsService(repo, time.Now())

	resp, err := svc.GetTimePatterns(context.Background(), model.AnalyticsFilter{})

	require.NoError(t, err)
	require.Len(t, resp.ByHour, 24)
	require.Len(t, resp.ByDayOfWeek, 7)

	assert.Equal(t, int64(5), resp.ByHour[8].Count)
	assert.Equal(t, int64(2), resp.ByHour[17].Count)
	assert.Equal(t, int64(0), resp.ByHour[0].Count)
	assert.Equal(t, 23, resp.ByHour[23].Hour)

	// Store day 1 is Sunday, store day 6 is Friday.
	assert.Equal(t, int64(7), resp.ByDayOfWeek[0].Count)
	assert.Equal(t, "Sunday", resp.ByDayOfWeek[0].Label)
	assert.Equal(t, int64(3), resp.ByDayOfWeek[5].Count)
	assert.Equal(t, "Friday", resp.ByDayOfWeek[5].Label)
	assert.Equal(t, "Saturday", resp.ByDayOfWeek[6].Label)
	assert.Equal(t, int64(0), resp.ByDayOfWeek[6].Count)
}

func TestGetTimePatternsRequiresApprehensionDate(t *testing.T) {
	repo := &fakeAnalyticsRepo{}
	svc := newAnalyticsService(repo, time.Now())

	_, err := svc.GetTimePatterns(context.Background(), model.AnalyticsFilter{})

	require.NoError(t, err)
	assert.Contains(t, repo.gotMatch, query.NotNull{Field: query.FieldDateOfApprehension})
}

func TestGetSummaryDefaultPeriodIsCurrentMonth(t *testing.T) {
	now := time.Date(2025, 7, 18, 10, 30, 0, 0, time.UTC)
	repo := &fakeAnalyticsRepo{current: 12}
	svc := newAnalyticsService(repo, now)

	resp, err := svc.GetSummary(context.Background(), model.SummaryFilter{})

	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), repo.gotCurrent.From)
	assert.Equal(t, now, repo.gotCurrent.To)
	assert.Nil(t, repo.gotPrevious)

	assert.Equal(t, int64(12), resp.Current.Total)
	assert.Equal(t, "2025-07-01", resp.Current.Period.From)
	assert.Equal(t, "2025-07-18", resp.Current.Period.To)
	assert.Nil(t, resp.Previous)
	assert.Nil(t, resp.Growth)
}

func TestGetSummaryComparePrevious(t *testing.T) {
	from := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 7, 31, 23, 59, 59, 999000000, time.UTC)
	repo := &fakeAnalyticsRepo{current: 150, previous: 120}
	svc := newAnalyticsService(repo, time.Now())

	resp, err := svc.GetSummary(context.Background(), model.SummaryFilter{
		AnalyticsFilter: model.AnalyticsFilter{DateFrom: &from, DateTo: &to},
		ComparePrevious: true,
	})

	require.NoError(t, err)
	require.NotNil(t, repo.gotPrevious)

	wantPrevTo := from.Add(-time.Millisecond)
	assert.Equal(t, wantPrevTo, repo.gotPrevious.To)
	assert.Equal(t, wantPrevTo.Add(-to.Sub(from)), repo.gotPrevious.From)

	require.NotNil(t, resp.Previous)
	require.NotNil(t, resp.Growth)
	assert.Equal(t, int64(120), resp.Previous.Total)
	assert.Equal(t, int64(30), resp.Growth.Absolute)
	assert.Equal(t, 25.0, resp.Growth.Percentage)
}

func TestGetSummaryGrowthAgainstEmptyPrevious(t *testing.T) {
	repo := &fakeAnalyticsRepo{current: 9, previous: 0}
	svc := newAnalyticsService(repo, time.Now())

	resp, err := svc.GetSummary(context.Background(), model.SummaryFilter{ComparePrevious: true})

	require.NoError(t, err)
	require.NotNil(t, resp.Growth)
	assert.Equal(t, int64(9), resp.Growth.Absolute)
	assert.Equal(t, 0.0, resp.Growth.Percentage)
}

func TestGetSummaryGrowthPercentageRounding(t *testing.T) {
	repo := &fakeAnalyticsRepo{current: 100, previous: 30}
	svc := newAnalyticsService(repo, time.Now())

	resp, err := svc.GetSummary(context.Background(), model.SummaryFilter{ComparePrevious: true})

	require.NoError(t, err)
	assert.Equal(t, 233.33, resp.Growth.Percentage)
}

func TestGetStatsMonthExpansion(t *testing.T) {
	repo := &fakeAnalyticsRepo{}
	svc := newAnalyticsService(repo, time.Now())

	_, err := svc.GetStats(context.Background(), model.StatsFilter{Month: "2025-02"})

	require.NoError(t, err)
	require.NotEmpty(t, repo.gotMatch)

	rangeCond := repo.gotMatch[0].(query.DateRange)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), *rangeCond.From)
	assert.Equal(t, time.Date(2025, 2, 28, 23, 59, 59, 999000000, time.UTC), *rangeCond.To)
}

func TestGetStatsMonthTakesPrecedenceOverRange(t *testing.T) {
	explicit := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := &fakeAnalyticsRepo{}
	svc := newAnalyticsService(repo, time.Now())

	_, err := svc.GetStats(context.Background(), model.StatsFilter{
		Month:    "2025-06",
		DateFrom: &explicit,
	})

	require.NoError(t, err)
	rangeCond := repo.gotMatch[0].(query.DateRange)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), *rangeCond.From)
}

func TestGetStatsRejectsMalformedMonth(t *testing.T) {
	svc := newAnalyticsService(&fakeAnalyticsRepo{}, time.Now())

	for _, month := range []string{"2025-13", "1850-06", "June 2025", "2025-6"} {
		_, err := svc.GetStats(context.Background(), model.StatsFilter{Month: month})
		require.Error(t, err, month)
		assert.True(t, IsInvalidParameter(err), month)
		assert.Contains(t, err.Error(), "YYYY-MM")
	}
}

func TestGetStatsTopLimitClamps(t *testing.T) {
	repo := &fakeAnalyticsRepo{}
	svc := newAnalyticsService(repo, time.Now())

	_, err := svc.GetStats(context.Background(), model.StatsFilter{})
	require.NoError(t, err)
	assert.Equal(t, 5, repo.gotTopLimit)

	_, err = svc.GetStats(context.Background(), model.StatsFilter{TopLimit: 50})
	require.NoError(t, err)
	assert.Equal(t, 10, repo.gotTopLimit)
}

func TestGetStatsLabelsUnknownGroups(t *testing.T) {
	repo := &fakeAnalyticsRepo{breakdown: model.StatsBreakdown{
		Total:    20,
		ByAgency: []model.LabelCount{{Label: nil, Count: 20}},
	}}
	svc := newAnalyticsService(repo, time.Now())

	resp, err := svc.GetStats(context.Background(), model.StatsFilter{})

	require.NoError(t, err)
	assert.Equal(t, int64(20), resp.Total)
	require.Len(t, resp.TopAgencies, 1)
	assert.Equal(t, "Unknown", resp.TopAgencies[0].Label)
	assert.NotNil(t, resp.TopViolations)
	assert.Empty(t, resp.TopViolations)
}
