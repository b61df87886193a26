package service

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"apprehension-service/internal/model"
	"apprehension-service/internal/query"
)

const (
	defaultDistributionLimit = 10
	maxDistributionLimit     = 50
	defaultTopLimit          = 5
	maxTopLimit              = 10
)

const unknownLabel = "Unknown"

var dayLabels = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

var monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// AnalyticsRepository is the aggregation surface the engine needs from the
// record store.
type AnalyticsRepository interface {
	Trends(ctx context.Context, match query.Match, granularity model.Granularity) ([]model.TrendPoint, error)
	Distribution(ctx context.Context, match query.Match, field string, limit int) ([]model.LabelCount, int64, error)
	TimePatterns(ctx context.Context, match query.Match) (byHour, byDayOfWeek []model.BucketCount, err error)
	Summary(ctx context.Context, base query.Match, current model.DateRange, previous *model.DateRange) (currentCount, previousCount int64, err error)
	Stats(ctx context.Context, match query.Match, topLimit int) (model.StatsBreakdown, error)
}

type AnalyticsService struct {
	analytics AnalyticsRepository
	now       func() time.Time
}

func NewAnalyticsService(analytics AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{analytics: analytics, now: time.Now}
}

// GetTrends produces one count per non-empty date bucket, ascending by
// bucket key. Granularity defaults to day.
func (s *AnalyticsService) GetTrends(ctx context.Context, filter model.TrendsFilter) (*model.TrendsResponse, error) {
	granularity := filter.Granularity
	if granularity == "" {
		granularity = model.GranularityDay
	}
	switch granularity {
	case model.GranularityDay, model.GranularityWeek, model.GranularityMonth:
	default:
		return nil, invalidParameterf("invalid granularity %q, must be one of: day, week, month", string(filter.Granularity))
	}

	series, err := s.analytics.Trends(ctx, query.ForAnalytics(filter.AnalyticsFilter), granularity)
	if err != nil {
		return nil, err
	}
	if series == nil {
		series = []model.TrendPoint{}
	}

	return &model.TrendsResponse{Granularity: granularity, Series: series}, nil
}

// GetDistributions returns the top groups for one dimension plus the total
// count of matching records; missing group values are reported as "Unknown".
func (s *AnalyticsService) GetDistributions(ctx context.Context, filter model.DistributionsFilter) (*model.DistributionsResponse, error) {
	groupBy := filter.GroupBy
	if groupBy == "" {
		groupBy = model.GroupByAgency
	}
	field, err := groupByField(groupBy)
	if err != nil {
		return nil, err
	}

	limit := filter.Limit
	if limit < 1 {
		limit = defaultDistributionLimit
	}
	if limit > maxDistributionLimit {
		limit = maxDistributionLimit
	}

	rows, total, err := s.analytics.Distribution(ctx, query.ForAnalytics(filter.AnalyticsFilter), field, limit)
	if err != nil {
		return nil, err
	}

	return &model.DistributionsResponse{
		GroupBy: groupBy,
		Items:   labelItems(rows),
		Total:   total,
	}, nil
}

// GetTimePatterns produces the two fixed-size series: 24 hour buckets and 7
// day-of-week buckets, zero-filled. Records without a dateOfApprehension are
// excluded entirely; malformed time strings only miss the hour series.
func (s *AnalyticsService) GetTimePatterns(ctx context.Context, filter model.AnalyticsFilter) (*model.TimePatternsResponse, error) {
	match := query.ForAnalytics(filter)
	match = append(match, query.NotNull{Field: query.FieldDateOfApprehension})

	hourRows, dayRows, err := s.analytics.TimePatterns(ctx, match)
	if err != nil {
		return nil, err
	}

	hourCounts := make(map[int32]int64, len(hourRows))
	for _, row := range hourRows {
		hourCounts[row.Bucket] = row.Count
	}
	byHour := make([]model.HourCount, 24)
	for hour := 0; hour < 24; hour++ {
		byHour[hour] = model.HourCount{Hour: hour, Count: hourCounts[int32(hour)]}
	}

	// Store numbering is 1=Sunday..7=Saturday; output is 0=Sunday..6=Saturday.
	dayCounts := make(map[int32]int64, len(dayRows))
	for _, row := range dayRows {
		dayCounts[row.Bucket] = row.Count
	}
	byDayOfWeek := make([]model.DayOfWeekCount, 7)
	for day := 0; day < 7; day++ {
		byDayOfWeek[day] = model.DayOfWeekCount{
			Day:   day,
			Label: dayLabels[day],
			Count: dayCounts[int32(day)+1],
		}
	}

	return &model.TimePatternsResponse{ByHour: byHour, ByDayOfWeek: byDayOfWeek}, nil
}

// GetSummary counts the current period and, when requested, the period of
// identical duration immediately before it, from one store round trip.
func (s *AnalyticsService) GetSummary(ctx context.Context, filter model.SummaryFilter) (*model.SummaryResponse, error) {
	now := s.now()

	currentFrom := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if filter.DateFrom != nil {
		currentFrom = *filter.DateFrom
	}
	currentTo := now
	if filter.DateTo != nil {
		currentTo = *filter.DateTo
	}
	current := model.DateRange{From: currentFrom, To: currentTo}

	var previous *model.DateRange
	if filter.ComparePrevious {
		duration := currentTo.Sub(currentFrom)
		previousTo := currentFrom.Add(-time.Millisecond)
		previous = &model.DateRange{From: previousTo.Add(-duration), To: previousTo}
	}

	base := query.ForAnalytics(model.AnalyticsFilter{
		Agency:              filter.Agency,
		Violation:           filter.Violation,
		PlaceOfApprehension: filter.PlaceOfApprehension,
	})

	currentCount, previousCount, err := s.analytics.Summary(ctx, base, current, previous)
	if err != nil {
		return nil, err
	}

	response := &model.SummaryResponse{
		Current: model.PeriodStats{
			Total:  currentCount,
			Period: model.Period{From: dateString(current.From), To: dateString(current.To)},
		},
	}

	if previous != nil {
		response.Previous = &model.PeriodStats{
			Total:  previousCount,
			Period: model.Period{From: dateString(previous.From), To: dateString(previous.To)},
		}

		absolute := currentCount - previousCount
		percentage := 0.0
		if previousCount > 0 {
			percentage = round2(float64(absolute) / float64(previousCount) * 100)
		}
		response.Growth = &model.GrowthStats{Absolute: absolute, Percentage: percentage}
	}

	return response, nil
}

// GetStats runs the month-or-range scoped faceted aggregation: total plus
// top lists by agency, violation, and place of apprehension.
func (s *AnalyticsService) GetStats(ctx context.Context, filter model.StatsFilter) (*model.StatsResponse, error) {
	dateFrom, dateTo := filter.DateFrom, filter.DateTo
	if filter.Month != "" {
		from, to, err := expandMonth(filter.Month)
		if err != nil {
			return nil, err
		}
		dateFrom, dateTo = &from, &to
	}

	topLimit := filter.TopLimit
	if topLimit < 1 {
		topLimit = defaultTopLimit
	}
	if topLimit > maxTopLimit {
		topLimit = maxTopLimit
	}

	match := query.ForAnalytics(model.AnalyticsFilter{
		DateFrom:            dateFrom,
		DateTo:              dateTo,
		Agency:              filter.Agency,
		Violation:           filter.Violation,
		PlaceOfApprehension: filter.PlaceOfApprehension,
	})

	breakdown, err := s.analytics.Stats(ctx, match, topLimit)
	if err != nil {
		return nil, err
	}

	return &model.StatsResponse{
		Total:         breakdown.Total,
		TopAgencies:   labelItems(breakdown.ByAgency),
		TopViolations: labelItems(breakdown.ByViolation),
		TopLocations:  labelItems(breakdown.ByLocation),
	}, nil
}

func groupByField(groupBy model.GroupBy) (string, error) {
	switch groupBy {
	case model.GroupByAgency:
		return query.FieldAgency, nil
	case model.GroupByViolation:
		return query.FieldViolation, nil
	case model.GroupByLocation:
		return query.FieldPlace, nil
	case model.GroupByMvType:
		return query.FieldMvType, nil
	case model.GroupByGender:
		return query.FieldGender, nil
	default:
		return "", invalidParameterf("invalid groupBy %q, must be one of: agency, violation, location, mvType, gender", string(groupBy))
	}
}

// expandMonth turns a YYYY-MM shorthand into the full-month inclusive range
// [first 00:00:00.000, last 23:59:59.999].
func expandMonth(month string) (time.Time, time.Time, error) {
	if !monthPattern.MatchString(month) {
		return time.Time{}, time.Time{}, invalidParameterf("invalid month format %q, use YYYY-MM (e.g. 2025-12)", month)
	}

	parts := strings.SplitN(month, "-", 2)
	year, _ := strconv.Atoi(parts[0])
	monthNum, _ := strconv.Atoi(parts[1])
	if year < 1900 || year > 2100 || monthNum < 1 || monthNum > 12 {
		return time.Time{}, time.Time{}, invalidParameterf("invalid month format %q, use YYYY-MM (e.g. 2025-12)", month)
	}

	from := time.Date(year, time.Month(monthNum), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0).Add(-time.Millisecond)
	return from, to, nil
}

func labelItems(rows []model.LabelCount) []model.DistributionItem {
	items := make([]model.DistributionItem, 0, len(rows))
	for _, row := range rows {
		label := unknownLabel
		if row.Label != nil && *row.Label != "" {
			label = *row.Label
		}
		items = append(items, model.DistributionItem{Label: label, Count: row.Count})
	}
	return items
}

func dateString(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
