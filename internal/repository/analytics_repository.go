package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"apprehension-service/internal/db"
	"apprehension-service/internal/model"
	"apprehension-service/internal/query"
)

// hourPrefix admits "H:" / "HH:"-prefixed time strings; anything else is
// excluded from the hour facet but still counted everywhere else.
const hourPrefix = `^\d{1,2}:`

type AnalyticsRepository struct {
	coll *mongo.Collection
}

func NewAnalyticsRepository(database *mongo.Database) *AnalyticsRepository {
	return &AnalyticsRepository{coll: database.Collection(db.CollectionApprehensions)}
}

// Trends counts records per date bucket, ascending by bucket key. Buckets
// with no matching records do not appear.
func (r *AnalyticsRepository) Trends(ctx context.Context, match query.Match, granularity model.Granularity) ([]model.TrendPoint, error) {
	pipeline := compileStages([]query.Stage{
		query.MatchStage{Match: match},
		query.GroupCount{Key: query.ByDateBucket{Field: query.FieldDateOfApprehension, Granularity: granularity}},
		query.Sort{By: query.SortByKey},
	})

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("trends aggregation: %w", err)
	}

	var series []model.TrendPoint
	if err := cursor.All(ctx, &series); err != nil {
		return nil, fmt.Errorf("trends decode: %w", err)
	}
	return series, nil
}

// Distribution returns the top groups by count for one field plus the total
// matching-record count, both from a single faceted pass so they reflect the
// same snapshot. Tie order between equal counts is whatever the store yields.
func (r *AnalyticsRepository) Distribution(ctx context.Context, match query.Match, field string, limit int) ([]model.LabelCount, int64, error) {
	pipeline := compileStages([]query.Stage{
		query.MatchStage{Match: match},
		query.Facet{Branches: map[string][]query.Stage{
			"items": {
				query.GroupCount{Key: query.ByField{Field: field}},
				query.Sort{By: query.SortByCount, Desc: true},
				query.Limit{N: limit},
			},
			"total": {
				query.Count{},
			},
		}},
	})

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, fmt.Errorf("distribution aggregation: %w", err)
	}

	var results []struct {
		Items []model.LabelCount `bson:"items"`
		Total []countRow         `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, 0, fmt.Errorf("distribution decode: %w", err)
	}
	if len(results) == 0 {
		return nil, 0, nil
	}

	return results[0].Items, firstCount(results[0].Total), nil
}

// TimePatterns runs the hour and day-of-week branches over the same filtered
// record set in one pass. The caller must already have constrained
// dateOfApprehension to non-null; hours come back sparse and days in store
// numbering (1=Sunday..7=Saturday).
func (r *AnalyticsRepository) TimePatterns(ctx context.Context, match query.Match) (byHour, byDayOfWeek []model.BucketCount, err error) {
	pipeline := compileStages([]query.Stage{
		query.MatchStage{Match: match},
		query.Facet{Branches: map[string][]query.Stage{
			"byHour": {
				query.MatchStage{Match: query.Match{
					query.NotNull{Field: query.FieldTimeOfApprehension},
					query.Pattern{Field: query.FieldTimeOfApprehension, Expr: hourPrefix},
				}},
				query.GroupCount{Key: query.ByHourOfTime{Field: query.FieldTimeOfApprehension}},
				query.Sort{By: query.SortByKey},
			},
			"byDayOfWeek": {
				query.GroupCount{Key: query.ByDayOfWeek{Field: query.FieldDateOfApprehension}},
				query.Sort{By: query.SortByKey},
			},
		}},
	})

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, nil, fmt.Errorf("time patterns aggregation: %w", err)
	}

	var results []struct {
		ByHour      []model.BucketCount `bson:"byHour"`
		ByDayOfWeek []model.BucketCount `bson:"byDayOfWeek"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, nil, fmt.Errorf("time patterns decode: %w", err)
	}
	if len(results) == 0 {
		return nil, nil, nil
	}

	return results[0].ByHour, results[0].ByDayOfWeek, nil
}

// Summary counts the current period and, when previous is non-nil, the
// immediately preceding one, in a single faceted round trip so both counts
// come from the same logical read.
func (r *AnalyticsRepository) Summary(ctx context.Context, base query.Match, current model.DateRange, previous *model.DateRange) (currentCount, previousCount int64, err error) {
	branches := map[string][]query.Stage{
		"currentCount": periodBranch(base, current),
	}
	if previous != nil {
		branches["previousCount"] = periodBranch(base, *previous)
	}

	pipeline := compileStages([]query.Stage{query.Facet{Branches: branches}})

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, fmt.Errorf("summary aggregation: %w", err)
	}

	var results []struct {
		CurrentCount  []countRow `bson:"currentCount"`
		PreviousCount []countRow `bson:"previousCount"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, 0, fmt.Errorf("summary decode: %w", err)
	}
	if len(results) == 0 {
		return 0, 0, nil
	}

	return firstCount(results[0].CurrentCount), firstCount(results[0].PreviousCount), nil
}

// Stats produces the total plus three independently ranked top-N breakdowns
// from one faceted aggregation.
func (r *AnalyticsRepository) Stats(ctx context.Context, match query.Match, topLimit int) (model.StatsBreakdown, error) {
	top := func(field string) []query.Stage {
		return []query.Stage{
			query.GroupCount{Key: query.ByField{Field: field}},
			query.Sort{By: query.SortByCount, Desc: true},
			query.Limit{N: topLimit},
		}
	}

	pipeline := compileStages([]query.Stage{
		query.MatchStage{Match: match},
		query.Facet{Branches: map[string][]query.Stage{
			"total":       {query.Count{}},
			"byAgency":    top(query.FieldAgency),
			"byViolation": top(query.FieldViolation),
			"byLocation":  top(query.FieldPlace),
		}},
	})

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return model.StatsBreakdown{}, fmt.Errorf("stats aggregation: %w", err)
	}

	var results []struct {
		Total       []countRow         `bson:"total"`
		ByAgency    []model.LabelCount `bson:"byAgency"`
		ByViolation []model.LabelCount `bson:"byViolation"`
		ByLocation  []model.LabelCount `bson:"byLocation"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return model.StatsBreakdown{}, fmt.Errorf("stats decode: %w", err)
	}
	if len(results) == 0 {
		return model.StatsBreakdown{}, nil
	}

	return model.StatsBreakdown{
		Total:       firstCount(results[0].Total),
		ByAgency:    results[0].ByAgency,
		ByViolation: results[0].ByViolation,
		ByLocation:  results[0].ByLocation,
	}, nil
}

func periodBranch(base query.Match, period model.DateRange) []query.Stage {
	match := make(query.Match, 0, len(base)+1)
	match = append(match, base...)
	match = append(match, query.DateRange{
		Field: query.FieldDateOfApprehension,
		From:  &period.From,
		To:    &period.To,
	})
	return []query.Stage{query.MatchStage{Match: match}, query.Count{}}
}

type countRow struct {
	Count int64 `bson:"count"`
}

func firstCount(rows []countRow) int64 {
	if len(rows) == 0 {
		return 0
	}
	return rows[0].Count
}
