package model

// TrendPoint is one time bucket in a trends series. The bson tag lets the
// repository decode grouped aggregation rows into it directly.
type TrendPoint struct {
	Date  string `bson:"_id" json:"date"`
	Count int64  `bson:"count" json:"count"`
}

type TrendsResponse struct {
	Granularity Granularity  `json:"granularity"`
	Series      []TrendPoint `json:"series"`
}

// LabelCount is a raw grouped row; a nil label means the group key was absent
// on the underlying records.
type LabelCount struct {
	Label *string `bson:"_id"`
	Count int64   `bson:"count"`
}

type DistributionItem struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type DistributionsResponse struct {
	GroupBy GroupBy            `json:"groupBy"`
	Items   []DistributionItem `json:"items"`
	Total   int64              `json:"total"`
}

// BucketCount is a raw grouped row keyed by a small integer (hour of day, or
// the store's day-of-week number).
type BucketCount struct {
	Bucket int32 `bson:"_id"`
	Count  int64 `bson:"count"`
}

type HourCount struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

type DayOfWeekCount struct {
	Day   int    `json:"day"`
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type TimePatternsResponse struct {
	ByHour      []HourCount      `json:"byHour"`
	ByDayOfWeek []DayOfWeekCount `json:"byDayOfWeek"`
}

type Period struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type PeriodStats struct {
	Total  int64  `json:"total"`
	Period Period `json:"period"`
}

type GrowthStats struct {
	Absolute   int64   `json:"absolute"`
	Percentage float64 `json:"percentage"`
}

type SummaryResponse struct {
	Current  PeriodStats  `json:"current"`
	Previous *PeriodStats `json:"previous,omitempty"`
	Growth   *GrowthStats `json:"growth,omitempty"`
}

// StatsBreakdown is the raw faceted result for the statistics endpoint.
type StatsBreakdown struct {
	Total       int64
	ByAgency    []LabelCount
	ByViolation []LabelCount
	ByLocation  []LabelCount
}

type StatsResponse struct {
	Total         int64              `json:"total"`
	TopAgencies   []DistributionItem `json:"topAgencies"`
	TopViolations []DistributionItem `json:"topViolations"`
	TopLocations  []DistributionItem `json:"topLocations"`
}
