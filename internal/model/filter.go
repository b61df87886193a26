package model

import (
	"math"
	"time"
)

type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

type GroupBy string

const (
	GroupByAgency    GroupBy = "agency"
	GroupByViolation GroupBy = "violation"
	GroupByLocation  GroupBy = "location"
	GroupByMvType    GroupBy = "mvType"
	GroupByGender    GroupBy = "gender"
)

type DateRange struct {
	From time.Time
	To   time.Time
}

// AnalyticsFilter is the shared filter set for the analytics endpoints.
// A nil/empty field contributes no constraint.
type AnalyticsFilter struct {
	DateFrom            *time.Time
	DateTo              *time.Time
	Agency              string
	Violation           string
	PlaceOfApprehension string
}

type TrendsFilter struct {
	AnalyticsFilter
	Granularity Granularity
}

type DistributionsFilter struct {
	AnalyticsFilter
	GroupBy GroupBy
	Limit   int
}

type SummaryFilter struct {
	AnalyticsFilter
	ComparePrevious bool
}

// StatsFilter scopes the statistics endpoint. Month is a YYYY-MM shorthand
// taking precedence over the explicit range when both are given.
type StatsFilter struct {
	Month               string
	DateFrom            *time.Time
	DateTo              *time.Time
	Agency              string
	Violation           string
	PlaceOfApprehension string
	TopLimit            int
}

// ApprehensionFilter narrows the record listing. DriverName matches either
// part of the driver's name.
type ApprehensionFilter struct {
	DateFrom    *time.Time
	DateTo      *time.Time
	Agency      string
	Violation   string
	MvType      string
	PlateNumber string
	DriverName  string
}

type Pagination struct {
	Page  int
	Limit int
}

func (p Pagination) Normalize(defaultLimit, maxLimit int) Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

func (p Pagination) Skip() int64 {
	return int64(p.Page-1) * int64(p.Limit)
}

type PageMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func NewPageMeta(p Pagination, total int64) PageMeta {
	return PageMeta{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(p.Limit))),
	}
}

type PaginatedApprehensions struct {
	Data       []Apprehension `json:"data"`
	Pagination PageMeta       `json:"pagination"`
}
