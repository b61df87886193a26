package query

import "apprehension-service/internal/model"

// GroupKey selects how records collapse into buckets for a GroupCount stage.
type GroupKey interface {
	isGroupKey()
}

// ByField groups on a document field; records without the field land in a
// null-keyed bucket, preserved for "Unknown" labelling downstream.
type ByField struct {
	Field string
}

// ByDateBucket truncates a date field to the granularity: calendar date,
// ISO week identifier, or year-month.
type ByDateBucket struct {
	Field       string
	Granularity model.Granularity
}

// ByHourOfTime extracts the leading hour from an "H:MM"/"HH:MM" string field.
// Values not matching that prefix must be filtered out beforehand.
type ByHourOfTime struct {
	Field string
}

// ByDayOfWeek groups on the calendar day of week of a date field, in the
// store's native numbering (1=Sunday..7=Saturday).
type ByDayOfWeek struct {
	Field string
}

func (ByField) isGroupKey()      {}
func (ByDateBucket) isGroupKey() {}
func (ByHourOfTime) isGroupKey() {}
func (ByDayOfWeek) isGroupKey()  {}

type SortBy string

const (
	SortByKey   SortBy = "key"
	SortByCount SortBy = "count"
)

// Stage is one step of an aggregation pipeline.
type Stage interface {
	isStage()
}

type MatchStage struct {
	Match Match
}

// GroupCount buckets records by Key and counts each bucket.
type GroupCount struct {
	Key GroupKey
}

type Sort struct {
	By   SortBy
	Desc bool
}

type Limit struct {
	N int
}

// Count collapses the branch into a single row holding the record count.
type Count struct{}

// Facet runs independent branch pipelines over the same filtered input in a
// single pass, so every branch sees one consistent snapshot.
type Facet struct {
	Branches map[string][]Stage
}

func (MatchStage) isStage() {}
func (GroupCount) isStage() {}
func (Sort) isStage()       {}
func (Limit) isStage()      {}
func (Count) isStage()      {}
func (Facet) isStage()      {}
