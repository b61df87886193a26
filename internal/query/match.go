// Package query describes match expressions and aggregation pipelines as
// typed, store-agnostic descriptors. The repository layer interprets them
// against the document store; nothing here performs I/O.
package query

import (
	"time"

	"apprehension-service/internal/model"
)

// Document field paths used by the filter builders and engines.
const (
	FieldDateOfApprehension = "dateOfApprehension"
	FieldTimeOfApprehension = "timeOfApprehension"
	FieldAgency             = "agency"
	FieldViolation          = "violation"
	FieldPlace              = "placeOfApprehension"
	FieldMvType             = "mvType"
	FieldGender             = "gender"
	FieldPlateNumber        = "plateNumber"
	FieldDriverFirstName    = "driver.firstName"
	FieldDriverLastName     = "driver.lastName"
)

// Condition is a single field predicate. Conditions on the same field are
// merged by the interpreter.
type Condition interface {
	isCondition()
}

// DateRange bounds a date field inclusively; either bound may be nil.
type DateRange struct {
	Field string
	From  *time.Time
	To    *time.Time
}

// Contains is a case-insensitive substring match. The value is treated as a
// literal: the interpreter escapes it before building any pattern.
type Contains struct {
	Field string
	Value string
}

// ContainsAny matches when any of the listed fields contains the value.
type ContainsAny struct {
	Fields []string
	Value  string
}

// NotNull requires the field to be present and non-null.
type NotNull struct {
	Field string
}

// Pattern matches a field against a fixed pattern owned by the engine, such
// as the leading-hour check on time strings. Never built from user input.
type Pattern struct {
	Field string
	Expr  string
}

func (DateRange) isCondition()   {}
func (Contains) isCondition()    {}
func (ContainsAny) isCondition() {}
func (NotNull) isCondition()     {}
func (Pattern) isCondition()     {}

// Match is a conjunction of conditions. An empty Match matches every record.
type Match []Condition

// ForAnalytics translates the shared analytics filter set. Absent fields
// contribute no clause.
func ForAnalytics(f model.AnalyticsFilter) Match {
	var m Match
	if f.DateFrom != nil || f.DateTo != nil {
		m = append(m, DateRange{Field: FieldDateOfApprehension, From: f.DateFrom, To: f.DateTo})
	}
	if f.Agency != "" {
		m = append(m, Contains{Field: FieldAgency, Value: f.Agency})
	}
	if f.Violation != "" {
		m = append(m, Contains{Field: FieldViolation, Value: f.Violation})
	}
	if f.PlaceOfApprehension != "" {
		m = append(m, Contains{Field: FieldPlace, Value: f.PlaceOfApprehension})
	}
	return m
}

// ForApprehensions translates the record-listing filter set.
func ForApprehensions(f model.ApprehensionFilter) Match {
	var m Match
	if f.DateFrom != nil || f.DateTo != nil {
		m = append(m, DateRange{Field: FieldDateOfApprehension, From: f.DateFrom, To: f.DateTo})
	}
	if f.Agency != "" {
		m = append(m, Contains{Field: FieldAgency, Value: f.Agency})
	}
	if f.Violation != "" {
		m = append(m, Contains{Field: FieldViolation, Value: f.Violation})
	}
	if f.MvType != "" {
		m = append(m, Contains{Field: FieldMvType, Value: f.MvType})
	}
	if f.PlateNumber != "" {
		m = append(m, Contains{Field: FieldPlateNumber, Value: f.PlateNumber})
	}
	if f.DriverName != "" {
		m = append(m, ContainsAny{
			Fields: []string{FieldDriverFirstName, FieldDriverLastName},
			Value:  f.DriverName,
		})
	}
	return m
}
