package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Driver identifies the apprehended driver. Both parts are optional because
// imported spreadsheets frequently leave them blank.
type Driver struct {
	FirstName *string `bson:"firstName" json:"firstName"`
	LastName  *string `bson:"lastName" json:"lastName"`
}

type ConfiscatedItem struct {
	Type   *string `bson:"type" json:"type"`
	Number *string `bson:"number" json:"number"`
}

// Apprehension is a single traffic-apprehension record. Every field apart from
// the identifiers may be absent; analytics treats missing group keys as an
// "Unknown" bucket instead of dropping the record.
type Apprehension struct {
	ID                  bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	DateOfSubmission    *time.Time      `bson:"dateOfSubmission" json:"dateOfSubmission"`
	DaysInterval        *int            `bson:"daysInterval" json:"daysInterval"`
	DateOfApprehension  *time.Time      `bson:"dateOfApprehension" json:"dateOfApprehension"`
	TimeOfApprehension  *string         `bson:"timeOfApprehension" json:"timeOfApprehension"`
	Agency              *string         `bson:"agency" json:"agency"`
	ApprehendingOfficer *string         `bson:"apprehendingOfficer" json:"apprehendingOfficer"`
	CaseNumber          *string         `bson:"caseNumber" json:"caseNumber"`
	Driver              Driver          `bson:"driver" json:"driver"`
	Violation           *string         `bson:"violation" json:"violation"`
	ConfiscatedItem     ConfiscatedItem `bson:"confiscatedItem" json:"confiscatedItem"`
	RestrictionCode     *string         `bson:"restrictionCode" json:"restrictionCode"`
	Conditions          *string         `bson:"conditions" json:"conditions"`
	Nationality         *string         `bson:"nationality" json:"nationality"`
	Gender              *string         `bson:"gender" json:"gender"`
	MvType              *string         `bson:"mvType" json:"mvType"`
	PlateNumber         *string         `bson:"plateNumber" json:"plateNumber"`
	PlaceOfApprehension *string         `bson:"placeOfApprehension" json:"placeOfApprehension"`
	Remarks             *string         `bson:"remarks" json:"remarks"`
	CreatedAt           time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// ApprehensionUpdate carries a partial update; nil fields are left untouched.
type ApprehensionUpdate struct {
	DateOfSubmission    *time.Time       `json:"dateOfSubmission"`
	DaysInterval        *int             `json:"daysInterval"`
	DateOfApprehension  *time.Time       `json:"dateOfApprehension"`
	TimeOfApprehension  *string          `json:"timeOfApprehension"`
	Agency              *string          `json:"agency"`
	ApprehendingOfficer *string          `json:"apprehendingOfficer"`
	CaseNumber          *string          `json:"caseNumber"`
	Driver              *Driver          `json:"driver"`
	Violation           *string          `json:"violation"`
	ConfiscatedItem     *ConfiscatedItem `json:"confiscatedItem"`
	RestrictionCode     *string          `json:"restrictionCode"`
	Conditions          *string          `json:"conditions"`
	Nationality         *string          `json:"nationality"`
	Gender              *string          `json:"gender"`
	MvType              *string          `json:"mvType"`
	PlateNumber         *string          `json:"plateNumber"`
	PlaceOfApprehension *string          `json:"placeOfApprehension"`
	Remarks             *string          `json:"remarks"`
}

type ImportResult struct {
	Total    int `json:"total"`
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}
