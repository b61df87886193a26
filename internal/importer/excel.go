// Package importer parses bulk apprehension spreadsheets into records.
package importer

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"apprehension-service/internal/model"
)

// Excel stores dates as days since 1899-12-30; 25569 is the offset of the
// Unix epoch in that scheme.
const excelEpochOffset = 25569

// Parse reads every sheet of an xlsx workbook and returns one record per
// usable data row. The first row of each sheet is a header and is skipped;
// a row is usable when it has at least ten cells and a non-empty case number.
func Parse(r io.Reader) ([]model.Apprehension, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var records []model.Apprehension
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		for i := 1; i < len(rows); i++ {
			if record, ok := parseRow(rows[i]); ok {
				records = append(records, record)
			}
		}
	}
	return records, nil
}

func parseRow(row []string) (model.Apprehension, bool) {
	if len(row) < 10 || strings.TrimSpace(cell(row, 7)) == "" {
		return model.Apprehension{}, false
	}

	return model.Apprehension{
		DateOfSubmission:    serialDate(cell(row, 1)),
		DaysInterval:        intCell(cell(row, 2)),
		DateOfApprehension:  serialDate(cell(row, 3)),
		TimeOfApprehension:  serialTime(cell(row, 4)),
		Agency:              strCell(cell(row, 5)),
		ApprehendingOfficer: strCell(cell(row, 6)),
		CaseNumber:          strCell(cell(row, 7)),
		Driver: model.Driver{
			LastName:  strCell(cell(row, 8)),
			FirstName: strCell(cell(row, 9)),
		},
		Violation: strCell(cell(row, 10)),
		ConfiscatedItem: model.ConfiscatedItem{
			Type:   strCell(cell(row, 11)),
			Number: strCell(cell(row, 12)),
		},
		RestrictionCode:     strCell(cell(row, 13)),
		Conditions:          strCell(cell(row, 14)),
		Nationality:         strCell(cell(row, 15)),
		Gender:              strCell(cell(row, 16)),
		MvType:              strCell(cell(row, 17)),
		PlateNumber:         strCell(cell(row, 18)),
		PlaceOfApprehension: strCell(cell(row, 19)),
		Remarks:             strCell(cell(row, 20)),
	}, true
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}

func strCell(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func intCell(v string) *int {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return nil
	}
	n := int(f)
	return &n
}

// serialDate converts an Excel date serial to midnight UTC of that day.
func serialDate(v string) *time.Time {
	serial, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || serial == 0 {
		return nil
	}
	days := math.Floor(serial - excelEpochOffset)
	t := time.Unix(int64(days)*86400, 0).UTC()
	return &t
}

// serialTime converts an Excel time fraction to an HH:MM string.
func serialTime(v string) *string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || serial == 0 {
		return nil
	}
	totalMinutes := int(math.Round(serial * 24 * 60))
	s := fmt.Sprintf("%02d:%02d", totalMinutes/60, totalMinutes%60)
	return &s
}
