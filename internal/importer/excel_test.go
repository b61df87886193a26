package importer

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func dateSerial(t time.Time) float64 {
	return float64(t.Unix())/86400 + excelEpochOffset
}

func timeSerial(hours, minutes int) float64 {
	return float64(hours*60+minutes) / (24 * 60)
}

func buildWorkbook(t *testing.T, fill func(f *excelize.File)) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetCellValue("Sheet1", "A1", "No."))
	fill(f)

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParse(t *testing.T) {
	apprehended := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	submitted := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	buf := buildWorkbook(t, func(f *excelize.File) {
		cells := map[string]interface{}{
			"B2": dateSerial(submitted),
			"C2": 3,
			"D2": dateSerial(apprehended),
			"E2": timeSerial(13, 45),
			"F2": " HPG ",
			"G2": "PO1 Santos",
			"H2": "CASE-0001",
			"I2": "Cruz",
			"J2": "Juan",
			"K2": "No helmet",
			"L2": "DL",
			"M2": "D01-23-456789",
			"N2": "A",
			"O2": "1",
			"P2": "Filipino",
			"Q2": "Male",
			"R2": "Motorcycle",
			"S2": "ABC123",
			"T2": "EDSA cor. Shaw",
			"U2": "first offense",
		}
		for ref, value := range cells {
			require.NoError(t, f.SetCellValue("Sheet1", ref, value))
		}
	})

	records, err := Parse(buf)

	require.NoError(t, err)
	require.Len(t, records, 1)

	record := records[0]
	require.NotNil(t, record.DateOfSubmission)
	assert.Equal(t, submitted, *record.DateOfSubmission)
	require.NotNil(t, record.DateOfApprehension)
	assert.Equal(t, apprehended, *record.DateOfApprehension)
	require.NotNil(t, record.TimeOfApprehension)
	assert.Equal(t, "13:45", *record.TimeOfApprehension)
	require.NotNil(t, record.DaysInterval)
	assert.Equal(t, 3, *record.DaysInterval)
	assert.Equal(t, "HPG", *record.Agency)
	assert.Equal(t, "CASE-0001", *record.CaseNumber)
	assert.Equal(t, "Cruz", *record.Driver.LastName)
	assert.Equal(t, "Juan", *record.Driver.FirstName)
	assert.Equal(t, "DL", *record.ConfiscatedItem.Type)
	assert.Equal(t, "EDSA cor. Shaw", *record.PlaceOfApprehension)
}

func TestParseSkipsRowsWithoutCaseNumber(t *testing.T) {
	buf := buildWorkbook(t, func(f *excelize.File) {
		// Row 2 has no case number; row 3 is too short to be a data row.
		require.NoError(t, f.SetCellValue("Sheet1", "F2", "HPG"))
		require.NoError(t, f.SetCellValue("Sheet1", "K2", "No helmet"))
		require.NoError(t, f.SetCellValue("Sheet1", "B3", 45000))

		require.NoError(t, f.SetCellValue("Sheet1", "H4", "CASE-0002"))
		require.NoError(t, f.SetCellValue("Sheet1", "K4", "Reckless driving"))
	})

	records, err := Parse(buf)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "CASE-0002", *records[0].CaseNumber)
}

func TestParseMissingOptionalCells(t *testing.T) {
	buf := buildWorkbook(t, func(f *excelize.File) {
		require.NoError(t, f.SetCellValue("Sheet1", "H2", "CASE-0003"))
		require.NoError(t, f.SetCellValue("Sheet1", "K2", "No OR/CR"))
	})

	records, err := Parse(buf)

	require.NoError(t, err)
	require.Len(t, records, 1)

	record := records[0]
	assert.Nil(t, record.DateOfSubmission)
	assert.Nil(t, record.DateOfApprehension)
	assert.Nil(t, record.TimeOfApprehension)
	assert.Nil(t, record.Agency)
	assert.Nil(t, record.Driver.FirstName)
	assert.Equal(t, "No OR/CR", *record.Violation)
}

func TestParseRejectsNonWorkbook(t *testing.T) {
	_, err := Parse(bytes.NewBufferString("not a workbook"))
	assert.Error(t, err)
}
