package export

import (
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBookingsReport(t *testing.T) {
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	bookings := []*models.Booking{
		{ID: 1, ItemID: 2, BookerID: 3, Start: start.Add(24 * time.Hour), End: start.Add(48 * time.Hour), Status: models.StatusApproved, CreatedAt: start},
		{ID: 2, ItemID: 2, BookerID: 4, Start: start.Add(72 * time.Hour), End: start.Add(96 * time.Hour), Status: models.StatusWaiting, CreatedAt: start},
	}

	f, err := BuildBookingsReport(bookings, start, end)
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Bookings 2026-09-01 - 2026-09-08", title)

	header, err := f.GetCellValue(sheetName, "A2")
	require.NoError(t, err)
	assert.Equal(t, "ID", header)

	firstID, err := f.GetCellValue(sheetName, "A3")
	require.NoError(t, err)
	assert.Equal(t, "1", firstID)

	status, err := f.GetCellValue(sheetName, "F4")
	require.NoError(t, err)
	assert.Equal(t, models.StatusWaiting, status)

	t.Run("default sheet is removed", func(t *testing.T) {
		assert.NotContains(t, f.GetSheetList(), "Sheet1")
		assert.Contains(t, f.GetSheetList(), sheetName)
	})
}

func TestBuildBookingsReport_Empty(t *testing.T) {
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	f, err := BuildBookingsReport(nil, start, start.AddDate(0, 0, 1))
	require.NoError(t, err)
	defer f.Close()

	row3, err := f.GetCellValue(sheetName, "A3")
	require.NoError(t, err)
	assert.Empty(t, row3)
}
