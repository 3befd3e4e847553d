package exporter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestBuildWorkbook(t *testing.T) {
	f, err := BuildWorkbook(testSnapshot())
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t,
		[]string{"KPIs", "Monthly Revenue", "Revenue by City", "Pareto", "Clients", "Upsell"},
		f.GetSheetList())

	metric, err := f.GetCellValue("KPIs", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Metric", metric)

	revenue, err := f.GetCellValue("KPIs", "B5")
	require.NoError(t, err)
	assert.Equal(t, "9500", revenue)

	month, err := f.GetCellValue("Monthly Revenue", "A2")
	require.NoError(t, err)
	assert.Equal(t, "2024-01", month)

	city, err := f.GetCellValue("Revenue by City", "A3")
	require.NoError(t, err)
	assert.Equal(t, "Munich", city)

	training, err := f.GetCellValue("Pareto", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Leadership 101", training)

	topClient, err := f.GetCellValue("Clients", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Acme", topClient)

	company, err := f.GetCellValue("Upsell", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Acme", company)
}

func TestWriteSnapshotXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSnapshotXLSX(&buf, testSnapshot()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Len(t, f.GetSheetList(), 6)
}
