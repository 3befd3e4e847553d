package exporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"trainpulse/internal/analytics"
)

// Sheet names of the exported workbook.
const (
	sheetKPIs    = "KPIs"
	sheetMonthly = "Monthly Revenue"
	sheetCities  = "Revenue by City"
	sheetPareto  = "Pareto"
	sheetClients = "Clients"
	sheetUpsell  = "Upsell"
)

// WriteSnapshotXLSX builds the workbook and writes it to w.
func WriteSnapshotXLSX(w io.Writer, snap *analytics.Snapshot) error {
	f, err := BuildWorkbook(snap)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// BuildWorkbook renders the snapshot as a multi-sheet XLSX workbook.
// The caller owns the returned file and must Close it.
func BuildWorkbook(snap *analytics.Snapshot) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", sheetKPIs); err != nil {
		return nil, fmt.Errorf("rename default sheet: %w", err)
	}
	for _, name := range []string{sheetMonthly, sheetCities, sheetPareto, sheetClients, sheetUpsell} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DCE6F1"}},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	b := &workbookBuilder{file: f, headerStyle: headerStyle}

	if err := b.writeKPIs(snap); err != nil {
		return nil, err
	}
	if err := b.writeSeries(sheetMonthly, "Month", snap.MonthlyRevenue); err != nil {
		return nil, err
	}
	if err := b.writeSeries(sheetCities, "City", snap.RevenueByCity); err != nil {
		return nil, err
	}
	if err := b.writePareto(snap); err != nil {
		return nil, err
	}
	if err := b.writeClients(snap); err != nil {
		return nil, err
	}
	if err := b.writeUpsell(snap); err != nil {
		return nil, err
	}

	return f, nil
}

type workbookBuilder struct {
	file        *excelize.File
	headerStyle int
}

func (b *workbookBuilder) writeHeader(sheet string, row int, cells []string) error {
	for i, v := range cells {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := b.file.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	start, _ := excelize.CoordinatesToCellName(1, row)
	end, _ := excelize.CoordinatesToCellName(len(cells), row)
	return b.file.SetCellStyle(sheet, start, end, b.headerStyle)
}

func (b *workbookBuilder) writeRow(sheet string, row int, cells []interface{}) error {
	for i, v := range cells {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := b.file.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func (b *workbookBuilder) writeKPIs(snap *analytics.Snapshot) error {
	if err := b.writeHeader(sheetKPIs, 1, []string{"Metric", "Value"}); err != nil {
		return err
	}

	k := snap.KPIs
	rows := [][]interface{}{
		{"Year", snap.Filter.Year},
		{"Cities", strings.Join(snap.Filter.Cities, ", ")},
		{"Generated At", snap.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		{"Total Revenue", k.TotalRevenue},
		{"Total Orders", k.TotalOrders},
		{"Total Participants", k.TotalParticipants},
		{"Avg Order Value", k.AvgOrderValue},
		{"Revenue per Participant", k.RevenuePerParticipant},
		{"YoY Growth %", k.YoYGrowthPct},
		{"Latest MoM Growth %", k.LatestMoMGrowthPct},
		{"Risk Score", snap.Risk.Score},
		{"Risk Level", string(snap.Risk.Level)},
	}
	for i, row := range rows {
		if err := b.writeRow(sheetKPIs, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (b *workbookBuilder) writeSeries(sheet, label string, series []analytics.SeriesPoint) error {
	if err := b.writeHeader(sheet, 1, []string{label, "Revenue"}); err != nil {
		return err
	}
	for i, p := range series {
		if err := b.writeRow(sheet, i+2, []interface{}{p.Label, p.Revenue}); err != nil {
			return err
		}
	}
	return nil
}

func (b *workbookBuilder) writePareto(snap *analytics.Snapshot) error {
	if err := b.writeHeader(sheetPareto, 1, []string{"Training", "Revenue", "Share %", "Cumulative Share %"}); err != nil {
		return err
	}
	row := 2
	for _, e := range snap.Pareto.DominantSet {
		if err := b.writeRow(sheetPareto, row, []interface{}{e.TrainingName, e.Revenue, e.SharePct, e.CumulativeSharePct}); err != nil {
			return err
		}
		row++
	}
	row++
	if err := b.writeRow(sheetPareto, row, []interface{}{"Dominant Share %", snap.Pareto.DominantSharePct}); err != nil {
		return err
	}
	return b.writeRow(sheetPareto, row+1, []interface{}{"Total Trainings", snap.Pareto.TotalTrainings})
}

func (b *workbookBuilder) writeClients(snap *analytics.Snapshot) error {
	if err := b.writeHeader(sheetClients, 1, []string{"Top Client", "Top Client Share %", "Clients"}); err != nil {
		return err
	}
	return b.writeRow(sheetClients, 2, []interface{}{
		snap.Clients.TopClient,
		snap.Clients.TopClientSharePct,
		snap.Clients.Clients,
	})
}

func (b *workbookBuilder) writeUpsell(snap *analytics.Snapshot) error {
	if err := b.writeHeader(sheetUpsell, 1, []string{"Company", "Revenue", "Orders", "Distinct Trainings"}); err != nil {
		return err
	}
	row := 2
	for _, c := range snap.ClientUpsell {
		if err := b.writeRow(sheetUpsell, row, []interface{}{c.CompanyName, c.Revenue, c.Orders, c.DistinctTrainings}); err != nil {
			return err
		}
		row++
	}

	row++
	if err := b.writeHeader(sheetUpsell, row, []string{"Training", "Revenue", "Orders", "Participants"}); err != nil {
		return err
	}
	row++
	for _, t := range snap.TrainingUpsell {
		if err := b.writeRow(sheetUpsell, row, []interface{}{t.TrainingName, t.Revenue, t.Orders, t.Participants}); err != nil {
			return err
		}
		row++
	}

	row++
	if err := b.writeHeader(sheetUpsell, row, []string{"Company", "Upsell Score"}); err != nil {
		return err
	}
	row++
	for _, s := range snap.UpsellScores {
		if err := b.writeRow(sheetUpsell, row, []interface{}{s.CompanyName, s.Score}); err != nil {
			return err
		}
		row++
	}
	return nil
}
