package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"trainpulse/internal/analytics"
)

// WriteSnapshotCSV writes the snapshot as a sectioned CSV report. Each
// section has a title row, a header row, and its records, separated by
// blank rows. A UTF-8 BOM is written first so Excel detects encoding.
func WriteSnapshotCSV(w io.Writer, snap *analytics.Snapshot) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	defer cw.Flush()

	sections := []func(*csv.Writer, *analytics.Snapshot) error{
		writeFilterSection,
		writeKPISection,
		writeRiskSection,
		writeMonthlySection,
		writeCitySection,
		writeParetoSection,
		writeClientSection,
		writeUpsellSection,
	}
	for i, section := range sections {
		if i > 0 {
			if err := cw.Write([]string{}); err != nil {
				return err
			}
		}
		if err := section(cw, snap); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func writeFilterSection(cw *csv.Writer, snap *analytics.Snapshot) error {
	rows := [][]string{
		{"Dashboard Export"},
		{"Generated At", snap.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		{"Year", strconv.Itoa(snap.Filter.Year)},
	}
	rows = append(rows, append([]string{"Cities"}, snap.Filter.Cities...))
	if snap.Empty {
		rows = append(rows, []string{"Note", "no orders matched the filter"})
	}
	return writeAll(cw, rows)
}

func writeKPISection(cw *csv.Writer, snap *analytics.Snapshot) error {
	k := snap.KPIs
	return writeAll(cw, [][]string{
		{"KPIs"},
		{"Metric", "Value"},
		{"Total Revenue", formatFloat(k.TotalRevenue)},
		{"Total Orders", strconv.Itoa(k.TotalOrders)},
		{"Total Participants", formatInt(k.TotalParticipants)},
		{"Avg Order Value", formatFloat(k.AvgOrderValue)},
		{"Revenue per Participant", formatFloat(k.RevenuePerParticipant)},
		{"YoY Growth", formatPct(k.YoYGrowthPct)},
		{"Latest MoM Growth", formatPct(k.LatestMoMGrowthPct)},
	})
}

func writeRiskSection(cw *csv.Writer, snap *analytics.Snapshot) error {
	r := snap.Risk
	return writeAll(cw, [][]string{
		{"Risk Assessment"},
		{"Score", "Level", "Negative MoM", "Top Client Concentration", "Narrow Training Base"},
		{strconv.Itoa(r.Score), string(r.Level), formatBool(r.NegativeMoMGrowth), formatBool(r.TopClientConcentration), formatBool(r.NarrowTrainingBase)},
	})
}

func writeMonthlySection(cw *csv.Writer, snap *analytics.Snapshot) error {
	rows := [][]string{
		{"Monthly Revenue"},
		{"Month", "Revenue"},
	}
	for _, p := range snap.MonthlyRevenue {
		rows = append(rows, []string{p.Label, formatFloat(p.Revenue)})
	}
	return writeAll(cw, rows)
}

func writeCitySection(cw *csv.Writer, snap *analytics.Snapshot) error {
	rows := [][]string{
		{"Revenue by City"},
		{"City", "Revenue"},
	}
	for _, p := range snap.RevenueByCity {
		rows = append(rows, []string{p.Label, formatFloat(p.Revenue)})
	}
	return writeAll(cw, rows)
}

func writeParetoSection(cw *csv.Writer, snap *analytics.Snapshot) error {
	rows := [][]string{
		{"Revenue Concentration (Pareto)"},
		{"Training", "Revenue", "Share", "Cumulative Share"},
	}
	for _, e := range snap.Pareto.DominantSet {
		rows = append(rows, []string{
			e.TrainingName,
			formatFloat(e.Revenue),
			formatPct(e.SharePct),
			formatPct(e.CumulativeSharePct),
		})
	}
	rows = append(rows, []string{"Dominant Share", formatPct(snap.Pareto.DominantSharePct)})
	rows = append(rows, []string{"Total Trainings", strconv.Itoa(snap.Pareto.TotalTrainings)})
	return writeAll(cw, rows)
}

func writeClientSection(cw *csv.Writer, snap *analytics.Snapshot) error {
	return writeAll(cw, [][]string{
		{"Client Concentration"},
		{"Top Client", "Top Client Share", "Clients"},
		{snap.Clients.TopClient, formatPct(snap.Clients.TopClientSharePct), strconv.Itoa(snap.Clients.Clients)},
	})
}

func writeUpsellSection(cw *csv.Writer, snap *analytics.Snapshot) error {
	rows := [][]string{
		{"Client Upsell Candidates"},
		{"Company", "Revenue", "Orders", "Distinct Trainings"},
	}
	for _, c := range snap.ClientUpsell {
		rows = append(rows, []string{
			c.CompanyName,
			formatFloat(c.Revenue),
			strconv.Itoa(c.Orders),
			strconv.Itoa(c.DistinctTrainings),
		})
	}

	rows = append(rows, []string{}, []string{"Training Upsell Candidates"},
		[]string{"Training", "Revenue", "Orders", "Participants"})
	for _, t := range snap.TrainingUpsell {
		rows = append(rows, []string{
			t.TrainingName,
			formatFloat(t.Revenue),
			strconv.Itoa(t.Orders),
			formatInt(t.Participants),
		})
	}

	rows = append(rows, []string{}, []string{"Upsell Scores"}, []string{"Company", "Score"})
	for _, s := range snap.UpsellScores {
		rows = append(rows, []string{s.CompanyName, formatFloat(s.Score)})
	}
	return writeAll(cw, rows)
}

func writeAll(cw *csv.Writer, rows [][]string) error {
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}
