package analytics

// computePareto ranks trainings by revenue descending and takes the
// prefix whose cumulative revenue share stays within 80%. A single
// training above 80% on its own yields an empty dominant set, which is
// itself a concentration signal picked up by the risk score.
func computePareto(byTraining []SeriesPoint) Pareto {
	p := Pareto{TotalTrainings: len(byTraining)}

	var total float64
	for _, t := range byTraining {
		total += t.Revenue
	}
	if total == 0 {
		return p
	}

	var cum float64
	for _, t := range byTraining {
		cum += t.Revenue
		cumShare := cum / total * 100
		if cumShare > 80 {
			break
		}
		p.DominantSet = append(p.DominantSet, ParetoEntry{
			TrainingName:       t.Label,
			Revenue:            t.Revenue,
			SharePct:           t.Revenue / total * 100,
			CumulativeSharePct: cumShare,
		})
		p.DominantSharePct = cumShare
	}
	return p
}
