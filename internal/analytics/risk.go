package analytics

// assessRisk scores the filtered view on three independent signals, one
// point each: shrinking latest month, over-reliance on the top client
// (>40% share), and a narrow training base (dominant set under 30% of
// all trainings).
func assessRisk(momGrowthPct float64, clients ClientConcentration, pareto Pareto) RiskAssessment {
	r := RiskAssessment{}

	if momGrowthPct < 0 {
		r.NegativeMoMGrowth = true
		r.Score++
	}
	if clients.TopClientSharePct > 40 {
		r.TopClientConcentration = true
		r.Score++
	}
	if pareto.TotalTrainings > 0 {
		if float64(len(pareto.DominantSet))/float64(pareto.TotalTrainings) < 0.3 {
			r.NarrowTrainingBase = true
			r.Score++
		}
	}

	switch {
	case r.Score == 0:
		r.Level = RiskLow
	case r.Score == 1:
		r.Level = RiskModerate
	default:
		r.Level = RiskHigh
	}
	return r
}
