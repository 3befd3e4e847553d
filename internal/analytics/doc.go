// Package analytics is the metrics engine of the dashboard: given the
// enriched order set and a year/city filter it computes the executive
// KPI set, growth rates, Pareto and client concentration, the business
// risk score, and the upsell candidate rankings.
//
// Everything here is a pure function of its inputs. Aggregates are
// recomputed from scratch on every filter change; the data volume is
// small enough that incremental maintenance would buy nothing. All
// ratios short-circuit to 0 on empty or zero denominators, so an empty
// filtered set is a reportable snapshot, never a fault.
package analytics
