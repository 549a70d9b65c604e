// Package domain models the monthly precipitation products published for the
// Costa Rican station network.
//
// # Data Source
//
// Station values are extracted upstream into a comma-separated table with one
// header line and one line per station. Only positional meaning is fixed:
//
//	index 3   latitude  (decimal degrees)
//	index 4   longitude (decimal degrees)
//	index -3  month-to-date cumulative precipitation (mm)
//	index -2  anomaly against the monthly baseline (mm)
//	index -1  anomaly against the monthly baseline (%)
//
// Index 0 is used as the station code in error messages. The remaining
// leading fields are carried through untouched.
//
// # Metric Kinds
//
// Three products are rendered per run, each keyed by the tag the operational
// database uses for it:
//
//	anomPorc_lluvia    percentage anomaly, 13 bands, output anomalia_PREC
//	anomMM_lluvia      millimetre anomaly, 15 bands, output anomalia_PRECmm
//	acumulado_mensual  cumulative total,   14 bands, output acumulado_PREC
//
// # Bands
//
// Each kind owns one ordered table of [Band] values. The classifier and the
// legend are both derived from that table, so a map can never show a colour
// its legend does not explain.
//
// Anomaly bands are closed towards zero: [-25,-10) on the dry side, (10,25]
// on the wet side, with [-10,10] as the neutral band. Cumulative bands are
// half-open [lo,hi) except the last one, which starts strictly above 400 mm.
// A total of exactly 400 mm therefore matches no band and is reported as
// [ErrClassificationGap] rather than silently assigned.
//
// # Periods
//
// Products describe the month containing "yesterday" relative to the run's
// reference date, so a run on the 1st renders the complete previous month.
// Month names follow Costa Rican Spanish ("setiembre").
package domain
