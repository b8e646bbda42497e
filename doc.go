// Package etfwatch follows the daily holdings disclosures of a family of
// exchange-traded funds and reports what changed from one day to the next.
//
// The core functionalities include:
//   - Snapshots: loading a fund's holdings file into an immutable, ordered
//     table keyed by the security identifier (CUSIP).
//   - Deltas: joining today's snapshot with the previous one to compute,
//     per holding, absolute and percentage changes in shares, rank, market
//     value, weight and share price.
//   - Aggregates: total market value per fund and across all funds, and
//     their change.
//   - Structural changes: holdings added, removed or renamed.
//   - Distribution: mode and quartiles of the share changes of a fund.
//   - Significance: a threshold based filter that selects the holdings
//     worth a line in the daily report.
//
// Values that cannot be computed, like a percentage change over a zero or
// missing previous value, are represented by an invalid
// [decimal.NullDecimal] and printed as "N/A".
//
// This package serves as the foundational logic for the `etfw` command-line
// tool.
package etfwatch
