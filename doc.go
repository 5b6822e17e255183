// Package curves compares the historical performance of investment strategies against
// market benchmarks.
//
// Heterogeneous time series (strategy valuations, benchmark closing prices) are turned into
// comparable curves by a stateless pipeline:
//   - Merge aligns every series on the dates they all share.
//   - Normalize rescales each series so that it starts at 100, or at a principal.
//   - Deflate optionally divides values by an inflation factor looked up by date.
//   - Display selects the series to plot and annotates the axis scale.
//
// Source adapters live in sub packages (valuation, eodhd, inflation, insee) and only ever
// hand parsed Series to this package. A Pipeline runs the whole chain once per user
// interaction; nothing computed by a run is reused by the next one.
package curves
