// Package journal records run history in SQLite.
//
// A run is one Start..stop lifecycle of the poller. The journal keeps
// one row per run: when it started, which endpoint it sampled, how many
// rows it wrote, when it stopped, and the last fault seen. This survives
// restarts, so "when did the logger last run and why did it stop" can be
// answered without trawling application logs.
//
// The journal is optional and best-effort: journal failures are logged
// and never interrupt sampling. Schema creation is idempotent
// (CREATE TABLE IF NOT EXISTS) and owned by this package.
package journal
