// Package samplelog writes sample rows to hourly CSV files.
//
// Each call to Append is self-contained: it derives the file name from the
// row's local timestamp (one file per calendar hour in the configured
// zone), opens the file for append, writes the header if and only if the
// file did not already exist on disk, writes exactly one row, flushes and
// closes. No state is carried between calls, so a crash between calls
// loses at most the in-flight row and a restart never duplicates the
// header.
//
// The header-dedup mechanism is the on-disk existence check. It is safe
// because the lifecycle controller guarantees a single active run, hence a
// single writer per file; it would not survive multiple processes logging
// to the same directory with the same prefix.
package samplelog
