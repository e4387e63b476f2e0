// Package catalog defines the immutable tag catalog for a logging run.
//
// A catalog is an ordered list of (name, node id) entries. Order is
// significant: it defines the column order of the CSV output and the
// position of every reading in a sample row. Names are unique within
// a catalog.
package catalog
