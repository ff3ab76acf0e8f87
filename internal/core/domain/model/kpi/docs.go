// Package kpi holds the derived efficiency records and the forecasts they are
// measured against. Records are recomputed from completed routes and are never
// edited by hand; the record id is derived from its key so that a recompute
// overwrites the previous value.
package kpi
