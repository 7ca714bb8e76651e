// Package points carries the catalog of known Indevolt data and control
// points. The catalog is embedded at build time from points.yaml and
// maps numeric wire IDs to symbolic names, units, and writability.
//
// The device protocol only ever sees numeric IDs; the catalog exists so
// command-line users can say "battery_soc" instead of 7101. Unknown
// numeric IDs pass through Resolve untouched, which keeps the tools
// usable against firmware that exposes points the catalog has not
// caught up with yet.
package points
