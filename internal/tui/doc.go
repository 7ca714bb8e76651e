// Package tui implements the interactive device browser built on Bubble
// Tea. Two screens cover the workflow: a discovery screen that runs a
// broadcast scan and lists found devices as selectable cards, and a
// detail screen that reads configuration plus cataloged telemetry from
// the selected device.
//
// The AppModel coordinates screen transitions; DiscoveryModel and
// DetailModel own their screen-local state. All screens render through
// RenderApplicationContainer so the header and footer chrome stays
// consistent.
package tui
