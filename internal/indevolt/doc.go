// Package indevolt implements the HTTP RPC protocol spoken by Indevolt
// power-control devices.
//
// Devices expose a JSON-over-HTTP interface at /rpc/{endpoint} on their
// embedded web server. Request parameters travel in the URL as a raw
// "config" query parameter holding compact JSON; the firmware reads the
// query string literally and does not decode percent-escapes, so the
// client deliberately skips URL encoding.
//
// Three operations cover the protocol surface: Indevolt.GetData reads
// data points, Indevolt.SetData writes control points, and
// Sys.GetConfig retrieves system configuration. Responses are returned
// as decoded JSON maps without reshaping, except that GetConfig derives
// a hardware generation from the reported model type.
//
// All failures surface as *DeviceError carrying the endpoint, an error
// category, and a retryable flag. Timeouts are distinguished from other
// failures so callers can apply their own retry policy; the client
// itself never retries.
package indevolt
