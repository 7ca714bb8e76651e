// Package simulator provides an in-process Indevolt device for tests
// and local development. It speaks both halves of the device protocol:
// UDP discovery probes are answered with a JSON announcement, and the
// HTTP RPC endpoints serve an in-memory point table.
//
// The simulator binds loopback ephemeral ports by default so parallel
// tests never collide; the indevolt-sim command wraps it for manual use
// on real network interfaces.
package simulator
