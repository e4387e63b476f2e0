// Package source defines the data source capability contract consumed by
// the poll loop.
//
// The contract is deliberately narrow: connect to an endpoint, resolve a
// node identifier to a readable handle, read a handle's current value, and
// disconnect. The real wire protocol (OPC UA security, sessions, encoding)
// lives behind an implementation of these interfaces and is out of scope
// for this repository; the sim subpackage provides an in-process
// implementation so the binary runs end to end, and tests supply fakes.
//
// Implementations classify their failures with the sentinel errors in
// errors.go so the poll loop can log the fault class without knowing the
// protocol.
package source
