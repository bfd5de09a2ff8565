// Package driving provides interfaces for application entrypoints
// (primary/inbound ports). The CLI and streaming adapters depend on these
// interfaces; the services in internal/core/services implement them.
package driving
