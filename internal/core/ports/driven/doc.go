// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): persistence, model providers, the
// spreadsheet service, text extraction and verification backends.
//
// Services in internal/core/services depend only on these interfaces;
// concrete implementations live under internal/adapters/driven.
package driven
