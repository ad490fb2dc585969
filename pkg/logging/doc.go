// Package logging provides structured, subsystem-tagged logging for
// storesync, built on the standard library's log/slog.
//
// Every log call carries a subsystem identifier (for example "DiffEngine" or
// "RateLimiter") so that output can be filtered per component. The logger is
// initialized once at startup via InitForCLI; before initialization all log
// calls are silently dropped, which keeps library packages safe to use from
// tests without any setup.
package logging
