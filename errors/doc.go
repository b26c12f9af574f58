// Package errors provides the structured error type shared by every cosy
// package. Errors carry a machine-readable code so callers of the bootstrap
// can tell a malformed config layer apart from a lifecycle misuse or a
// failing provider without matching on message text.
package errors
