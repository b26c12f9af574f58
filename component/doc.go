// Package component manages the long-running parts of an application.
//
// Providers register components during boot; the application starts them
// in registration order right before the server begins listening and stops
// them in reverse order on shutdown. Each component reports its health for
// the readiness endpoint.
package component
