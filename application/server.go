package application

import "context"

// Server is the serving contract the application drives on Start and Stop.
// Serve must return once the listener is bound, leaving serving to run in
// the background.
type Server interface {
	Serve(ctx context.Context, port int) error
	Shutdown(ctx context.Context) error
}
