package http

import "github.com/go-waba-webhooks/internal/transport/http/handler"

// Deps holds the application dependencies the router wires into handlers.
type Deps struct {
	Dispatcher handler.Dispatcher
}
