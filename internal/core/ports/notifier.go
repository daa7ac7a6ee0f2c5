package ports

import "context"

type Notification struct {
	To      string
	Subject string
	Body    string
	// Key groups related notifications, e.g. the booking id.
	Key string
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=Notifier
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}
