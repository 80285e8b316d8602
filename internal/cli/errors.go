package cli

import (
	"fmt"

	"botsdash/internal/router"
)

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

// remoteError is a response whose status is not success.
type remoteError struct {
	channel string
	event   string
	status  router.Status
	message string
}

func (e remoteError) Error() string {
	msg := e.message
	if msg == "" {
		msg = "no message"
	}
	return fmt.Sprintf("%s/%s: %s: %s", e.channel, e.event, e.status, msg)
}

func errRemote(ev router.Event) error {
	return remoteError{channel: ev.Channel, event: ev.Name, status: ev.Status, message: ev.Message}
}
