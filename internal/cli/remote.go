package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"botsdash/internal/command"
	"botsdash/internal/router"
	"botsdash/internal/socketio"
)

// remote is a single-use connection for scripted commands: no reconnects,
// one namespace, closed when the command returns.
type remote struct {
	client  *socketio.Client
	cmds    *command.Commands
	logger  *slog.Logger
	stop    context.CancelFunc
	done    chan error
	closers []io.Closer

	ended bool
	err   error
}

// runErr is the error Run returned; only valid once Events is closed.
func (r *remote) runErr() error {
	if !r.ended {
		r.err = <-r.done
		r.ended = true
		if r.err == nil {
			r.err = socketio.ErrClosed
		}
	}
	return r.err
}

// dialRemote connects to channel and waits for the server's connect event,
// which is returned.
func dialRemote(ctx context.Context, app *App, channel string) (*remote, router.Event, error) {
	s, err := loadSettings(app)
	if err != nil {
		return nil, router.Event{}, err
	}
	logger, logCloser, err := newLogger(s)
	if err != nil {
		return nil, router.Event{}, err
	}
	client, err := newClient(s, logger, false, channel)
	if err != nil {
		_ = logCloser.Close()
		return nil, router.Event{}, err
	}

	runCtx, stop := context.WithCancel(ctx)
	r := &remote{
		client:  client,
		cmds:    command.New(client),
		logger:  logger,
		stop:    stop,
		done:    make(chan error, 1),
		closers: []io.Closer{logCloser},
	}
	go func() { r.done <- client.Run(runCtx) }()

	ev, err := r.await(ctx, channel, "connect")
	if err != nil {
		r.Close()
		return nil, router.Event{}, err
	}
	return r, ev, nil
}

// await returns the next event on channel whose name is one of names. Other
// events are skipped. A connect_error or disconnect on the channel ends the
// wait.
func (r *remote) await(ctx context.Context, channel string, names ...string) (router.Event, error) {
	name := strings.Join(names, "|")
	events := r.client.Events()
	for {
		select {
		case <-ctx.Done():
			return router.Event{}, waitError(ctx, channel, name)
		case in, ok := <-events:
			if !ok {
				// Run also stops when ctx ends; report that rather than the closed stream.
				if ctx.Err() != nil {
					return router.Event{}, waitError(ctx, channel, name)
				}
				err := r.runErr()
				return router.Event{}, fmt.Errorf("connection ended before %s/%s: %w", channel, name, err)
			}
			if in.Namespace != channel {
				continue
			}
			switch {
			case slices.Contains(names, in.Event):
				ev, err := router.Decode(in.Namespace, in.Event, in.Payload)
				if err != nil {
					return router.Event{}, err
				}
				return ev, nil
			case in.Event == socketio.EventConnectError, in.Event == socketio.EventDisconnect:
				ev, err := router.Decode(in.Namespace, in.Event, in.Payload)
				if err != nil {
					return router.Event{}, err
				}
				return router.Event{}, errRemote(ev)
			default:
				r.logger.Debug("skipping event", "channel", in.Namespace, "event", in.Event)
			}
		}
	}
}

func waitError(ctx context.Context, channel, name string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w (%s/%s)", errTimeout, channel, name)
	}
	return ctx.Err()
}

// request sends via fn and waits for the server's answer to event (see
// command.Replies). Non-success responses are returned as remoteError.
func (r *remote) request(ctx context.Context, channel, event string, fn func(*command.Commands) error) (router.Event, error) {
	if err := fn(r.cmds); err != nil {
		return router.Event{}, err
	}
	ev, err := r.await(ctx, channel, command.Replies(event)...)
	if err != nil {
		return router.Event{}, err
	}
	if ev.Status != router.StatusSuccess {
		return ev, errRemote(ev)
	}
	return ev, nil
}

func (r *remote) Close() {
	_ = r.client.Close()
	r.stop()
	for _, c := range r.closers {
		_ = c.Close()
	}
}
