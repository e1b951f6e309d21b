package useCases

import (
	"context"
	"log/slog"
	"sync"

	"github.com/larriantoniy/wa_gateway/internal/domain"
)

// Dispatcher применяет события сессии к ConnectionState и передаёт входящие в Relay
type Dispatcher struct {
	log   *slog.Logger
	state *domain.ConnectionState
	relay *Relay

	wg sync.WaitGroup
}

func NewDispatcher(log *slog.Logger, state *domain.ConnectionState, relay *Relay) *Dispatcher {
	return &Dispatcher{log: log, state: state, relay: relay}
}

// Run читает события до закрытия канала или отмены ctx
func (d *Dispatcher) Run(ctx context.Context, events <-chan domain.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				d.log.Info("session event stream closed")
				return
			}
			d.Handle(ctx, evt)
		}
	}
}

// Handle applies one event. Message relays run in their own goroutine so a slow
// relay endpoint never delays state updates.
func (d *Dispatcher) Handle(ctx context.Context, evt domain.Event) {
	switch evt.Kind {
	case domain.EventPairingCode:
		d.state.SetPairing(evt.Code)
		d.log.Info("pairing code received, scan it at /connect")
	case domain.EventAuthenticated:
		d.log.Info("session authenticated")
	case domain.EventReady:
		d.state.SetReady()
		d.log.Info("session ready")
	case domain.EventAuthFailure:
		d.state.SetAuthFailure()
		d.log.Error("session authentication failure", "reason", evt.Reason)
	case domain.EventMessage:
		msg := evt.Message
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.relay.Handle(ctx, msg)
		}()
	case domain.EventDisconnected:
		d.state.SetDisconnected()
		d.log.Warn("session disconnected", "reason", evt.Reason)
	default:
		d.log.Debug("unknown session event", "kind", evt.Kind)
	}
}

// Wait blocks until in-flight relays finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
