package useCases

import (
	"context"
	"testing"
	"time"

	"github.com/larriantoniy/wa_gateway/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_StateTransitions(t *testing.T) {
	state := domain.NewConnectionState()
	d := NewDispatcher(discardLogger(), state, NewRelay(discardLogger(), &MockSession{}, &MockProcessor{}, nil))
	ctx := context.Background()

	d.Handle(ctx, domain.Event{Kind: domain.EventPairingCode, Code: "qr-1"})
	ready, img := state.Snapshot()
	assert.False(t, ready)
	assert.Equal(t, "qr-1", img)

	d.Handle(ctx, domain.Event{Kind: domain.EventAuthenticated})
	ready, img = state.Snapshot()
	assert.False(t, ready, "authenticated is log-only")
	assert.Equal(t, "qr-1", img)

	d.Handle(ctx, domain.Event{Kind: domain.EventAuthFailure, Reason: "bad"})
	ready, img = state.Snapshot()
	assert.False(t, ready)
	assert.Equal(t, "qr-1", img, "auth failure keeps the image")

	d.Handle(ctx, domain.Event{Kind: domain.EventReady})
	ready, img = state.Snapshot()
	assert.True(t, ready)
	assert.Empty(t, img)

	d.Handle(ctx, domain.Event{Kind: domain.EventDisconnected, Reason: "network"})
	ready, img = state.Snapshot()
	assert.False(t, ready)
	assert.Empty(t, img)
}

func TestDispatcher_MessageDoesNotTouchState(t *testing.T) {
	state := domain.NewConnectionState()
	state.SetReady()
	proc := &MockProcessor{ProcessFunc: func(*domain.RelayPayload) (*domain.RelayResponse, error) {
		return nil, context.DeadlineExceeded
	}}
	d := NewDispatcher(discardLogger(), state, NewRelay(discardLogger(), &MockSession{}, proc, nil))

	d.Handle(context.Background(), domain.Event{Kind: domain.EventMessage, Message: inbound("m1", "hi")})
	d.Wait()

	assert.Equal(t, 1, proc.CallCount())
	assert.True(t, state.IsReady())
}

func TestDispatcher_RunUntilChannelClosed(t *testing.T) {
	state := domain.NewConnectionState()
	proc := &MockProcessor{}
	d := NewDispatcher(discardLogger(), state, NewRelay(discardLogger(), &MockSession{}, proc, nil))

	events := make(chan domain.Event, 4)
	events <- domain.Event{Kind: domain.EventPairingCode, Code: "qr"}
	events <- domain.Event{Kind: domain.EventReady}
	events <- domain.Event{Kind: domain.EventMessage, Message: inbound("m1", "hi")}
	close(events)

	done := make(chan struct{})
	go func() {
		d.Run(context.Background(), events)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after channel close")
	}
	d.Wait()

	assert.True(t, state.IsReady())
	require.Equal(t, 1, proc.CallCount())
}

func TestDispatcher_RunStopsOnCancel(t *testing.T) {
	d := NewDispatcher(discardLogger(), domain.NewConnectionState(), NewRelay(discardLogger(), &MockSession{}, &MockProcessor{}, nil))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		d.Run(ctx, make(chan domain.Event))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
