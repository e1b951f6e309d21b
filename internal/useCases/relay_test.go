package useCases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/larriantoniy/wa_gateway/internal/adapters/dedup"
	"github.com/larriantoniy/wa_gateway/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inbound(id, text string) *domain.Message {
	return &domain.Message{
		ID:   id,
		From: "919876543210@s.whatsapp.net",
		Chat: "919876543210@s.whatsapp.net",
		Text: text,
	}
}

func TestRelay_ForwardsAndReplies(t *testing.T) {
	session := &MockSession{}
	proc := &MockProcessor{ProcessFunc: func(p *domain.RelayPayload) (*domain.RelayResponse, error) {
		return &domain.RelayResponse{Reply: "  thanks!  "}, nil
	}}
	r := NewRelay(discardLogger(), session, proc, dedup.NewMemory(time.Hour))

	r.Handle(context.Background(), inbound("m1", "  hello there \n"))

	require.Equal(t, 1, proc.CallCount())
	assert.Equal(t, domain.RelayPayload{
		Action:  "processMessage",
		From:    "919876543210",
		Message: "hello there",
	}, proc.Payloads[0])

	require.Equal(t, 1, session.CallCount())
	assert.Equal(t, MockCall{ChatID: "919876543210@s.whatsapp.net", Text: "thanks!"}, session.GetCall(0))
}

func TestRelay_SenderID(t *testing.T) {
	tests := []struct {
		name      string
		msg       *domain.Message
		wantFrom  string
		wantReply string
	}{
		{
			name:      "direct chat addressed by lid",
			msg:       &domain.Message{ID: "a", From: "919876543210@s.whatsapp.net", Chat: "112233445566@lid", Text: "hi"},
			wantFrom:  "919876543210",
			wantReply: "112233445566@lid",
		},
		{
			name:      "group chat",
			msg:       &domain.Message{ID: "b", From: "919876543210@s.whatsapp.net", Chat: "120363025246125486@g.us", Text: "hi", IsGroup: true},
			wantFrom:  "120363025246125486",
			wantReply: "120363025246125486@g.us",
		},
		{
			name:      "no sender falls back to chat",
			msg:       &domain.Message{ID: "c", Chat: "919876543210@s.whatsapp.net", Text: "hi"},
			wantFrom:  "919876543210",
			wantReply: "919876543210@s.whatsapp.net",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &MockSession{}
			proc := &MockProcessor{ProcessFunc: func(*domain.RelayPayload) (*domain.RelayResponse, error) {
				return &domain.RelayResponse{Reply: "ok"}, nil
			}}
			NewRelay(discardLogger(), session, proc, nil).Handle(context.Background(), tt.msg)

			require.Equal(t, 1, proc.CallCount())
			assert.Equal(t, tt.wantFrom, proc.Payloads[0].From)
			require.Equal(t, 1, session.CallCount())
			assert.Equal(t, tt.wantReply, session.GetCall(0).ChatID)
		})
	}
}

func TestRelay_NoReplyOnFailure(t *testing.T) {
	tests := []struct {
		name string
		fn   func(p *domain.RelayPayload) (*domain.RelayResponse, error)
	}{
		{
			name: "transport error",
			fn: func(*domain.RelayPayload) (*domain.RelayResponse, error) {
				return nil, context.DeadlineExceeded
			},
		},
		{
			name: "malformed response",
			fn: func(*domain.RelayPayload) (*domain.RelayResponse, error) {
				return nil, errors.New("decode relay response: invalid character '<'")
			},
		},
		{
			name: "missing reply",
			fn: func(*domain.RelayPayload) (*domain.RelayResponse, error) {
				return &domain.RelayResponse{}, nil
			},
		},
		{
			name: "whitespace reply",
			fn: func(*domain.RelayPayload) (*domain.RelayResponse, error) {
				return &domain.RelayResponse{Reply: "   "}, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &MockSession{}
			proc := &MockProcessor{ProcessFunc: tt.fn}
			r := NewRelay(discardLogger(), session, proc, nil)

			assert.NotPanics(t, func() {
				r.Handle(context.Background(), inbound("m1", "hi"))
			})
			assert.Equal(t, 1, proc.CallCount())
			assert.Equal(t, 0, session.CallCount())
		})
	}
}

func TestRelay_SkipsEmptyBody(t *testing.T) {
	proc := &MockProcessor{}
	r := NewRelay(discardLogger(), &MockSession{}, proc, nil)

	r.Handle(context.Background(), inbound("m1", " \t\n"))
	r.Handle(context.Background(), nil)

	assert.Equal(t, 0, proc.CallCount())
}

func TestRelay_SkipsDuplicates(t *testing.T) {
	proc := &MockProcessor{}
	r := NewRelay(discardLogger(), &MockSession{}, proc, dedup.NewMemory(time.Hour))

	r.Handle(context.Background(), inbound("m1", "hi"))
	r.Handle(context.Background(), inbound("m1", "hi"))
	r.Handle(context.Background(), inbound("m2", "hi"))

	assert.Equal(t, 2, proc.CallCount())
}

type failingDedup struct{}

func (failingDedup) Seen(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestRelay_DedupErrorStillRelays(t *testing.T) {
	proc := &MockProcessor{}
	r := NewRelay(discardLogger(), &MockSession{}, proc, failingDedup{})

	r.Handle(context.Background(), inbound("m1", "hi"))

	assert.Equal(t, 1, proc.CallCount())
}

func TestRelay_ReplySendErrorSwallowed(t *testing.T) {
	session := &MockSession{SendMessageFunc: func(string, string) error { return errors.New("offline") }}
	proc := &MockProcessor{ProcessFunc: func(*domain.RelayPayload) (*domain.RelayResponse, error) {
		return &domain.RelayResponse{Reply: "ok"}, nil
	}}
	r := NewRelay(discardLogger(), session, proc, nil)

	assert.NotPanics(t, func() {
		r.Handle(context.Background(), inbound("m1", "hi"))
	})
	assert.Equal(t, 1, session.CallCount())
}
