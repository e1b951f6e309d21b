package httpapi

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/larriantoniy/wa_gateway/internal/domain"
	"github.com/larriantoniy/wa_gateway/internal/useCases"
)

// MockSession is a ports.SessionClient that records commands.
type MockSession struct {
	SendMessageFunc func(chatID, text string) error
	LogoutErr       error
	LogoutFunc      func()
	InfoResult      *domain.AccountInfo
	InfoErr         error

	mu          sync.Mutex
	Sent        []string
	LogoutCalls int
	InfoCalls   int
}

func (m *MockSession) Connect(context.Context) error        { return nil }
func (m *MockSession) Listen() (<-chan domain.Event, error) { return nil, nil }
func (m *MockSession) Close()                               {}

func (m *MockSession) SendMessage(_ context.Context, chatID, text string) error {
	m.mu.Lock()
	m.Sent = append(m.Sent, chatID)
	m.mu.Unlock()
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(chatID, text)
	}
	return nil
}

func (m *MockSession) Logout(context.Context) error {
	m.mu.Lock()
	m.LogoutCalls++
	m.mu.Unlock()
	if m.LogoutFunc != nil {
		m.LogoutFunc()
	}
	return m.LogoutErr
}

func (m *MockSession) Info(context.Context) (*domain.AccountInfo, error) {
	m.mu.Lock()
	m.InfoCalls++
	m.mu.Unlock()
	return m.InfoResult, m.InfoErr
}

func (m *MockSession) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newTestHandler(state *domain.ConnectionState, session *MockSession) *Handler {
	sender := useCases.NewSender(discardLogger(), session, "91", time.Millisecond, time.Second)
	h := NewHandler(discardLogger(), state, session, sender, time.Second)
	h.now = func() time.Time { return fixedNow }
	return h
}
