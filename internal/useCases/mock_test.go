package useCases

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/larriantoniy/wa_gateway/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockSession records SendMessage calls; SendMessageFunc decides the outcome.
type MockSession struct {
	SendMessageFunc func(chatID, text string) error
	Calls           []MockCall
	mu              sync.Mutex
}

type MockCall struct {
	ChatID string
	Text   string
}

func (m *MockSession) Connect(context.Context) error        { return nil }
func (m *MockSession) Listen() (<-chan domain.Event, error) { return nil, nil }
func (m *MockSession) Logout(context.Context) error         { return nil }
func (m *MockSession) Close()                               {}
func (m *MockSession) Info(context.Context) (*domain.AccountInfo, error) {
	return &domain.AccountInfo{}, nil
}

func (m *MockSession) SendMessage(_ context.Context, chatID, text string) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{ChatID: chatID, Text: text})
	m.mu.Unlock()
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(chatID, text)
	}
	return nil
}

func (m *MockSession) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

func (m *MockSession) GetCall(i int) MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[i]
}

type MockProcessor struct {
	ProcessFunc func(p *domain.RelayPayload) (*domain.RelayResponse, error)
	Payloads    []domain.RelayPayload
	mu          sync.Mutex
}

func (m *MockProcessor) Process(_ context.Context, p *domain.RelayPayload) (*domain.RelayResponse, error) {
	m.mu.Lock()
	m.Payloads = append(m.Payloads, *p)
	m.mu.Unlock()
	if m.ProcessFunc != nil {
		return m.ProcessFunc(p)
	}
	return &domain.RelayResponse{}, nil
}

func (m *MockProcessor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Payloads)
}
