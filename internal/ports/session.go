package ports

import (
	"context"

	"github.com/larriantoniy/wa_gateway/internal/domain"
)

// SessionClient определяет интерфейс для работы с сессией WhatsApp.
// Реализуется адаптером whatsmeow.
type SessionClient interface {
	// Connect поднимает соединение; при отсутствии привязки запускает выдачу QR
	Connect(ctx context.Context) error
	// Listen возвращает канал событий сессии
	Listen() (<-chan domain.Event, error)
	// SendMessage отправляет текст в чат по каноническому идентификатору
	SendMessage(ctx context.Context, chatID, text string) error
	Logout(ctx context.Context) error
	Info(ctx context.Context) (*domain.AccountInfo, error)
	Close()
}
