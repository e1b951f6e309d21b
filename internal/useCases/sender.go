package useCases

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/larriantoniy/wa_gateway/internal/domain"
	"github.com/larriantoniy/wa_gateway/internal/ports"
)

var ErrInvalidPhone = errors.New("invalid phone number")

// BulkItem — результат отправки одному получателю
type BulkItem struct {
	Phone   string `json:"phone"`
	To      string `json:"to,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type BulkResult struct {
	Results []BulkItem `json:"results"`
	Sent    int        `json:"sent"`
	Failed  int        `json:"failed"`
}

type Sender struct {
	log     *slog.Logger
	session ports.SessionClient

	countryCode    string
	bulkDelay      time.Duration // пауза между отправками в рассылке
	commandTimeout time.Duration // 0 — без таймаута
}

func NewSender(
	log *slog.Logger,
	session ports.SessionClient,
	countryCode string,
	bulkDelay time.Duration,
	commandTimeout time.Duration,
) *Sender {
	return &Sender{
		log:            log,
		session:        session,
		countryCode:    countryCode,
		bulkDelay:      bulkDelay,
		commandTimeout: commandTimeout,
	}
}

// Send нормализует номер и отправляет текст. Возвращает канонический идентификатор.
func (s *Sender) Send(ctx context.Context, phone, text string) (string, error) {
	digits := domain.NormalizePhone(phone, s.countryCode)
	if digits == "" {
		return "", ErrInvalidPhone
	}
	chatID := domain.ChatID(digits)

	if s.commandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.commandTimeout)
		defer cancel()
	}

	if err := s.session.SendMessage(ctx, chatID, text); err != nil {
		s.log.Error("SendMessage failed", "to", chatID, "error", err)
		return chatID, err
	}
	s.log.Info("Message sent", "to", chatID)
	return chatID, nil
}

// SendBulk шлёт последовательно с фиксированной паузой между сообщениями.
// Ошибка на одном получателе не останавливает цикл.
func (s *Sender) SendBulk(ctx context.Context, phones []string, text string) *BulkResult {
	res := &BulkResult{Results: make([]BulkItem, 0, len(phones))}

	for i, phone := range phones {
		if i > 0 {
			if err := s.pause(ctx); err != nil {
				s.log.Warn("Bulk send canceled during pause", "remaining", len(phones)-i, "error", err)
				for _, rest := range phones[i:] {
					res.add(BulkItem{Phone: rest, Error: err.Error()})
				}
				return res
			}
		}

		item := BulkItem{Phone: phone}
		to, err := s.Send(ctx, phone, text)
		item.To = to
		if err != nil {
			item.Error = err.Error()
		} else {
			item.Success = true
		}
		res.add(item)
	}

	s.log.Info("Bulk send finished", "sent", res.Sent, "failed", res.Failed)
	return res
}

func (r *BulkResult) add(item BulkItem) {
	r.Results = append(r.Results, item)
	if item.Success {
		r.Sent++
	} else {
		r.Failed++
	}
}

func (s *Sender) pause(ctx context.Context) error {
	if s.bulkDelay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(s.bulkDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
