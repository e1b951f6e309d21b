package useCases

import (
	"context"
	"log/slog"
	"strings"

	"github.com/larriantoniy/wa_gateway/internal/domain"
	"github.com/larriantoniy/wa_gateway/internal/ports"
)

// Relay пересылает входящие сообщения во внешний обработчик и отправляет ответ.
// Ошибки только логируются: ни повторов, ни проброса наверх.
type Relay struct {
	log       *slog.Logger
	session   ports.SessionClient
	processor ports.RelayProcessor
	dedup     ports.DedupStore
}

func NewRelay(
	log *slog.Logger,
	session ports.SessionClient,
	processor ports.RelayProcessor,
	dedup ports.DedupStore,
) *Relay {
	return &Relay{
		log:       log,
		session:   session,
		processor: processor,
		dedup:     dedup,
	}
}

func (r *Relay) Handle(ctx context.Context, msg *domain.Message) {
	if msg == nil {
		return
	}
	from := senderID(msg)
	text := strings.TrimSpace(msg.Text)
	log := r.log.With("msg_id", msg.ID, "from", from, "group", msg.IsGroup, "sent_at", msg.Timestamp)

	if text == "" {
		log.Debug("Skip relay: empty message body")
		return
	}

	if r.dedup != nil && msg.ID != "" {
		seen, err := r.dedup.Seen(ctx, msg.ID)
		if err != nil {
			log.Warn("Dedup check failed, relaying anyway", "error", err)
		} else if seen {
			log.Info("Skip relay: duplicate message")
			return
		}
	}

	resp, err := r.processor.Process(ctx, &domain.RelayPayload{
		Action:  domain.ActionProcessMessage,
		From:    from,
		Message: text,
	})
	if err != nil {
		log.Error("Relay failed", "error", err)
		return
	}

	reply := strings.TrimSpace(resp.Reply)
	if reply == "" {
		log.Info("Relay returned no reply")
		return
	}

	if err := r.session.SendMessage(ctx, msg.Chat, reply); err != nil {
		log.Error("Send reply failed", "error", err)
		return
	}
	log.Info("Reply sent", "reply_len", len(reply))
}

// senderID: для личного чата — номер отправителя (From уже без LID, если связка известна),
// для группы — id группы
func senderID(msg *domain.Message) string {
	if !msg.IsGroup && msg.From != "" {
		return domain.StripSuffix(msg.From)
	}
	return domain.StripSuffix(msg.Chat)
}
