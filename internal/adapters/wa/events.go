package wa

import (
	"context"
	"fmt"

	"github.com/larriantoniy/wa_gateway/internal/domain"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
)

// translateEvent переводит событие whatsmeow в доменное. false — событие не интересно.
func translateEvent(evt interface{}) (domain.Event, bool) {
	switch v := evt.(type) {
	case *events.PairSuccess:
		return domain.Event{Kind: domain.EventAuthenticated, Reason: v.ID.String()}, true
	case *events.Connected:
		return domain.Event{Kind: domain.EventReady}, true
	case *events.ConnectFailure:
		return domain.Event{Kind: domain.EventAuthFailure, Reason: fmt.Sprintf("connect failure: %v %s", v.Reason, v.Message)}, true
	case *events.TemporaryBan:
		return domain.Event{Kind: domain.EventAuthFailure, Reason: fmt.Sprintf("temporary ban: %v, expires in %s", v.Code, v.Expire)}, true
	case *events.ClientOutdated:
		return domain.Event{Kind: domain.EventAuthFailure, Reason: "client outdated"}, true
	case *events.Disconnected:
		return domain.Event{Kind: domain.EventDisconnected, Reason: "connection lost"}, true
	case *events.StreamReplaced:
		return domain.Event{Kind: domain.EventDisconnected, Reason: "stream replaced by another client"}, true
	case *events.LoggedOut:
		return domain.Event{Kind: domain.EventDisconnected, Reason: fmt.Sprintf("logged out: %v", v.Reason)}, true
	case *events.Message:
		return translateMessage(v)
	default:
		return domain.Event{}, false
	}
}

func translateMessage(v *events.Message) (domain.Event, bool) {
	if v.Info.IsFromMe || v.Info.Chat.Server == types.BroadcastServer {
		return domain.Event{}, false
	}
	return domain.Event{
		Kind: domain.EventMessage,
		Message: &domain.Message{
			ID:        string(v.Info.ID),
			From:      v.Info.Sender.ToNonAD().String(),
			Chat:      v.Info.Chat.ToNonAD().String(),
			Text:      messageText(v.Message),
			IsGroup:   v.Info.IsGroup,
			Timestamp: v.Info.Timestamp,
		},
	}, true
}

// lidResolver — часть store.LIDStore, нужная для поиска номера по LID
type lidResolver interface {
	GetPNForLID(ctx context.Context, lid types.JID) (types.JID, error)
}

// resolveSenderPhone подменяет отправителя-LID на его телефонный JID, если связка известна
func resolveSenderPhone(ctx context.Context, r lidResolver, msg *domain.Message) error {
	jid, err := types.ParseJID(msg.From)
	if err != nil || jid.Server != types.HiddenUserServer {
		return nil
	}
	pn, err := r.GetPNForLID(ctx, jid)
	if err != nil {
		return fmt.Errorf("lookup phone for %s: %w", msg.From, err)
	}
	if pn.IsEmpty() {
		return nil
	}
	msg.From = pn.ToNonAD().String()
	return nil
}

// messageText достаёт текст: обычное сообщение, расширенное или подпись к медиа
func messageText(m *waE2E.Message) string {
	if m == nil {
		return ""
	}
	if t := m.GetConversation(); t != "" {
		return t
	}
	if t := m.GetExtendedTextMessage().GetText(); t != "" {
		return t
	}
	if t := m.GetImageMessage().GetCaption(); t != "" {
		return t
	}
	return m.GetVideoMessage().GetCaption()
}
