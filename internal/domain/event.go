package domain

// EventKind перечисляет события жизненного цикла сессии
type EventKind int

const (
	EventPairingCode EventKind = iota
	EventAuthenticated
	EventReady
	EventAuthFailure
	EventMessage
	EventDisconnected
)

func (k EventKind) String() string {
	switch k {
	case EventPairingCode:
		return "pairing_code"
	case EventAuthenticated:
		return "authenticated"
	case EventReady:
		return "ready"
	case EventAuthFailure:
		return "auth_failure"
	case EventMessage:
		return "message"
	case EventDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Event is a single session lifecycle notification.
// Code is set for EventPairingCode (already rendered as an image data URI),
// Reason for EventAuthFailure and EventDisconnected, Message for EventMessage.
type Event struct {
	Kind    EventKind
	Code    string
	Reason  string
	Message *Message
}
