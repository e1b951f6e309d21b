package domain

import "time"

// Message описывает входящее сообщение из WhatsApp
type Message struct {
	ID        string
	From      string // JID отправителя, без device-части
	Chat      string // JID чата, сюда уходит ответ
	Text      string
	IsGroup   bool
	Timestamp time.Time
}

// AccountInfo — данные привязанного аккаунта для /info
type AccountInfo struct {
	PushName string
	WID      string
	Platform string
}
