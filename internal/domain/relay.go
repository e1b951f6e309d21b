package domain

const ActionProcessMessage = "processMessage"

// RelayPayload — тело запроса к внешнему обработчику
type RelayPayload struct {
	Action  string `json:"action"`
	From    string `json:"from"`
	Message string `json:"message"`
}

// RelayResponse — ответ обработчика; Reply может отсутствовать
type RelayResponse struct {
	Reply string `json:"reply,omitempty"`
}
