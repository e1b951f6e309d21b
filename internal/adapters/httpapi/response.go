package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type HealthResponse struct {
	Status    string `json:"status"`
	WhatsApp  bool   `json:"whatsapp"`
	Timestamp string `json:"timestamp"`
}

type StatusResponse struct {
	Connected   bool   `json:"connected"`
	QRAvailable bool   `json:"qrAvailable"`
	Timestamp   string `json:"timestamp"`
}

// QRResponse: QRCode == nil сериализуется как null
type QRResponse struct {
	Connected bool    `json:"connected"`
	QRCode    *string `json:"qrCode"`
}

type SendRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type SendResponse struct {
	Success bool   `json:"success"`
	To      string `json:"to"`
}

type BulkRequest struct {
	Phones  []string `json:"phones"`
	Message string   `json:"message"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type InfoResponse struct {
	PushName string `json:"pushname"`
	WID      string `json:"wid"`
	Platform string `json:"platform"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Success: false, Error: msg})
}
