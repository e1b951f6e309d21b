package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/larriantoniy/wa_gateway/internal/config"
	"github.com/larriantoniy/wa_gateway/internal/domain"
)

// maxErrorBody ограничивает тело ответа, которое попадает в лог при ошибке
const maxErrorBody = 4 << 10

// Client отправляет входящие сообщения во внешний обработчик
type Client struct {
	client  *http.Client
	logger  *slog.Logger
	baseURL string
	apiKey  string // опционально, уходит как Bearer
}

func NewClient(cfg *config.RelayConfig, logger *slog.Logger) *Client {
	return &Client{
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
		baseURL: cfg.URL,
		apiKey:  cfg.Token,
	}
}

// Process делает один POST без повторов. Отсутствующий reply — не ошибка.
func (c *Client) Process(ctx context.Context, payload *domain.RelayPayload) (*domain.RelayResponse, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.logger.Debug("Relay request", "request_id", requestID, "from", payload.From, "url", c.baseURL)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("relay request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Error("Relay endpoint returned error",
			"request_id", requestID,
			"status", resp.StatusCode,
			"body", string(data),
		)
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(data))
	}

	var rr domain.RelayResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return nil, fmt.Errorf("decode relay response: %w", err)
	}

	c.logger.Info("Relay processed",
		"request_id", requestID,
		"from", payload.From,
		"has_reply", rr.Reply != "",
		"duration", time.Since(start),
	)
	return &rr, nil
}
