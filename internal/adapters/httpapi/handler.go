package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/larriantoniy/wa_gateway/internal/domain"
	"github.com/larriantoniy/wa_gateway/internal/ports"
	"github.com/larriantoniy/wa_gateway/internal/useCases"
)

// maxBodySize ограничивает тело запроса (1 MiB)
const maxBodySize = 1 << 20

// Handler обслуживает HTTP API шлюза
type Handler struct {
	log            *slog.Logger
	state          *domain.ConnectionState
	session        ports.SessionClient
	sender         *useCases.Sender
	commandTimeout time.Duration
	now            func() time.Time
}

func NewHandler(
	log *slog.Logger,
	state *domain.ConnectionState,
	session ports.SessionClient,
	sender *useCases.Sender,
	commandTimeout time.Duration,
) *Handler {
	return &Handler{
		log:            log,
		state:          state,
		session:        session,
		sender:         sender,
		commandTimeout: commandTimeout,
		now:            time.Now,
	}
}

// Router собирает chi-роутер со всеми маршрутами и middleware
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(RequestID)
	r.Use(LogRequests(h.log))
	r.Use(Recoverer(h.log))

	r.Get("/health", h.Health)
	r.Get("/status", h.Status)
	r.Get("/qr", h.QR)
	r.Get("/connect", h.Connect)
	r.Get("/info", h.Info)
	r.Post("/send", h.Send)
	r.Post("/send-bulk", h.SendBulk)
	r.Post("/logout", h.Logout)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

func (h *Handler) timestamp() string {
	return h.now().UTC().Format(time.RFC3339)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		WhatsApp:  h.state.IsReady(),
		Timestamp: h.timestamp(),
	})
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	ready, img := h.state.Snapshot()
	writeJSON(w, http.StatusOK, StatusResponse{
		Connected:   ready,
		QRAvailable: img != "",
		Timestamp:   h.timestamp(),
	})
}

func (h *Handler) QR(w http.ResponseWriter, r *http.Request) {
	ready, img := h.state.Snapshot()
	resp := QRResponse{Connected: ready}
	if !ready && img != "" {
		resp.QRCode = &img
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	if !h.state.IsReady() {
		writeError(w, http.StatusBadRequest, domain.ErrNotConnected.Error())
		return
	}

	var req SendRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.log.Warn("send: invalid body", "error", err)
		writeError(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}
	if strings.TrimSpace(req.Phone) == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "phone and message are required")
		return
	}

	to, err := h.sender.Send(r.Context(), req.Phone, req.Message)
	if err != nil {
		if errors.Is(err, useCases.ErrInvalidPhone) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, SendResponse{Success: true, To: to})
}

func (h *Handler) SendBulk(w http.ResponseWriter, r *http.Request) {
	if !h.state.IsReady() {
		writeError(w, http.StatusBadRequest, domain.ErrNotConnected.Error())
		return
	}

	var req BulkRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.log.Warn("send-bulk: invalid body", "error", err)
		writeError(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}
	if req.Message == "" || len(req.Phones) == 0 {
		writeError(w, http.StatusBadRequest, "message and a non-empty phones list are required")
		return
	}

	h.log.Info("send-bulk: starting", "recipients", len(req.Phones))
	writeJSON(w, http.StatusOK, h.sender.SendBulk(r.Context(), req.Phones, req.Message))
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if !h.state.IsReady() {
		writeError(w, http.StatusBadRequest, domain.ErrNotConnected.Error())
		return
	}

	ctx, cancel := h.commandContext(r.Context())
	defer cancel()

	if err := h.session.Logout(ctx); err != nil {
		h.log.Error("logout failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	// новый QR мог прийти раньше, чем вернулся Logout: его не трогаем
	h.state.SetLoggedOut()
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	if !h.state.IsReady() {
		writeError(w, http.StatusBadRequest, domain.ErrNotConnected.Error())
		return
	}

	ctx, cancel := h.commandContext(r.Context())
	defer cancel()

	info, err := h.session.Info(ctx)
	if err != nil {
		h.log.Error("info failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, InfoResponse{
		PushName: info.PushName,
		WID:      info.WID,
		Platform: info.Platform,
	})
}

func (h *Handler) commandContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.commandTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.commandTimeout)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	return json.NewDecoder(r.Body).Decode(v)
}
