package wa

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/larriantoniy/wa_gateway/internal/config"
	"github.com/larriantoniy/wa_gateway/internal/domain"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
)

var ErrNotLoggedIn = errors.New("whatsapp session is not logged in")

const (
	eventBuffer    = 64
	pairingBackoff = 2 * time.Second
)

// WhatsAppClient реализует ports.SessionClient через whatsmeow
type WhatsAppClient struct {
	db        *sql.DB
	container *sqlstore.Container
	logger    *slog.Logger
	waLogger  waLog.Logger
	proxy     string

	mu     sync.RWMutex
	client *whatsmeow.Client

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	events    chan domain.Event
	emitMu    sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// NewClient открывает хранилище устройства и готовит клиента, но не подключается
func NewClient(ctx context.Context, cfg *config.SessionConfig, log *slog.Logger) (*WhatsAppClient, error) {
	if dir := filepath.Dir(cfg.DBPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir session dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DBPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	db.SetMaxOpenConns(1)

	waLogger := NewLogger(log)
	container := sqlstore.NewWithDB(db, "sqlite", waLogger.Sub("Database"))
	if err := container.Upgrade(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("upgrade session db: %w", err)
	}

	if cfg.DeviceName != "" {
		store.SetOSInfo(cfg.DeviceName, [3]uint32{1, 0, 0})
	}

	checkConnectivity(log, cfg.Proxy)

	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load device: %w", err)
	}

	lifeCtx, cancel := context.WithCancel(context.Background())
	c := &WhatsAppClient{
		db:        db,
		container: container,
		logger:    log,
		waLogger:  waLogger,
		proxy:     cfg.Proxy,
		ctx:       lifeCtx,
		cancel:    cancel,
		events:    make(chan domain.Event, eventBuffer),
	}
	c.client = c.newWhatsmeowClient(device)

	if device.ID != nil {
		log.Info("WhatsApp device loaded", "jid", device.ID.ToNonAD().String())
	} else {
		log.Info("No paired device, pairing code will be issued on connect")
	}
	return c, nil
}

func (c *WhatsAppClient) newWhatsmeowClient(device *store.Device) *whatsmeow.Client {
	cli := whatsmeow.NewClient(device, c.waLogger.Sub("Client"))
	if c.proxy != "" {
		if err := cli.SetProxyAddress(c.proxy); err != nil {
			c.logger.Error("SetProxyAddress failed", "error", err)
		}
	}
	cli.AddEventHandler(func(evt interface{}) {
		c.handleEvent(cli, evt)
	})
	return cli
}

func (c *WhatsAppClient) current() *whatsmeow.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client
}

// Connect подключает сессию; непривязанное устройство уходит в цикл выдачи QR
func (c *WhatsAppClient) Connect(ctx context.Context) error {
	cli := c.current()
	if cli.Store.ID == nil {
		return c.startPairing(cli)
	}
	if err := cli.Connect(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	return nil
}

// Listen возвращает канал событий сессии. Канал закрывается в Close.
func (c *WhatsAppClient) Listen() (<-chan domain.Event, error) {
	return c.events, nil
}

func (c *WhatsAppClient) SendMessage(ctx context.Context, chatID, text string) error {
	jid, err := types.ParseJID(chatID)
	if err != nil {
		return fmt.Errorf("parse chat id %q: %w", chatID, err)
	}

	cli := c.current()
	if !cli.IsLoggedIn() {
		return ErrNotLoggedIn
	}

	resp, err := cli.SendMessage(ctx, jid, &waE2E.Message{
		Conversation: proto.String(text),
	})
	if err != nil {
		c.logger.Error("SendMessage failed", "to", chatID, "error", err)
		return fmt.Errorf("send message: %w", err)
	}

	c.logger.Debug("SendMessage ok", "to", chatID, "msg_id", resp.ID, "ts", resp.Timestamp)
	return nil
}

// Logout отвязывает устройство и заводит новое, чтобы снова появился QR
func (c *WhatsAppClient) Logout(ctx context.Context) error {
	cli := c.current()
	if cli.Store.ID == nil {
		return ErrNotLoggedIn
	}
	if err := cli.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	c.logger.Info("WhatsApp session logged out")

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.reprovision(cli, "logout")
	}()
	return nil
}

func (c *WhatsAppClient) Info(ctx context.Context) (*domain.AccountInfo, error) {
	cli := c.current()
	if cli.Store.ID == nil {
		return nil, ErrNotLoggedIn
	}
	return &domain.AccountInfo{
		PushName: cli.Store.PushName,
		WID:      cli.Store.ID.ToNonAD().String(),
		Platform: cli.Store.Platform,
	}, nil
}

// Close отключает клиента, дожидается фоновых горутин и закрывает хранилище
func (c *WhatsAppClient) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		c.current().Disconnect()
		c.wg.Wait()

		c.emitMu.Lock()
		c.closed = true
		close(c.events)
		c.emitMu.Unlock()

		if err := c.db.Close(); err != nil {
			c.logger.Error("close session db", "error", err)
		}
		c.logger.Info("WhatsApp client closed")
	})
}

func (c *WhatsAppClient) emit(evt domain.Event) {
	c.emitMu.RLock()
	defer c.emitMu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.events <- evt:
	case <-c.ctx.Done():
	}
}

func (c *WhatsAppClient) handleEvent(cli *whatsmeow.Client, evt interface{}) {
	// события от клиента, который уже заменён после logout, игнорируем
	if c.ctx.Err() != nil || c.current() != cli {
		return
	}
	if out, ok := translateEvent(evt); ok {
		if out.Kind == domain.EventMessage && cli.Store.LIDs != nil {
			if err := resolveSenderPhone(c.ctx, cli.Store.LIDs, out.Message); err != nil {
				c.logger.Debug("LID sender not resolved", "error", err)
			}
		}
		c.emit(out)
	}
	if lo, ok := evt.(*events.LoggedOut); ok {
		c.logger.Warn("Session logged out remotely", "reason", fmt.Sprint(lo.Reason), "on_connect", lo.OnConnect)
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.reprovision(cli, "logged out remotely")
		}()
	}
}

func (c *WhatsAppClient) startPairing(cli *whatsmeow.Client) error {
	qrChan, err := cli.GetQRChannel(c.ctx)
	if err != nil {
		return fmt.Errorf("get qr channel: %w", err)
	}
	if err := cli.Connect(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.pairingLoop(cli, qrChan)
	}()
	return nil
}

func (c *WhatsAppClient) pairingLoop(cli *whatsmeow.Client, qrChan <-chan whatsmeow.QRChannelItem) {
	expired := false
	for item := range qrChan {
		switch item.Event {
		case whatsmeow.QRChannelEventCode:
			img, err := EncodeQR(item.Code)
			if err != nil {
				c.logger.Error("EncodeQR failed", "error", err)
				continue
			}
			c.logger.Info("Pairing code issued", "valid_for", item.Timeout)
			c.emit(domain.Event{Kind: domain.EventPairingCode, Code: img})
		case whatsmeow.QRChannelSuccess.Event:
			c.logger.Info("Pairing succeeded")
		case whatsmeow.QRChannelTimeout.Event:
			c.logger.Warn("Pairing codes expired, restarting pairing")
			expired = true
		case whatsmeow.QRChannelEventError:
			reason := "pairing error"
			if item.Error != nil {
				reason = item.Error.Error()
			}
			c.logger.Error("Pairing failed", "error", reason)
			c.emit(domain.Event{Kind: domain.EventAuthFailure, Reason: reason})
		default:
			c.logger.Info("Pairing event", "event", item.Event)
		}
	}

	if !expired {
		return
	}
	c.emit(domain.Event{Kind: domain.EventDisconnected, Reason: "pairing timeout"})
	cli.Disconnect()

	select {
	case <-c.ctx.Done():
		return
	case <-time.After(pairingBackoff):
	}
	if c.current() != cli {
		return
	}
	if err := c.startPairing(cli); err != nil {
		c.logger.Error("restart pairing failed", "error", err)
	}
}

// reprovision заменяет клиента на новый с чистым устройством и запускает привязку
func (c *WhatsAppClient) reprovision(old *whatsmeow.Client, reason string) {
	if c.ctx.Err() != nil {
		return
	}

	c.mu.Lock()
	if c.client != old {
		c.mu.Unlock()
		return
	}
	c.client = c.newWhatsmeowClient(c.container.NewDevice())
	fresh := c.client
	c.mu.Unlock()

	old.Disconnect()
	c.emit(domain.Event{Kind: domain.EventDisconnected, Reason: reason})

	if err := c.startPairing(fresh); err != nil {
		c.logger.Error("start pairing after logout failed", "error", err)
	}
}
