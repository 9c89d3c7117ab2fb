// Package whatsapp connects the bot to WhatsApp through whatsmeow: it keeps
// the linked-device session, turns incoming chat messages into
// rentbot.InboundMessage values and sends replies and receipt documents.
package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/mdp/qrterminal/v3"
	"github.com/rentbot/backend/internal/application/rentbot"
	"github.com/rentbot/backend/internal/infrastructure/config"
	"github.com/rentbot/backend/internal/infrastructure/logger"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types/events"
	"go.uber.org/zap"
)

const (
	DialectSQLite   = "sqlite3"
	DialectPostgres = "postgres"

	DefaultReconnectDelay = 3 * time.Second
)

// ErrLoggedOut is returned when the linked device was removed from the phone
var ErrLoggedOut = errors.New("whatsapp session logged out; delete the session store and pair again")

// Handler receives inbound messages
type Handler interface {
	HandleMessage(ctx context.Context, msg rentbot.InboundMessage)
}

// Client is the WhatsApp channel adapter
type Client struct {
	*Sender

	wa        *whatsmeow.Client
	container *sqlstore.Container
	logger    *zap.Logger
	qrOut     io.Writer
	reconnect *reconnector

	handler Handler
	ctx     context.Context
	cancel  context.CancelFunc

	inboundMu sync.Mutex
	closing   bool
	inbound   sync.WaitGroup

	connected atomic.Bool
	loggedOut atomic.Bool
	done      chan struct{}
	doneOnce  sync.Once
	closeOnce sync.Once
}

// Option configures a Client
type Option func(*Client)

// WithQRWriter sets where the pairing QR code is printed (stdout by default)
func WithQRWriter(w io.Writer) Option {
	return func(c *Client) { c.qrOut = w }
}

// SessionAddress returns the database/sql address of the session store
func SessionAddress(cfg config.ChannelConfig) (string, error) {
	switch cfg.SessionDialect {
	case "", DialectSQLite:
		if cfg.SessionPath == "" {
			return "", errors.New("session path is required")
		}
		return fmt.Sprintf("file:%s?_foreign_keys=on", cfg.SessionPath), nil
	case DialectPostgres:
		if cfg.SessionPath == "" {
			return "", errors.New("session DSN is required")
		}
		return cfg.SessionPath, nil
	default:
		return "", fmt.Errorf("unsupported session dialect %q", cfg.SessionDialect)
	}
}

// New opens the session store and prepares a client. It does not connect.
func New(ctx context.Context, cfg config.ChannelConfig, zapLogger *zap.Logger, opts ...Option) (*Client, error) {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	dialect := cfg.SessionDialect
	if dialect == "" {
		dialect = DialectSQLite
	}
	address, err := SessionAddress(cfg)
	if err != nil {
		return nil, err
	}
	if dialect == DialectSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.SessionPath), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create session directory: %w", err)
		}
	}

	container, err := sqlstore.New(ctx, dialect, address, logger.NewWhatsmeowLogger(zapLogger, "whatsmeow.store"))
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		_ = container.Close()
		return nil, fmt.Errorf("failed to load device: %w", err)
	}

	wa := whatsmeow.NewClient(device, logger.NewWhatsmeowLogger(zapLogger, "whatsmeow.client"))
	wa.EnableAutoReconnect = false

	delay := cfg.ReconnectDelay
	if delay <= 0 {
		delay = DefaultReconnectDelay
	}

	c := &Client{
		Sender:    &Sender{wa: wa},
		wa:        wa,
		container: container,
		logger:    zapLogger.Named("whatsapp"),
		qrOut:     os.Stdout,
		done:      make(chan struct{}),
	}
	c.reconnect = newReconnector(delay, wa.Connect, c.logger)
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Start registers handler and connects. On a fresh session it prints a QR
// code to pair with.
func (c *Client) Start(ctx context.Context, handler Handler) error {
	c.handler = handler
	c.ctx, c.cancel = context.WithCancel(context.WithoutCancel(ctx))
	c.wa.AddEventHandler(c.handleEvent)

	if c.wa.Store.ID == nil {
		qrChan, err := c.wa.GetQRChannel(ctx)
		if err != nil {
			return fmt.Errorf("failed to get pairing QR channel: %w", err)
		}
		if err := c.wa.Connect(); err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		go c.printPairing(qrChan)
		return nil
	}

	if err := c.wa.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	return nil
}

func (c *Client) printPairing(qrChan <-chan whatsmeow.QRChannelItem) {
	for item := range qrChan {
		switch item.Event {
		case whatsmeow.QRChannelEventCode:
			c.logger.Info("Scan the QR code with WhatsApp (Linked devices)")
			qrterminal.GenerateHalfBlock(item.Code, qrterminal.L, c.qrOut)
		case whatsmeow.QRChannelSuccess.Event:
			c.logger.Info("Device paired")
		default:
			c.logger.Info("Pairing event", zap.String("event", item.Event), zap.Error(item.Error))
		}
	}
}

func (c *Client) handleEvent(evt any) {
	switch e := evt.(type) {
	case *events.Message:
		msg, ok := toInbound(e)
		if !ok || c.handler == nil {
			return
		}
		c.dispatch(msg)

	case *events.Connected:
		c.connected.Store(true)
		c.logger.Info("Connected to WhatsApp")

	case *events.Disconnected:
		c.connected.Store(false)
		c.logger.Warn("Disconnected from WhatsApp")
		c.reconnect.schedule()

	case *events.StreamReplaced:
		c.connected.Store(false)
		c.logger.Warn("Session opened elsewhere; not reconnecting")
		c.reconnect.stop()

	case *events.LoggedOut:
		c.connected.Store(false)
		c.loggedOut.Store(true)
		c.reconnect.stop()
		c.logger.Error(ErrLoggedOut.Error(), zap.String("reason", e.Reason.String()))
		c.doneOnce.Do(func() { close(c.done) })
	}
}

// dispatch hands msg to the handler on its own goroutine
func (c *Client) dispatch(msg rentbot.InboundMessage) {
	c.inboundMu.Lock()
	defer c.inboundMu.Unlock()
	if c.closing {
		c.logger.Warn("Shutting down, message dropped", zap.String("message_id", msg.ID))
		return
	}
	c.inbound.Add(1)
	go func() {
		defer c.inbound.Done()
		c.handler.HandleMessage(c.ctx, msg)
	}()
}

// IsConnected reports whether the socket is up and the session logged in
func (c *Client) IsConnected() bool {
	return c.connected.Load() && c.wa.IsLoggedIn()
}

// LoggedOut reports whether the phone removed this device
func (c *Client) LoggedOut() bool {
	return c.loggedOut.Load()
}

// Done is closed when the phone unlinks this session
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Logout unlinks the device and clears the session
func (c *Client) Logout(ctx context.Context) error {
	if c.wa.Store.ID == nil {
		return errors.New("no paired session to log out")
	}
	if !c.wa.IsConnected() {
		if err := c.wa.Connect(); err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
	}
	if err := c.wa.Logout(ctx); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	return nil
}

// Close waits for in-flight messages, disconnects and closes the session
// store. It is safe to call more than once.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.reconnect.stop()
		c.inboundMu.Lock()
		c.closing = true
		c.inboundMu.Unlock()
		c.inbound.Wait()
		c.wa.Disconnect()
		if c.cancel != nil {
			c.cancel()
		}
		err = c.container.Close()
	})
	return err
}
