// Broker session and fire-and-forget publisher over paho.golang.
package mqtt

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"
)

// Config carries the broker connection settings.
type Config struct {
	Host      string
	Port      int
	Topic     string
	ClientID  string
	Username  string
	Password  string
	KeepAlive uint16
	// EstablishTimeout bounds one session-establishment attempt.
	EstablishTimeout time.Duration
}

const (
	defaultEstablishTimeout = 15 * time.Second
	publishTimeout          = 10 * time.Second
)

// Client maintains the broker session and publishes readings. The
// session flag has two writers: the connection status callbacks (which
// run on paho's goroutines) and Establish, which clears it before a
// reconnect attempt. The main loop is the sole reader; access is
// word-atomic, no lock. A late status update from a previous session
// costs at most one extra retry tick.
type Client struct {
	cfg       Config
	logger    *slog.Logger
	cm        *autopaho.ConnectionManager
	sessionUp atomic.Bool
}

// New creates a Client but does not connect; the supervisor drives
// Establish from the tick loop.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.EstablishTimeout == 0 {
		cfg.EstablishTimeout = defaultEstablishTimeout
	}
	return &Client{cfg: cfg, logger: logger}
}

// Up reads the latest session status. Never cached by callers; the
// supervisor consults it fresh at the start of every tick.
func (c *Client) Up() bool {
	return c.sessionUp.Load()
}

// Establish brings up the broker session, clearing the status flag
// first so a stale verdict from the previous session cannot satisfy
// this tick's health check. It blocks until the session is up or the
// establishment timeout expires.
func (c *Client) Establish(ctx context.Context) error {
	c.sessionUp.Store(false)

	if c.cm == nil {
		cm, err := autopaho.NewConnection(ctx, c.clientConfig())
		if err != nil {
			return fmt.Errorf("mqtt connect: %w", err)
		}
		c.cm = cm
	}

	waitCtx, cancel := context.WithTimeout(ctx, c.cfg.EstablishTimeout)
	defer cancel()
	if err := c.cm.AwaitConnection(waitCtx); err != nil {
		return fmt.Errorf("mqtt session: %w", err)
	}
	c.sessionUp.Store(true)
	return nil
}

// Publish submits one reading to the fixed topic, QoS 0, no retry, and
// returns without awaiting the broker. The completion outcome is
// logged when it arrives; a lost reading is acceptable.
func (c *Client) Publish(ctx context.Context, payload []byte) {
	if c.cm == nil {
		c.logger.Warn("publish skipped, session was never established")
		return
	}
	go func() {
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if _, err := c.cm.Publish(pubCtx, &paho.Publish{
			Topic:   c.cfg.Topic,
			Payload: payload,
			QoS:     0,
		}); err != nil {
			c.logger.Warn("publish failed", "topic", c.cfg.Topic, "err", err)
			return
		}
		c.logger.Debug("publish complete", "topic", c.cfg.Topic, "bytes", len(payload))
	}()
}

// Stop publishes the offline availability marker and closes the
// connection. Only used on orderly shutdown (bench runs, SIGTERM);
// reboots never pass through here.
func (c *Client) Stop(ctx context.Context) error {
	if c.cm == nil {
		return nil
	}
	_, _ = c.cm.Publish(ctx, &paho.Publish{
		Topic:   c.availabilityTopic(),
		Payload: []byte("offline"),
		QoS:     1,
		Retain:  true,
	})
	return c.cm.Disconnect(ctx)
}

func (c *Client) availabilityTopic() string {
	return c.cfg.Topic + "/status"
}

func (c *Client) clientConfig() autopaho.ClientConfig {
	broker := &url.URL{
		Scheme: "mqtt",
		Host:   net.JoinHostPort(c.cfg.Host, strconv.Itoa(c.cfg.Port)),
	}
	return autopaho.ClientConfig{
		ServerUrls:      []*url.URL{broker},
		KeepAlive:       c.cfg.KeepAlive,
		ConnectUsername: c.cfg.Username,
		ConnectPassword: []byte(c.cfg.Password),
		WillMessage: &paho.WillMessage{
			Topic:   c.availabilityTopic(),
			Payload: []byte("offline"),
			QoS:     1,
			Retain:  true,
		},
		OnConnectionUp: func(cm *autopaho.ConnectionManager, _ *paho.Connack) {
			c.sessionUp.Store(true)
			c.logger.Info("mqtt session established", "broker", broker.Host)
			if _, err := cm.Publish(context.Background(), &paho.Publish{
				Topic:   c.availabilityTopic(),
				Payload: []byte("online"),
				QoS:     1,
				Retain:  true,
			}); err != nil {
				c.logger.Warn("availability publish failed", "err", err)
			}
		},
		OnConnectError: func(err error) {
			c.sessionUp.Store(false)
			c.logger.Warn("mqtt connection error", "err", err)
		},
		ClientConfig: paho.ClientConfig{
			ClientID: c.cfg.ClientID,
			OnClientError: func(err error) {
				c.sessionUp.Store(false)
				c.logger.Warn("mqtt client error", "err", err)
			},
			OnServerDisconnect: func(d *paho.Disconnect) {
				c.sessionUp.Store(false)
				c.logger.Warn("mqtt server disconnect", "reason_code", d.ReasonCode)
			},
		},
	}
}
