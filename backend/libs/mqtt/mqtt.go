package mqtt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultRetryInterval  = 5 * time.Second
	defaultKeepAlive      = 30 * time.Second
	disconnectQuiesceMs   = 250
)

// Options configures NewClient.
type Options struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	ConnectTimeout time.Duration
	// OnConnect runs on the first connection and after every automatic reconnect.
	// Subscriptions belong here so they survive broker restarts.
	OnConnect func(client paho.Client)
}

// NewClient builds a paho client with auto-reconnect and starts connecting. If the broker is
// not reachable within ConnectTimeout the client is still returned and keeps retrying in the
// background; only configuration errors are fatal.
func NewClient(opts Options, logger *zap.Logger) (paho.Client, error) {
	broker := strings.TrimSpace(opts.Broker)
	if broker == "" {
		return nil, errors.New("mqtt: broker is empty")
	}
	if strings.TrimSpace(opts.ClientID) == "" {
		return nil, errors.New("mqtt: client id is empty")
	}
	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	clientOpts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(opts.ClientID).
		SetUsername(opts.Username).
		SetPassword(opts.Password).
		SetKeepAlive(defaultKeepAlive).
		SetCleanSession(true).
		SetOrderMatters(false).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(defaultRetryInterval).
		SetConnectTimeout(timeout)

	clientOpts.SetOnConnectHandler(func(c paho.Client) {
		logger.Info("mqtt connected", zap.String("broker", broker))
		if opts.OnConnect != nil {
			opts.OnConnect(c)
		}
	})
	clientOpts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		logger.Warn("mqtt connection lost", zap.String("broker", broker), zap.Error(err))
	})
	clientOpts.SetReconnectingHandler(func(_ paho.Client, _ *paho.ClientOptions) {
		logger.Info("mqtt reconnecting", zap.String("broker", broker))
	})

	client := paho.NewClient(clientOpts)
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		logger.Warn("mqtt broker not reachable yet, retrying in background",
			zap.String("broker", broker), zap.Duration("timeout", timeout))
		return client, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt: connect %s: %w", broker, err)
	}
	return client, nil
}

// Publish sends payload and waits at most timeout for the client to hand it off.
func Publish(client paho.Client, topic string, qos byte, payload []byte, timeout time.Duration) error {
	if !client.IsConnectionOpen() {
		return fmt.Errorf("mqtt: publish %s: not connected", topic)
	}
	token := client.Publish(topic, qos, false, payload)
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("mqtt: publish %s: timed out after %s", topic, timeout)
	}
	return token.Error()
}

// Subscribe registers handler for filter and waits at most timeout for the broker ack.
func Subscribe(client paho.Client, filter string, qos byte, handler paho.MessageHandler, timeout time.Duration) error {
	token := client.Subscribe(filter, qos, handler)
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("mqtt: subscribe %s: timed out after %s", filter, timeout)
	}
	return token.Error()
}

// Disconnect closes the client, giving in-flight work a short quiesce period.
func Disconnect(client paho.Client) {
	if client != nil && client.IsConnected() {
		client.Disconnect(disconnectQuiesceMs)
	}
}
