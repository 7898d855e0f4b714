package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "roomcontrol/backend/libs/config"
)

// Config defines control service configuration.
type Config struct {
	LogLevel  string          `yaml:"logLevel" env:"LOG_LEVEL"`
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Control   ControlConfig   `yaml:"control"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Audit     AuditConfig     `yaml:"audit"`
	WebSocket WebSocketConfig `yaml:"websocket"`
}

type HTTPConfig struct {
	Port string `yaml:"port" env:"CONTROL_HTTP_PORT"`
}

type DatabaseConfig struct {
	DSN          string `yaml:"dsn" env:"CONTROL_POSTGRES_DSN"`
	MaxOpenConns int    `yaml:"maxOpenConns" env:"CONTROL_POSTGRES_MAX_OPEN_CONNS"`
}

type RedisConfig struct {
	Addr             string `yaml:"addr" env:"CONTROL_REDIS_ADDR"`
	Password         string `yaml:"password" env:"CONTROL_REDIS_PASSWORD"`
	DB               int    `yaml:"db" env:"CONTROL_REDIS_DB"`
	StatusTTLSeconds int    `yaml:"statusTTLSeconds" env:"CONTROL_REDIS_STATUS_TTL"`
}

type MQTTConfig struct {
	Broker           string `yaml:"broker" env:"CONTROL_MQTT_BROKER"`
	ClientID         string `yaml:"clientId" env:"CONTROL_MQTT_CLIENT_ID"`
	Username         string `yaml:"username" env:"CONTROL_MQTT_USERNAME"`
	Password         string `yaml:"password" env:"CONTROL_MQTT_PASSWORD"`
	QoS              int    `yaml:"qos" env:"CONTROL_MQTT_QOS"`
	PublishTimeoutMs int    `yaml:"publishTimeoutMs" env:"CONTROL_MQTT_PUBLISH_TIMEOUT_MS"`
	SubscribeTopic   string `yaml:"subscribeTopic" env:"CONTROL_MQTT_SUBSCRIBE_TOPIC"`
}

type ControlConfig struct {
	IntervalSeconds     int  `yaml:"intervalSeconds" env:"CONTROL_INTERVAL_SECONDS"`
	FreshnessSeconds    int  `yaml:"freshnessSeconds" env:"CONTROL_FRESHNESS_SECONDS"`
	CycleTimeoutSeconds int  `yaml:"cycleTimeoutSeconds" env:"CONTROL_CYCLE_TIMEOUT_SECONDS"`
	DistributedLock     bool `yaml:"distributedLock" env:"CONTROL_DISTRIBUTED_LOCK"`
}

type IngestConfig struct {
	StoreReadings bool `yaml:"storeReadings" env:"CONTROL_INGEST_STORE_READINGS"`
	QueueSize     int  `yaml:"queueSize" env:"CONTROL_INGEST_QUEUE_SIZE"`
}

type AuditConfig struct {
	Enabled bool `yaml:"enabled" env:"CONTROL_AUDIT_ENABLED"`
}

type WebSocketConfig struct {
	PingIntervalSeconds int `yaml:"pingIntervalSeconds" env:"CONTROL_WS_PING_INTERVAL"`
	WriteTimeoutSeconds int `yaml:"writeTimeoutSeconds" env:"CONTROL_WS_WRITE_TIMEOUT"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		HTTP:  HTTPConfig{Port: "8085"},
		Redis: RedisConfig{Addr: "localhost:6379", StatusTTLSeconds: 86400},
		MQTT: MQTTConfig{
			Broker:           "tcp://localhost:1883",
			ClientID:         "control-service",
			PublishTimeoutMs: 5000,
			SubscribeTopic:   "room/+/+/+",
		},
		Control: ControlConfig{
			IntervalSeconds:     60,
			FreshnessSeconds:    60,
			CycleTimeoutSeconds: 45,
		},
		Ingest:    IngestConfig{StoreReadings: true, QueueSize: 256},
		WebSocket: WebSocketConfig{PingIntervalSeconds: 30, WriteTimeoutSeconds: 10},
	}
}

// Load reads configuration via shared helper.
func Load() (*Config, error) {
	cfg := Default()
	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("config: database dsn required")
	}
	if strings.TrimSpace(c.Redis.Addr) == "" {
		return errors.New("config: redis addr required")
	}
	if strings.TrimSpace(c.MQTT.Broker) == "" {
		return errors.New("config: mqtt broker required")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		return fmt.Errorf("config: mqtt qos must be 0, 1 or 2, got %d", c.MQTT.QoS)
	}
	return nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8085"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// QoS returns the MQTT quality of service level.
func (c *Config) QoS() byte {
	return byte(c.MQTT.QoS)
}

// StatusTTL returns the device status cache ttl.
func (c *Config) StatusTTL() time.Duration {
	return seconds(c.Redis.StatusTTLSeconds, 24*time.Hour)
}

// PublishTimeout bounds a single command publish.
func (c *Config) PublishTimeout() time.Duration {
	if c.MQTT.PublishTimeoutMs <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.MQTT.PublishTimeoutMs) * time.Millisecond
}

// Interval is the control cycle period.
func (c *Config) Interval() time.Duration {
	return seconds(c.Control.IntervalSeconds, time.Minute)
}

// Freshness is the window a reading must fall in to be aggregated.
func (c *Config) Freshness() time.Duration {
	return seconds(c.Control.FreshnessSeconds, time.Minute)
}

// CycleTimeout bounds one control cycle.
func (c *Config) CycleTimeout() time.Duration {
	return seconds(c.Control.CycleTimeoutSeconds, 45*time.Second)
}

// PingInterval is how often websocket subscribers are pinged.
func (c *Config) PingInterval() time.Duration {
	return seconds(c.WebSocket.PingIntervalSeconds, 30*time.Second)
}

// WriteTimeout bounds a websocket write.
func (c *Config) WriteTimeout() time.Duration {
	return seconds(c.WebSocket.WriteTimeoutSeconds, 10*time.Second)
}

func seconds(value int, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return time.Duration(value) * time.Second
}
