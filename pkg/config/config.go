package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"pecron-mqtt-bridge/pkg/errors"
	"pecron-mqtt-bridge/pkg/logger"
	"pecron-mqtt-bridge/pkg/pecron"
)

// Defaults and limits
const (
	DefaultRefreshInterval = 600 // seconds (10 minutes)
	MinRefreshInterval     = 60
	MaxRefreshInterval     = 3600
	DefaultRegion          = pecron.RegionUS
	DefaultMQTTPort        = 1883
	DefaultDiscoveryPrefix = "homeassistant"
	DefaultStatusTopic     = "pecron-bridge/status"
	DefaultNoticeTopic     = "pecron-bridge/notice"
	DefaultClientID        = "pecron_bridge"
)

// Config represents the complete bridge configuration
type Config struct {
	Accounts      []AccountConfig      `yaml:"accounts"`
	MQTT          MQTTConfig           `yaml:"mqtt"`
	HomeAssistant HAConfig             `yaml:"homeassistant"`
	Metrics       MetricsConfig        `yaml:"metrics"`
	Logging       logger.LoggingConfig `yaml:"logging"`
}

// AccountConfig holds the Pecron cloud credentials for one polled account
type AccountConfig struct {
	Email           string `yaml:"email"`
	Password        string `yaml:"password"`
	Region          string `yaml:"region"`           // US, EU or CN
	RefreshInterval int    `yaml:"refresh_interval"` // seconds, 60..3600
}

// MQTTConfig contains MQTT broker settings
type MQTTConfig struct {
	Broker     string `yaml:"broker"`
	Port       int    `yaml:"port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	ClientID   string `yaml:"client_id"`
	RetryDelay int    `yaml:"retry_delay"` // milliseconds between connection retries
	KeepAlive  int    `yaml:"keep_alive"`  // seconds
}

// HAConfig contains Home Assistant MQTT Discovery settings
type HAConfig struct {
	DiscoveryPrefix string `yaml:"discovery_prefix"` // e.g. "homeassistant"
	StatusTopic     string `yaml:"status_topic"`     // bridge availability topic
	NoticeTopic     string `yaml:"notice_topic"`     // persistent notices topic prefix
}

// MetricsConfig contains the Prometheus/health endpoint settings
type MetricsConfig struct {
	Listen string `yaml:"listen"` // e.g. ":9105"; empty disables the endpoint
}

// LoadConfig reads, parses and validates the yaml configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("read", err, "")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.NewConfigError("parse", err, "")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate applies defaults and rejects invalid settings
func (c *Config) Validate() error {
	if len(c.Accounts) == 0 {
		return errors.NewConfigError("validate", fmt.Errorf("at least one account is required"), "accounts")
	}

	for i := range c.Accounts {
		if err := c.Accounts[i].validate(); err != nil {
			return err
		}
	}

	if c.MQTT.Broker == "" {
		return errors.NewConfigError("validate", fmt.Errorf("broker address is required"), "mqtt.broker")
	}
	if c.MQTT.Port == 0 {
		c.MQTT.Port = DefaultMQTTPort
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = DefaultClientID
	}

	if c.HomeAssistant.DiscoveryPrefix == "" {
		c.HomeAssistant.DiscoveryPrefix = DefaultDiscoveryPrefix
	}
	if c.HomeAssistant.StatusTopic == "" {
		c.HomeAssistant.StatusTopic = DefaultStatusTopic
	}
	if c.HomeAssistant.NoticeTopic == "" {
		c.HomeAssistant.NoticeTopic = DefaultNoticeTopic
	}

	return nil
}

func (a *AccountConfig) validate() error {
	if a.Email == "" {
		return errors.NewConfigError("validate", fmt.Errorf("email is required"), "accounts.email")
	}
	if a.Password == "" {
		return errors.NewConfigError("validate", fmt.Errorf("password is required"), "accounts.password")
	}

	if a.Region == "" {
		a.Region = DefaultRegion
	}
	switch a.Region {
	case pecron.RegionUS, pecron.RegionEU, pecron.RegionCN:
	default:
		return errors.NewConfigError("validate",
			fmt.Errorf("region must be one of US, EU, CN (got %q)", a.Region), "accounts.region")
	}

	if a.RefreshInterval == 0 {
		a.RefreshInterval = DefaultRefreshInterval
		logger.LogDebug("Account %s using default refresh interval of %ds", a.Email, DefaultRefreshInterval)
	}
	if a.RefreshInterval < MinRefreshInterval || a.RefreshInterval > MaxRefreshInterval {
		return errors.NewConfigError("validate",
			fmt.Errorf("refresh_interval must be between %d and %d seconds (got %d)",
				MinRefreshInterval, MaxRefreshInterval, a.RefreshInterval),
			"accounts.refresh_interval")
	}
	return nil
}
