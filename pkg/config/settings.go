package config

import "time"

// Bridge device constants surfaced in Home Assistant discovery payloads
const (
	BridgeManufacturer = "Pecron"
)

// MQTTSettings contains only MQTT-specific configuration.
// Used for dependency injection to avoid coupling to full Config.
type MQTTSettings struct {
	Broker     string
	Port       int
	Username   string
	Password   string
	ClientID   string
	RetryDelay int
	KeepAlive  int
}

// NewMQTTSettings extracts MQTT settings from full config
func NewMQTTSettings(cfg *Config) MQTTSettings {
	return MQTTSettings{
		Broker:     cfg.MQTT.Broker,
		Port:       cfg.MQTT.Port,
		Username:   cfg.MQTT.Username,
		Password:   cfg.MQTT.Password,
		ClientID:   cfg.MQTT.ClientID,
		RetryDelay: cfg.MQTT.RetryDelay,
		KeepAlive:  cfg.MQTT.KeepAlive,
	}
}

// AccountSettings contains only per-account polling configuration.
// Used for dependency injection to avoid coupling to full Config.
type AccountSettings struct {
	Email           string
	Password        string
	Region          string
	RefreshInterval time.Duration
}

// NewAccountSettings extracts one account's settings from full config
func NewAccountSettings(account AccountConfig) AccountSettings {
	return AccountSettings{
		Email:           account.Email,
		Password:        account.Password,
		Region:          account.Region,
		RefreshInterval: time.Duration(account.RefreshInterval) * time.Second,
	}
}
