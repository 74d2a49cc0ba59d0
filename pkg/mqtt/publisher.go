package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"pecron-mqtt-bridge/pkg/config"
	"pecron-mqtt-bridge/pkg/logger"
	"pecron-mqtt-bridge/pkg/notify"
)

// Publisher handles all MQTT traffic towards Home Assistant: discovery
// configs, point states, bridge availability and persistent notices
type Publisher struct {
	client  paho.Client
	haCfg   *config.HAConfig
	mqttCfg config.MQTTSettings
	factory *TopicFactory
}

// NewPublisher creates a publisher for Home Assistant
func NewPublisher(mqttCfg config.MQTTSettings, haCfg *config.HAConfig) *Publisher {
	opts := paho.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", mqttCfg.Broker, mqttCfg.Port))
	opts.SetClientID(mqttCfg.ClientID + "_" + uuid.NewString()[:8])
	opts.SetUsername(mqttCfg.Username)
	opts.SetPassword(mqttCfg.Password)
	opts.SetAutoReconnect(true)

	keepAlive := mqttCfg.KeepAlive
	if keepAlive == 0 {
		keepAlive = 60
	}
	opts.SetKeepAlive(time.Duration(keepAlive) * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	// Last Will marks the bridge offline when the connection drops
	opts.SetWill(haCfg.StatusTopic, "offline", 1, true)

	publisher := &Publisher{
		haCfg:   haCfg,
		mqttCfg: mqttCfg,
		factory: NewTopicFactory(haCfg.DiscoveryPrefix),
	}

	opts.SetOnConnectHandler(func(client paho.Client) {
		logger.LogInfo("Publisher connected to MQTT broker")
		if token := client.Publish(haCfg.StatusTopic, 1, true, "online"); token.Wait() && token.Error() != nil {
			logger.LogWarn("Error publishing online status on connect: %v", token.Error())
		}
	})
	opts.SetConnectionLostHandler(func(client paho.Client, err error) {
		logger.LogError("Publisher disconnected: %v", err)
	})

	publisher.client = paho.NewClient(opts)
	return publisher
}

// Connect connects to the broker, retrying until ctx is cancelled
func (p *Publisher) Connect(ctx context.Context) error {
	retryDelay := time.Duration(p.mqttCfg.RetryDelay) * time.Millisecond
	if retryDelay == 0 {
		retryDelay = 5 * time.Second
	}

	attempt := 1
	for {
		logger.LogDebug("Connecting publisher to MQTT broker (attempt %d)...", attempt)
		if token := p.client.Connect(); token.Wait() && token.Error() != nil {
			logger.LogError("Publisher connection failed (attempt %d): %v", attempt, token.Error())
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay):
			}
			attempt++
			continue
		}
		return nil
	}
}

// Disconnect closes the broker connection
func (p *Publisher) Disconnect() {
	if p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}

// IsConnected reports whether the broker connection is up
func (p *Publisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Factory exposes the topic factory for discovery building
func (p *Publisher) Factory() *TopicFactory {
	return p.factory
}

// StatusTopic returns the bridge availability topic
func (p *Publisher) StatusTopic() string {
	return p.haCfg.StatusTopic
}

// PublishStatusOnline marks the bridge available
func (p *Publisher) PublishStatusOnline(ctx context.Context) error {
	return p.publishRaw(p.haCfg.StatusTopic, 1, true, "online")
}

// PublishStatusOffline marks the bridge unavailable
func (p *Publisher) PublishStatusOffline(ctx context.Context) error {
	return p.publishRaw(p.haCfg.StatusTopic, 1, true, "offline")
}

// PublishDiscovery publishes a retained discovery config payload
func (p *Publisher) PublishDiscovery(ctx context.Context, topic string, cfg interface{}) error {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error serializing discovery config: %w", err)
	}
	logger.LogDebug("Publishing discovery config: %s", topic)
	return p.publishRaw(topic, 0, true, payload)
}

// SensorState is the wire payload for one measurement point. Value is nil
// when the point is not available this cycle.
type SensorState struct {
	Value     *float64  `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// PublishSensorState publishes a measurement state (nil value means
// not available)
func (p *Publisher) PublishSensorState(ctx context.Context, topic string, value *float64) error {
	payload, err := json.Marshal(SensorState{Value: value, Timestamp: time.Now()})
	if err != nil {
		return fmt.Errorf("error serializing sensor state: %w", err)
	}
	return p.publishRaw(topic, 0, false, payload)
}

// PublishBoolState publishes an ON/OFF state for binary sensors and switches
func (p *Publisher) PublishBoolState(ctx context.Context, topic string, on bool) error {
	payload := PayloadOff
	if on {
		payload = PayloadOn
	}
	return p.publishRaw(topic, 0, false, payload)
}

// PublishNotice publishes a retained persistent notice (notify.Sink)
func (p *Publisher) PublishNotice(ctx context.Context, notice notify.Notice) error {
	payload, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("error serializing notice: %w", err)
	}
	topic := BuildNoticeTopic(p.haCfg.NoticeTopic, notice.ID)
	return p.publishRaw(topic, 1, true, payload)
}

// ClearNotice removes a retained notice (notify.Sink)
func (p *Publisher) ClearNotice(ctx context.Context, id string) error {
	topic := BuildNoticeTopic(p.haCfg.NoticeTopic, id)
	// Empty retained payload deletes the topic on the broker
	return p.publishRaw(topic, 1, true, []byte{})
}

// Subscribe registers a handler for a command topic
func (p *Publisher) Subscribe(topic string, handler func(payload []byte)) error {
	token := p.client.Subscribe(topic, 1, func(client paho.Client, msg paho.Message) {
		handler(msg.Payload())
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("error subscribing to %s: %w", topic, token.Error())
	}
	logger.LogDebug("Subscribed to command topic: %s", topic)
	return nil
}

func (p *Publisher) publishRaw(topic string, qos byte, retained bool, payload interface{}) error {
	if !p.client.IsConnected() {
		return fmt.Errorf("client is not connected")
	}
	token := p.client.Publish(topic, qos, retained, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("error publishing to %s: %w", topic, token.Error())
	}
	return nil
}
