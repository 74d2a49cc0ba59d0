package mqtt

import "fmt"

// TopicFactory provides centralized topic construction for Home Assistant
// MQTT discovery
type TopicFactory struct {
	discoveryPrefix string
}

// NewTopicFactory creates a new topic factory
func NewTopicFactory(discoveryPrefix string) *TopicFactory {
	return &TopicFactory{
		discoveryPrefix: discoveryPrefix,
	}
}

// BuildDiscoveryTopic constructs the discovery config topic for a point
// Pattern: {prefix}/{component}/{device_key}/{device_key}_{point_key}/config
func (tf *TopicFactory) BuildDiscoveryTopic(component, deviceKey, pointKey string) string {
	return fmt.Sprintf("%s/%s/%s/%s_%s/config", tf.discoveryPrefix, component, deviceKey, deviceKey, pointKey)
}

// BuildStateTopic constructs the state topic for a point
// Pattern: {prefix}/{component}/{device_key}/{device_key}_{point_key}/state
func (tf *TopicFactory) BuildStateTopic(component, deviceKey, pointKey string) string {
	return fmt.Sprintf("%s/%s/%s/%s_%s/state", tf.discoveryPrefix, component, deviceKey, deviceKey, pointKey)
}

// BuildCommandTopic constructs the command topic for a controllable point
// Pattern: {prefix}/{component}/{device_key}/{device_key}_{point_key}/set
func (tf *TopicFactory) BuildCommandTopic(component, deviceKey, pointKey string) string {
	return fmt.Sprintf("%s/%s/%s/%s_%s/set", tf.discoveryPrefix, component, deviceKey, deviceKey, pointKey)
}

// BuildUniqueID constructs the unique ID for a point
// Pattern: pecron_{device_key}_{point_key}
func (tf *TopicFactory) BuildUniqueID(deviceKey, pointKey string) string {
	return fmt.Sprintf("pecron_%s_%s", deviceKey, pointKey)
}

// BuildNoticeTopic constructs the retained topic for one persistent notice
// Pattern: {notice_prefix}/{notice_id}
func BuildNoticeTopic(noticePrefix, noticeID string) string {
	return fmt.Sprintf("%s/%s", noticePrefix, noticeID)
}

// Home Assistant discovery component names
const (
	ComponentSensor       = "sensor"
	ComponentBinarySensor = "binary_sensor"
	ComponentSwitch       = "switch"
)
