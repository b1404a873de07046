// Package mqttentity renders Home Assistant MQTT discovery fragments and
// the three-topic (state/set/available) convention for each entity kind the
// bridge exposes: switches, numbers, diagnostic numbers, sensors, binary
// sensors, and enum sensors.
package mqttentity

import "fmt"

const (
	payloadOn      = "ON"
	payloadOff     = "OFF"
	payloadOnline  = "online"
	payloadOffline = "offline"
)

// Manager is one MQTT-published entity: its topic triple, its Home
// Assistant discovery fragment, and how to render a decoded value as the
// wire payload for its state topic.
type Manager interface {
	UniqueID() string
	StateTopic() string
	CommandTopic() string // "" if the entity accepts no commands
	AvailabilityTopic() string
	Discovery() map[string]any
	RenderState(value any) string
	Retain() bool
}

// base derives the "scharge/<name>/{state,set,available}" topic triple and
// the "scharge_<name>" unique id shared by every manager kind.
type base struct {
	name string
}

func newBase(name string) base {
	return base{name: name}
}

func (b base) UniqueID() string          { return "scharge_" + b.name }
func (b base) StateTopic() string        { return fmt.Sprintf("scharge/%s/state", b.name) }
func (b base) setTopic() string          { return fmt.Sprintf("scharge/%s/set", b.name) }
func (b base) AvailabilityTopic() string { return fmt.Sprintf("scharge/%s/available", b.name) }

func availabilityFragment(b base) map[string]any {
	return map[string]any{
		"availability_topic":     b.AvailabilityTopic(),
		"payload_available":      payloadOnline,
		"payload_not_available":  payloadOffline,
		"availability_mode":      "latest",
	}
}

// RenderAvailability returns the payload to publish on a manager's
// availability topic.
func RenderAvailability(available bool) string {
	if available {
		return payloadOnline
	}
	return payloadOffline
}
