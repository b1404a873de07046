package mqttentity

// Switch is a writable ON/OFF entity, used here for the charging toggle.
type Switch struct {
	base
	HumanName string
}

// NewSwitch builds a switch manager. name is the wire-topic segment (e.g.
// "charging"); humanName is the Home Assistant display name.
func NewSwitch(name, humanName string) *Switch {
	return &Switch{base: newBase(name), HumanName: humanName}
}

func (s *Switch) CommandTopic() string { return s.setTopic() }

func (s *Switch) Retain() bool { return false }

func (s *Switch) RenderState(value any) string {
	on, _ := value.(bool)
	if on {
		return payloadOn
	}
	return payloadOff
}

func (s *Switch) Discovery() map[string]any {
	d := map[string]any{
		"p":              "switch",
		"name":           s.HumanName,
		"unique_id":      s.UniqueID(),
		"device_class":   "switch",
		"state_topic":    s.StateTopic(),
		"state_on":       payloadOn,
		"state_off":      payloadOff,
		"command_topic":  s.CommandTopic(),
		"payload_on":     payloadOn,
		"payload_off":    payloadOff,
		"optimistic":     true,
		"qos":            0,
		"retain":         false,
	}
	for k, v := range availabilityFragment(s.base) {
		d[k] = v
	}
	return d
}
