package mqttentity

import "fmt"

// Sensor is a read-only numeric sensor, e.g. voltage, current, or power.
type Sensor struct {
	base
	HumanName   string
	Unit        string
	DeviceClass string // omitted from the discovery fragment if empty
	StateClass  string // defaults to "measurement"
}

// NewSensor builds a read-only numeric sensor manager.
func NewSensor(name, humanName, unit, deviceClass string) *Sensor {
	return &Sensor{base: newBase(name), HumanName: humanName, Unit: unit, DeviceClass: deviceClass, StateClass: "measurement"}
}

func (s *Sensor) CommandTopic() string { return "" }

func (s *Sensor) Retain() bool { return false }

func (s *Sensor) RenderState(value any) string {
	switch v := value.(type) {
	case float64:
		return fmt.Sprintf("%g", v)
	case int:
		return fmt.Sprintf("%d", v)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (s *Sensor) Discovery() map[string]any {
	d := map[string]any{
		"p":                   "sensor",
		"name":                s.HumanName,
		"unique_id":           s.UniqueID(),
		"state_class":         s.StateClass,
		"unit_of_measurement": s.Unit,
		"state_topic":         s.StateTopic(),
		"expire_after":        10,
	}
	if s.DeviceClass != "" {
		d["device_class"] = s.DeviceClass
	}
	for k, v := range availabilityFragment(s.base) {
		d[k] = v
	}
	return d
}

// BinarySensor is a read-only ON/OFF diagnostic, e.g. lock status.
type BinarySensor struct {
	base
	HumanName   string
	DeviceClass string
}

// NewBinarySensor builds a read-only binary sensor manager.
func NewBinarySensor(name, humanName, deviceClass string) *BinarySensor {
	return &BinarySensor{base: newBase(name), HumanName: humanName, DeviceClass: deviceClass}
}

func (b *BinarySensor) CommandTopic() string { return "" }

func (b *BinarySensor) Retain() bool { return false }

func (b *BinarySensor) RenderState(value any) string {
	on, _ := value.(bool)
	if on {
		return payloadOn
	}
	return payloadOff
}

func (b *BinarySensor) Discovery() map[string]any {
	d := map[string]any{
		"p":             "binary_sensor",
		"name":          b.HumanName,
		"unique_id":     b.UniqueID(),
		"device_class":  b.DeviceClass,
		"state_topic":   b.StateTopic(),
		"payload_on":    payloadOn,
		"payload_off":   payloadOff,
		"expire_after":  10,
	}
	for k, v := range availabilityFragment(b.base) {
		d[k] = v
	}
	return d
}

// EnumSensor is a read-only sensor restricted to a fixed set of string
// values, e.g. chargeStatus.
type EnumSensor struct {
	base
	HumanName string
	Options   []string
}

// NewEnumSensor builds a read-only enum sensor manager.
func NewEnumSensor(name, humanName string, options []string) *EnumSensor {
	return &EnumSensor{base: newBase(name), HumanName: humanName, Options: options}
}

func (e *EnumSensor) CommandTopic() string { return "" }

func (e *EnumSensor) Retain() bool { return false }

func (e *EnumSensor) RenderState(value any) string {
	s, _ := value.(string)
	return s
}

func (e *EnumSensor) Discovery() map[string]any {
	d := map[string]any{
		"p":             "sensor",
		"name":          e.HumanName,
		"unique_id":     e.UniqueID(),
		"device_class":  "enum",
		"options":       e.Options,
		"state_topic":   e.StateTopic(),
		"expire_after":  10,
	}
	for k, v := range availabilityFragment(e.base) {
		d[k] = v
	}
	return d
}
