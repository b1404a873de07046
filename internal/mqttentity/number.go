package mqttentity

import "fmt"

// Number is a writable numeric config entity, used here for the desired
// charging current.
type Number struct {
	base
	HumanName string
	Unit      string
	Min       float64
	Max       float64
	Step      float64
}

// NewNumber builds a writable number manager in Home Assistant's "config"
// entity category.
func NewNumber(name, humanName, unit string, min, max, step float64) *Number {
	return &Number{base: newBase(name), HumanName: humanName, Unit: unit, Min: min, Max: max, Step: step}
}

func (n *Number) CommandTopic() string { return n.setTopic() }

func (n *Number) Retain() bool { return true }

func (n *Number) RenderState(value any) string {
	switch v := value.(type) {
	case float64:
		return fmt.Sprintf("%g", v)
	case int:
		return fmt.Sprintf("%d", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (n *Number) Discovery() map[string]any {
	d := map[string]any{
		"p":                 "number",
		"name":              n.HumanName,
		"unique_id":         n.UniqueID(),
		"entity_category":   "config",
		"device_class":      "current",
		"unit_of_measurement": n.Unit,
		"min":               n.Min,
		"max":               n.Max,
		"step":              n.Step,
		"state_topic":       n.StateTopic(),
		"command_topic":     n.CommandTopic(),
		"retain":            true,
	}
	for k, v := range availabilityFragment(n.base) {
		d[k] = v
	}
	return d
}

// NumberDiag is a read-only numeric diagnostic entity, rendered as a Home
// Assistant sensor in the "diagnostic" entity category rather than a
// writable number.
type NumberDiag struct {
	base
	HumanName   string
	Unit        string
	DeviceClass string
}

// NewNumberDiag builds a read-only diagnostic number manager.
func NewNumberDiag(name, humanName, unit, deviceClass string) *NumberDiag {
	return &NumberDiag{base: newBase(name), HumanName: humanName, Unit: unit, DeviceClass: deviceClass}
}

func (n *NumberDiag) CommandTopic() string { return "" }

func (n *NumberDiag) Retain() bool { return false }

func (n *NumberDiag) RenderState(value any) string {
	switch v := value.(type) {
	case float64:
		return fmt.Sprintf("%g", v)
	case int:
		return fmt.Sprintf("%d", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (n *NumberDiag) Discovery() map[string]any {
	d := map[string]any{
		"p":                 "sensor",
		"name":              n.HumanName,
		"unique_id":         n.UniqueID(),
		"entity_category":   "diagnostic",
		"device_class":      n.DeviceClass,
		"unit_of_measurement": n.Unit,
		"state_topic":       n.StateTopic(),
		"expire_after":      10,
	}
	for k, v := range availabilityFragment(n.base) {
		d[k] = v
	}
	return d
}
