// Package charger holds the typed, descriptor-driven model of one S-Charge
// station's reported state: per-parameter bookkeeping, connector and meter
// aggregates, and the whole-device snapshot used by the bridge and the
// diagnostics surface.
package charger

import (
	"fmt"
	"strconv"
	"sync"
)

// Kind is the scalar value type a Parameter holds once decoded.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindBool
	KindString
)

// Parameter is one named, typed field of the charger's reported state: which
// inbound action carries it, under which key, how to transform the raw wire
// value, and (for parameters that are MQTT-publishable) the unit and device
// class used to build its discovery fragment.
type Parameter struct {
	mu sync.Mutex

	HumanName   string
	Kind        Kind
	Action      string
	Key         string
	Unit        string
	DeviceClass string
	Transform   func(any) any

	value    any
	onUpdate func(any)
}

// NewParameter builds a Parameter. transform may be nil, in which case the
// coerced wire value is stored unchanged.
func NewParameter(humanName string, kind Kind, action, key string, transform func(any) any) *Parameter {
	return &Parameter{HumanName: humanName, Kind: kind, Action: action, Key: key, Transform: transform}
}

// WithUnit sets the display/MQTT unit and returns the receiver for chaining.
func (p *Parameter) WithUnit(unit string) *Parameter {
	p.Unit = unit
	return p
}

// WithDeviceClass sets the Home Assistant device class and returns the
// receiver for chaining. Only numeric parameters with a device class are
// MQTT-publishable (see Publishable).
func (p *Parameter) WithDeviceClass(class string) *Parameter {
	p.DeviceClass = class
	return p
}

// OnUpdate registers a callback invoked (in its own goroutine) every time the
// parameter's value changes.
func (p *Parameter) OnUpdate(cbk func(any)) {
	p.mu.Lock()
	p.onUpdate = cbk
	p.mu.Unlock()
}

// Update applies an inbound message to this parameter if the message's action
// matches the one this parameter is sourced from. source is the map the key
// should be looked up in: the whole message payload for device-level
// parameters, or a connector/meter sub-map for nested ones.
func (p *Parameter) Update(action string, source map[string]any) error {
	if action != p.Action {
		return nil
	}
	raw, ok := source[p.Key]
	if !ok {
		return fmt.Errorf("charger: action %s missing expected key %q", action, p.Key)
	}

	coerced, err := p.coerce(raw)
	if err != nil {
		return err
	}
	if p.Transform != nil {
		coerced = p.Transform(coerced)
	}

	p.mu.Lock()
	changed := p.value != coerced
	p.value = coerced
	cbk := p.onUpdate
	p.mu.Unlock()

	if cbk != nil && changed {
		go cbk(coerced)
	}
	return nil
}

func (p *Parameter) coerce(raw any) (any, error) {
	switch p.Kind {
	case KindInt:
		v, ok := raw.(int)
		if !ok {
			return nil, fmt.Errorf("charger: key %q: expected int, got %T", p.Key, raw)
		}
		return v, nil
	case KindFloat:
		switch v := raw.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case string:
			// SynchroData reports its numeric fields as wire strings.
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return 0.0, nil
			}
			return f, nil
		default:
			return nil, fmt.Errorf("charger: key %q: expected float, got %T", p.Key, raw)
		}
	case KindBool:
		v, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("charger: key %q: expected bool, got %T", p.Key, raw)
		}
		return v, nil
	case KindString:
		v, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("charger: key %q: expected string, got %T", p.Key, raw)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("charger: key %q: unknown kind", p.Key)
	}
}

// Value returns the current decoded value, or nil if never updated.
func (p *Parameter) Value() any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

// Initialized reports whether the parameter has received at least one value.
func (p *Parameter) Initialized() bool {
	return p.Value() != nil
}

// Publishable reports whether this parameter is a candidate for an
// auto-registered MQTT diagnostic entity: numeric and carrying a device
// class.
func (p *Parameter) Publishable() bool {
	return (p.Kind == KindInt || p.Kind == KindFloat) && p.DeviceClass != ""
}

// String renders "name: value{unit}", or "name: <pending>" before the first
// update, matching ChargerParam.__format__ in the original implementation.
func (p *Parameter) String() string {
	v := p.Value()
	if v == nil {
		return fmt.Sprintf("%s: <pending>", p.HumanName)
	}
	return fmt.Sprintf("%s: %v%s", p.HumanName, v, p.Unit)
}

// Float64 returns the parameter's value as a float64, regardless of whether
// it was declared Int or Float, for callers (command correlation, tolerance
// checks) that only care about magnitude.
func (p *Parameter) Float64() (float64, bool) {
	v := p.Value()
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
