package charger

import "github.com/matemat13/ha-s-charge/internal/wire"

// MeterInfo is the station's built-in energy meter, reported as a single
// sub-object of SynchroData regardless of which connector is drawing power.
type MeterInfo struct {
	Voltage *Parameter
	Current *Parameter
	Power   *Parameter

	params []*Parameter
}

// NewMeterInfo builds the meter-info aggregate.
func NewMeterInfo() *MeterInfo {
	m := &MeterInfo{}
	m.Voltage = NewParameter("meter voltage", KindFloat, wire.ActionSynchroData, "voltage", nil).WithUnit("V").WithDeviceClass("voltage")
	m.Current = NewParameter("meter current", KindFloat, wire.ActionSynchroData, "current", nil).WithUnit("A").WithDeviceClass("current")
	m.Power = NewParameter("meter power", KindFloat, wire.ActionSynchroData, "power", nil).WithUnit("W").WithDeviceClass("power")
	m.params = []*Parameter{m.Voltage, m.Current, m.Power}
	return m
}

// Apply dispatches a decoded message to the meter's parameters, if the
// message carries a "meterInfo" sub-object.
func (m *MeterInfo) Apply(msg *wire.Message) error {
	sub, ok := msg.Payload["meterInfo"].(map[string]any)
	if !ok {
		return nil
	}
	for _, p := range m.params {
		if err := p.Update(msg.Action, sub); err != nil {
			return err
		}
	}
	return nil
}

// Params returns every tracked parameter.
func (m *MeterInfo) Params() []*Parameter { return m.params }

// Snapshot renders every parameter's current value keyed by its wire key.
func (m *MeterInfo) Snapshot() map[string]any {
	out := make(map[string]any, len(m.params))
	for _, p := range m.params {
		out[p.Key] = p.Value()
	}
	return out
}
