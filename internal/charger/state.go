package charger

import "github.com/matemat13/ha-s-charge/internal/wire"

// Connector IDs as used by the Authorize action and the command API.
const (
	ConnectorMain = 1
	ConnectorVice = 2
)

// State is the whole decoded picture of one charging station: device-level
// parameters, its two connectors, and the built-in meter.
type State struct {
	Serial string

	SVersion        *Parameter
	HVersion        *Parameter
	Loadbalance     *Parameter
	ChargeTimes     *Parameter
	CumulativeTime  *Parameter
	TotalPower      *Parameter
	RSSI            *Parameter
	EvseType        *Parameter
	ConnectorNumber *Parameter
	EvsePhase       *Parameter
	IsHasLock       *Parameter
	IsHasMeter      *Parameter
	NWireExist      *Parameter
	NWireClosed     *Parameter

	ConnectorMain *Connector
	ConnectorVice *Connector
	MeterInfo     *MeterInfo

	deviceParams []*Parameter
}

// NewState builds an empty (uninitialized) charger state for the given
// station serial (chargeBoxSN). Messages for any other serial are dropped by
// Update.
func NewState(serial string) *State {
	s := &State{Serial: serial}

	s.SVersion = NewParameter("software version", KindString, wire.ActionDeviceData, "sVersion", nil)
	s.HVersion = NewParameter("hardware version", KindString, wire.ActionDeviceData, "hVersion", nil)
	s.Loadbalance = NewParameter("load balance", KindInt, wire.ActionDeviceData, "loadbalance", nil)
	s.ChargeTimes = NewParameter("charge sessions", KindInt, wire.ActionDeviceData, "chargeTimes", nil)
	// cumulativeTime arrives in milliseconds; surfaced in hours.
	s.CumulativeTime = NewParameter("cumulative time", KindInt, wire.ActionDeviceData, "cumulativeTime",
		func(v any) any {
			ms, _ := v.(int)
			return float64(ms) / (1000 * 60 * 60)
		}).WithUnit("h").WithDeviceClass("duration")
	// Unit left unresolved per the original's own "?" placeholder.
	s.TotalPower = NewParameter("total power", KindInt, wire.ActionDeviceData, "totalPower", nil).WithUnit("")
	s.RSSI = NewParameter("wifi signal", KindInt, wire.ActionDeviceData, "rssi", nil).WithUnit("dBm").WithDeviceClass("signal_strength")
	s.EvseType = NewParameter("EVSE type", KindString, wire.ActionDeviceData, "evseType", nil)
	s.ConnectorNumber = NewParameter("connector count", KindInt, wire.ActionDeviceData, "connectorNumber", nil)
	s.EvsePhase = NewParameter("EVSE phase", KindString, wire.ActionDeviceData, "evsePhase", nil)
	s.IsHasLock = NewParameter("has lock", KindBool, wire.ActionDeviceData, "isHasLock", nil)
	s.IsHasMeter = NewParameter("has meter", KindBool, wire.ActionDeviceData, "isHasMeter", nil)
	s.NWireExist = NewParameter("N-wire present", KindBool, wire.ActionNWireToDics, "NWireExist", nil)
	s.NWireClosed = NewParameter("N-wire closed", KindBool, wire.ActionNWireToDics, "NWireClosed", nil)

	s.deviceParams = []*Parameter{
		s.SVersion, s.HVersion, s.Loadbalance, s.ChargeTimes, s.CumulativeTime, s.TotalPower,
		s.RSSI, s.EvseType, s.ConnectorNumber, s.EvsePhase, s.IsHasLock, s.IsHasMeter,
		s.NWireExist, s.NWireClosed,
	}

	s.ConnectorMain = NewConnector("connectorMain", "connector 1")
	s.ConnectorVice = NewConnector("connectorVice", "connector 2")
	s.MeterInfo = NewMeterInfo()

	return s
}

// Update applies a decoded, schema-validated inbound message to the state.
// A message for a different station serial is dropped silently, matching
// the original implementation's ChargerState.update behavior.
func (s *State) Update(msg *wire.Message) error {
	if msg == nil {
		return nil
	}
	if msg.ChargeBoxSN != "" && s.Serial != "" && msg.ChargeBoxSN != s.Serial {
		return nil
	}

	for _, p := range s.deviceParams {
		if err := p.Update(msg.Action, msg.Payload); err != nil {
			return err
		}
	}
	if err := s.ConnectorMain.Apply(msg); err != nil {
		return err
	}
	if err := s.ConnectorVice.Apply(msg); err != nil {
		return err
	}
	return s.MeterInfo.Apply(msg)
}

// Connectors returns both connectors in ID order (main=1, vice=2).
func (s *State) Connectors() []*Connector {
	return []*Connector{s.ConnectorMain, s.ConnectorVice}
}

// Initialized reports whether every device-level and connector/meter
// parameter has received at least one value.
func (s *State) Initialized() bool {
	for _, p := range s.deviceParams {
		if !p.Initialized() {
			return false
		}
	}
	for _, c := range s.Connectors() {
		for _, p := range c.Params() {
			if !p.Initialized() {
				return false
			}
		}
	}
	for _, p := range s.MeterInfo.Params() {
		if !p.Initialized() {
			return false
		}
	}
	return true
}

// IsCharging reports whether either connector is actively charging.
func (s *State) IsCharging() bool {
	return s.ConnectorMain.IsCharging() || s.ConnectorVice.IsCharging()
}

func (s *State) connectorByID(id int) *Connector {
	switch id {
	case ConnectorVice:
		return s.ConnectorVice
	default:
		return s.ConnectorMain
	}
}

// CurrentFor returns the live current draw for connectorID. connectorID 0
// means "pick the connector that's actually charging", falling back to the
// main connector if neither is, matching the original get_current(None)
// semantics.
func (s *State) CurrentFor(connectorID int) (float64, bool) {
	if connectorID == 0 {
		for _, c := range s.Connectors() {
			if c.IsCharging() {
				return c.Current.Float64()
			}
		}
		return s.ConnectorMain.Current.Float64()
	}
	return s.connectorByID(connectorID).Current.Float64()
}

// PublishableParams returns every parameter across the whole state that is
// eligible for MQTT auto-registration (numeric, with a device class set),
// for the bridge to wire into diagnostic sensors without hand-listing them.
func (s *State) PublishableParams() []*Parameter {
	var out []*Parameter
	for _, p := range s.deviceParams {
		if p.Publishable() {
			out = append(out, p)
		}
	}
	for _, c := range s.Connectors() {
		for _, p := range c.Params() {
			if p.Publishable() {
				out = append(out, p)
			}
		}
	}
	for _, p := range s.MeterInfo.Params() {
		if p.Publishable() {
			out = append(out, p)
		}
	}
	return out
}

// Snapshot renders the full state tree for diagnostics and logging.
func (s *State) Snapshot() map[string]any {
	device := make(map[string]any, len(s.deviceParams))
	for _, p := range s.deviceParams {
		device[p.Key] = p.Value()
	}
	return map[string]any{
		"chargeBoxSN":   s.Serial,
		"initialized":   s.Initialized(),
		"isCharging":    s.IsCharging(),
		"device":        device,
		"connectorMain": s.ConnectorMain.Snapshot(),
		"connectorVice": s.ConnectorVice.Snapshot(),
		"meterInfo":     s.MeterInfo.Snapshot(),
	}
}
