package charger

import "github.com/matemat13/ha-s-charge/internal/wire"

// Connector is one of the station's two physical connectors ("connectorMain"
// or "connectorVice"), aggregating the parameters the three telemetry
// actions (DeviceData, SynchroStatus, SynchroData) report about it.
type Connector struct {
	name       string
	humanName  string

	MiniCurrent *Parameter
	MaxCurrent  *Parameter
	Status      *Parameter
	LockStatus  *Parameter
	PncStatus   *Parameter

	ConnectionStatus *Parameter
	StatusCode       *Parameter
	ChargeStatus     *Parameter
	StartTime        *Parameter
	EndTime          *Parameter
	ReserveCurrent   *Parameter

	Voltage      *Parameter
	Current      *Parameter
	Power        *Parameter
	ElectricWork *Parameter
	ChargingTime *Parameter

	params []*Parameter
}

// NewConnector builds a connector aggregate. name is the wire-level key
// ("connectorMain" or "connectorVice") used to find this connector's
// sub-object in each action's payload.
func NewConnector(name, humanName string) *Connector {
	c := &Connector{name: name, humanName: humanName}

	c.MiniCurrent = NewParameter(humanName+" min current", KindInt, wire.ActionDeviceData, "miniCurrent", nil).WithUnit("A")
	c.MaxCurrent = NewParameter(humanName+" max current", KindInt, wire.ActionDeviceData, "maxCurrent", nil).WithUnit("A")
	c.Status = NewParameter(humanName+" connector status", KindInt, wire.ActionDeviceData, "connectorStatus", nil)
	c.LockStatus = NewParameter(humanName+" lock status", KindBool, wire.ActionDeviceData, "lockStatus", nil).WithDeviceClass("lock")
	c.PncStatus = NewParameter(humanName+" PnC status", KindBool, wire.ActionDeviceData, "PncStatus", nil)

	c.ConnectionStatus = NewParameter(humanName+" connected", KindBool, wire.ActionSynchroStatus, "connectionStatus", nil).WithDeviceClass("connectivity")
	c.StatusCode = NewParameter(humanName+" status code", KindInt, wire.ActionSynchroStatus, "statusCode", nil)
	c.ChargeStatus = NewParameter(humanName+" charge status", KindString, wire.ActionSynchroStatus, "chargeStatus", nil)
	c.StartTime = NewParameter(humanName+" start time", KindString, wire.ActionSynchroStatus, "startTime", nil)
	c.EndTime = NewParameter(humanName+" end time", KindString, wire.ActionSynchroStatus, "endTime", nil)
	c.ReserveCurrent = NewParameter(humanName+" reserve current", KindInt, wire.ActionSynchroStatus, "reserveCurrent", nil).WithUnit("A")

	c.Voltage = NewParameter(humanName+" voltage", KindFloat, wire.ActionSynchroData, "voltage", nil).WithUnit("V").WithDeviceClass("voltage")
	c.Current = NewParameter(humanName+" current", KindFloat, wire.ActionSynchroData, "current", nil).WithUnit("A").WithDeviceClass("current")
	c.Power = NewParameter(humanName+" power", KindFloat, wire.ActionSynchroData, "power", nil).WithUnit("W").WithDeviceClass("power")
	c.ElectricWork = NewParameter(humanName+" energy", KindFloat, wire.ActionSynchroData, "electricWork", nil).WithUnit("kWh").WithDeviceClass("energy")
	c.ChargingTime = NewParameter(humanName+" charging time", KindFloat, wire.ActionSynchroData, "chargingTime", nil).WithUnit("s")

	c.params = []*Parameter{
		c.MiniCurrent, c.MaxCurrent, c.Status, c.LockStatus, c.PncStatus,
		c.ConnectionStatus, c.StatusCode, c.ChargeStatus, c.StartTime, c.EndTime, c.ReserveCurrent,
		c.Voltage, c.Current, c.Power, c.ElectricWork, c.ChargingTime,
	}
	return c
}

// Apply dispatches one decoded message to every parameter of this connector
// that the message's action carries data for.
func (c *Connector) Apply(msg *wire.Message) error {
	sub, ok := msg.Payload[c.name].(map[string]any)
	if !ok {
		return nil
	}
	for _, p := range c.params {
		if err := p.Update(msg.Action, sub); err != nil {
			return err
		}
	}
	return nil
}

// Params returns every parameter tracked by this connector.
func (c *Connector) Params() []*Parameter { return c.params }

// IsConnected reports whether the connector currently reports as connected.
func (c *Connector) IsConnected() bool {
	v, _ := c.ConnectionStatus.Value().(bool)
	return v
}

// IsCharging reports whether the connector is actively charging or waiting
// to charge, matching the original's chargeStatus in ("charging", "wait").
func (c *Connector) IsCharging() bool {
	v, _ := c.ChargeStatus.Value().(string)
	return v == "charging" || v == "wait"
}

// Snapshot renders every parameter's current value keyed by its wire key,
// for diagnostics/logging.
func (c *Connector) Snapshot() map[string]any {
	out := make(map[string]any, len(c.params))
	for _, p := range c.params {
		out[p.Key] = p.Value()
	}
	return out
}
