// Package wire implements the on-wire JSON envelope the charger speaks:
// compact outbound encoding, schema-checked inbound decoding.
package wire

import (
	"encoding/json"
	"fmt"
	"time"
)

// Envelope message type IDs.
const (
	TypeAction = "5" // action-carrying request/event
	TypeAck    = "6" // acknowledgement
)

// Outbound action names.
const (
	ActionUDPHandShake = "UDPHandShake"
	ActionHandShake    = "HandShake"
	ActionAuthorize    = "Authorize"
)

// Inbound action names.
const (
	ActionDeviceData     = "DeviceData"
	ActionSynchroStatus  = "SynchroStatus"
	ActionSynchroData    = "SynchroData"
	ActionNWireToDics    = "NWireToDics"
)

// Authorize purposes.
const (
	PurposeStart = "Start"
	PurposeStop  = "Stop"
)

func uniqueIDFromUnix(t time.Time) string {
	return fmt.Sprintf("%d", t.UnixMilli())
}

func encodeCompact(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UDPHandShake is the broadcast frame inviting the charger to dial into
// our WebSocket listener.
type UDPHandShake struct {
	TimeoutTimeUnix time.Time
	ChargeBoxSN     string
	IPAddress       string
	Port            int
}

func (m UDPHandShake) Encode() (string, error) {
	raw := map[string]any{
		"messageTypeId": TypeAction,
		"uniqueId":      uniqueIDFromUnix(m.TimeoutTimeUnix),
		"action":        ActionUDPHandShake,
		"payload": map[string]any{
			"label":       "APP",
			"chargeBoxSN": m.ChargeBoxSN,
			"iPAddress":   fmt.Sprintf("%s:%d", m.IPAddress, m.Port),
		},
	}
	return encodeCompact(raw)
}

// HandShake is the periodic WebSocket keep-alive frame.
//
// currentTime is rendered in local civil time with a trailing "Z" (UTC
// marker) even though it is not actually UTC. This mirrors a quirk in the
// original implementation; see DESIGN.md "Open-question decisions" item 1 — honored
// deliberately, not a bug introduced here.
type HandShake struct {
	CurrentTimeUnix time.Time
	UserID          int
	ChargeBoxSN     string
	ConnectionKey   string
}

func (m HandShake) Encode() (string, error) {
	raw := map[string]any{
		"messageTypeId": TypeAction,
		"uniqueId":      uniqueIDFromUnix(m.CurrentTimeUnix),
		"action":        ActionHandShake,
		"payload": map[string]any{
			"userId":        m.UserID,
			"chargeBoxSN":   m.ChargeBoxSN,
			"currentTime":   m.CurrentTimeUnix.Local().Format("2006-01-02T15:04:05") + "Z",
			"connectionKey": m.ConnectionKey,
		},
	}
	return encodeCompact(raw)
}

// Ack acknowledges a received action-message by uniqueId.
type Ack struct {
	ChargeBoxSN string
	UniqueID    string
}

func (m Ack) Encode() (string, error) {
	raw := map[string]any{
		"messageTypeId": TypeAck,
		"uniqueId":      m.UniqueID,
		"payload": map[string]any{
			"chargeBoxSN": m.ChargeBoxSN,
		},
	}
	return encodeCompact(raw)
}

// Authorize carries start/stop charging intent and the target current.
type Authorize struct {
	CurrentTimeUnix time.Time
	UserID          int
	ChargeBoxSN     string
	Purpose         string
	Current         int
	ConnectorID     int
}

// UniqueID returns the millisecond-timestamp uniqueId this envelope will be
// encoded with, so callers can register a pending confirmation before
// sending it over the wire.
func (m Authorize) UniqueID() string {
	return uniqueIDFromUnix(m.CurrentTimeUnix)
}

func (m Authorize) Encode() (string, error) {
	raw := map[string]any{
		"messageTypeId": TypeAction,
		"uniqueId":      m.UniqueID(),
		"action":        ActionAuthorize,
		"payload": map[string]any{
			"userId":      m.UserID,
			"chargeBoxSN": m.ChargeBoxSN,
			"purpose":     m.Purpose,
			"current":     m.Current,
			"connectorId": m.ConnectorID,
		},
	}
	return encodeCompact(raw)
}
