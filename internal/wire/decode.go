package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// jsonNumber is encoding/json's arbitrary-precision number representation,
// used (via json.Decoder.UseNumber) so the schema validator can tell JSON
// integers from JSON floats the way Python's json.loads does natively.
type jsonNumber = json.Number

var connectorSchema = schema{
	"miniCurrent":     leaf(KindInt),
	"maxCurrent":      leaf(KindInt),
	"connectorStatus": leaf(KindInt),
	"lockStatus":      leaf(KindBool),
	"PncStatus":       leaf(KindBool),
}

var connectorStatusSchema = schema{
	"connectionStatus": leaf(KindBool),
	"chargeStatus":     leaf(KindString),
	"statusCode":       leaf(KindInt),
	"startTime":        leaf(KindString),
	"endTime":          leaf(KindString),
	"reserveCurrent":   leaf(KindInt),
}

var connectorDataSchema = schema{
	"voltage":      leaf(KindString),
	"current":      leaf(KindString),
	"power":        leaf(KindString),
	"electricWork": leaf(KindString),
	"chargingTime": leaf(KindString),
}

var meterInfoSchema = schema{
	"voltage": leaf(KindString),
	"current": leaf(KindString),
	"power":   leaf(KindString),
}

var deviceDataSchema = schema{
	"chargeBoxSN":     leaf(KindString),
	"connectorMain":   nest(connectorSchema),
	"connectorVice":   nest(connectorSchema),
	"sVersion":        leaf(KindString),
	"hVersion":        leaf(KindString),
	"loadbalance":     leaf(KindInt),
	"chargeTimes":     leaf(KindInt),
	"cumulativeTime":  leaf(KindInt),
	"totalPower":      leaf(KindInt),
	"rssi":            leaf(KindInt),
	"evseType":        leaf(KindString),
	"connectorNumber": leaf(KindInt),
	"evsePhase":       leaf(KindString),
	"isHasLock":       leaf(KindBool),
	"isHasMeter":      leaf(KindBool),
}

var synchroStatusSchema = schema{
	"chargeBoxSN":   leaf(KindString),
	"connectorMain": nest(connectorStatusSchema),
	"connectorVice": nest(connectorStatusSchema),
}

var synchroDataSchema = schema{
	"chargeBoxSN":   leaf(KindString),
	"connectorMain": nest(connectorDataSchema),
	"connectorVice": nest(connectorDataSchema),
	"meterInfo":     nest(meterInfoSchema),
}

var nWireToDicsSchema = schema{
	"chargeBoxSN": leaf(KindString),
	"NWireExist":  leaf(KindBool),
	"NWireClosed": leaf(KindBool),
}

var actionSchemas = map[string]schema{
	ActionDeviceData:    deviceDataSchema,
	ActionSynchroStatus: synchroStatusSchema,
	ActionSynchroData:   synchroDataSchema,
	ActionNWireToDics:   nWireToDicsSchema,
}

// Message is a decoded, schema-validated inbound action payload.
type Message struct {
	Action      string
	UniqueID    string
	ChargeBoxSN string
	Payload     map[string]any
}

// AckView is a decoded inbound acknowledgement.
type AckView struct {
	UniqueID string
	Result   bool
}

// rawEnvelope is the shape every inbound frame shares before we know
// whether it's an ack or an action-message.
type rawEnvelope struct {
	MessageTypeID string          `json:"messageTypeId"`
	UniqueID      string          `json:"uniqueId"`
	Action        string          `json:"action"`
	Payload       json.RawMessage `json:"payload"`
}

// Decoded is the result of decoding one inbound frame: exactly one of
// Ack/Msg is non-nil, or both are nil for an unknown action (ignored by
// upper layers per spec.md §4.1).
type Decoded struct {
	Ack *AckView
	Msg *Message
}

// Decode parses one inbound WebSocket text frame. A malformed envelope (bad
// JSON, missing messageTypeId) or a schema violation on a known action is a
// hard parse failure; an unknown action decodes to an empty Decoded value.
func Decode(frame []byte) (Decoded, error) {
	dec := json.NewDecoder(bytes.NewReader(frame))
	dec.UseNumber()

	var env rawEnvelope
	if err := dec.Decode(&env); err != nil {
		return Decoded{}, fmt.Errorf("wire: invalid envelope JSON: %w", err)
	}
	if env.MessageTypeID == "" {
		return Decoded{}, fmt.Errorf("wire: envelope missing messageTypeId")
	}

	if env.MessageTypeID == TypeAck {
		var payload struct {
			Result bool `json:"result"`
		}
		pdec := json.NewDecoder(bytes.NewReader(env.Payload))
		if err := pdec.Decode(&payload); err != nil {
			return Decoded{}, fmt.Errorf("wire: invalid ack payload: %w", err)
		}
		return Decoded{Ack: &AckView{UniqueID: env.UniqueID, Result: payload.Result}}, nil
	}

	if env.MessageTypeID != TypeAction {
		return Decoded{}, nil
	}

	s, known := actionSchemas[env.Action]
	if !known {
		return Decoded{}, nil
	}

	pdec := json.NewDecoder(bytes.NewReader(env.Payload))
	pdec.UseNumber()
	var rawPayload map[string]any
	if err := pdec.Decode(&rawPayload); err != nil {
		return Decoded{}, fmt.Errorf("wire: invalid payload JSON for action %s: %w", env.Action, err)
	}

	validated, err := validate(rawPayload, s)
	if err != nil {
		return Decoded{}, fmt.Errorf("wire: schema violation in action %s: %w", env.Action, err)
	}

	serial, _ := validated["chargeBoxSN"].(string)
	return Decoded{Msg: &Message{Action: env.Action, UniqueID: env.UniqueID, ChargeBoxSN: serial, Payload: validated}}, nil
}
