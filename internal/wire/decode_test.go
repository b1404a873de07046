package wire

import (
	"strconv"
	"testing"
)

func connectorJSON(minCur, maxCur, status int) string {
	return `{"miniCurrent":` + strconv.Itoa(minCur) + `,"maxCurrent":` + strconv.Itoa(maxCur) +
		`,"connectorStatus":` + strconv.Itoa(status) + `,"lockStatus":false,"PncStatus":false}`
}

func validDeviceDataFrame() []byte {
	payload := `{"chargeBoxSN":"ABC123",` +
		`"connectorMain":` + connectorJSON(6, 32, 1) + `,` +
		`"connectorVice":` + connectorJSON(6, 32, 1) + `,` +
		`"sVersion":"1.0.0","hVersion":"1.0",` +
		`"loadbalance":0,"chargeTimes":3,"cumulativeTime":3600000,"totalPower":1200,` +
		`"rssi":-55,"evseType":"AC","connectorNumber":2,"evsePhase":"single",` +
		`"isHasLock":true,"isHasMeter":true}`
	return []byte(`{"messageTypeId":"5","uniqueId":"1700000000000","action":"DeviceData","payload":` + payload + `}`)
}

func TestDecodeDeviceDataValid(t *testing.T) {
	d, err := Decode(validDeviceDataFrame())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.Msg == nil {
		t.Fatalf("expected a decoded message")
	}
	if d.Msg.Action != ActionDeviceData {
		t.Errorf("action = %q, want %q", d.Msg.Action, ActionDeviceData)
	}
	if d.Msg.ChargeBoxSN != "ABC123" {
		t.Errorf("chargeBoxSN = %q, want ABC123", d.Msg.ChargeBoxSN)
	}
	rssi, ok := d.Msg.Payload["rssi"].(int)
	if !ok || rssi != -55 {
		t.Errorf("rssi = %v (ok=%v), want -55", d.Msg.Payload["rssi"], ok)
	}
	main, ok := d.Msg.Payload["connectorMain"].(map[string]any)
	if !ok {
		t.Fatalf("connectorMain not nested object")
	}
	if _, ok := main["miniCurrent"].(int); !ok {
		t.Errorf("connectorMain.miniCurrent not coerced to int: %T", main["miniCurrent"])
	}
}

func TestDecodeMissingKeyIsError(t *testing.T) {
	frame := []byte(`{"messageTypeId":"5","uniqueId":"1","action":"DeviceData","payload":{"chargeBoxSN":"ABC123"}}`)
	_, err := Decode(frame)
	if err == nil {
		t.Fatalf("expected an error for missing keys")
	}
}

func TestDecodeTypeMismatchIsError(t *testing.T) {
	payload := `{"chargeBoxSN":"ABC123",` +
		`"connectorMain":` + connectorJSON(6, 32, 1) + `,` +
		`"connectorVice":` + connectorJSON(6, 32, 1) + `,` +
		`"sVersion":"1.0.0","hVersion":"1.0",` +
		`"loadbalance":"zero","chargeTimes":3,"cumulativeTime":3600000,"totalPower":1200,` +
		`"rssi":-55,"evseType":"AC","connectorNumber":2,"evsePhase":"single",` +
		`"isHasLock":true,"isHasMeter":true}`
	frame := []byte(`{"messageTypeId":"5","uniqueId":"1","action":"DeviceData","payload":` + payload + `}`)

	_, err := Decode(frame)
	if err == nil {
		t.Fatalf("expected a type-mismatch error, loadbalance was a string not an int")
	}
}

func TestDecodeAck(t *testing.T) {
	frame := []byte(`{"messageTypeId":"6","uniqueId":"1700000000123","payload":{"chargeBoxSN":"ABC123","result":true}}`)
	d, err := Decode(frame)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.Ack == nil {
		t.Fatalf("expected an ack view")
	}
	if d.Ack.UniqueID != "1700000000123" {
		t.Errorf("uniqueId = %q, want 1700000000123", d.Ack.UniqueID)
	}
	if !d.Ack.Result {
		t.Errorf("result = false, want true")
	}
}

func TestDecodeUnknownActionIgnored(t *testing.T) {
	frame := []byte(`{"messageTypeId":"5","uniqueId":"1","action":"SomethingElse","payload":{}}`)
	d, err := Decode(frame)
	if err != nil {
		t.Fatalf("unexpected error for unknown action: %v", err)
	}
	if d.Ack != nil || d.Msg != nil {
		t.Fatalf("expected an empty Decoded value for an unknown action")
	}
}

func TestDecodeMalformedJSON(t *testing.T) {
	_, err := Decode([]byte(`{not json`))
	if err == nil {
		t.Fatalf("expected an error for malformed JSON")
	}
}
