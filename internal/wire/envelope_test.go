package wire

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestUDPHandShakeEncode(t *testing.T) {
	m := UDPHandShake{
		TimeoutTimeUnix: time.UnixMilli(1700000000000),
		ChargeBoxSN:     "ABC123",
		IPAddress:       "192.168.1.50",
		Port:            8765,
	}
	raw, err := m.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if strings.Contains(raw, " ") {
		t.Fatalf("expected compact JSON, got %q", raw)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["messageTypeId"] != TypeAction {
		t.Errorf("messageTypeId = %v, want %v", decoded["messageTypeId"], TypeAction)
	}
	if decoded["action"] != ActionUDPHandShake {
		t.Errorf("action = %v, want %v", decoded["action"], ActionUDPHandShake)
	}
	payload, ok := decoded["payload"].(map[string]any)
	if !ok {
		t.Fatalf("payload not an object: %v", decoded["payload"])
	}
	if payload["iPAddress"] != "192.168.1.50:8765" {
		t.Errorf("iPAddress = %v, want 192.168.1.50:8765", payload["iPAddress"])
	}
	if payload["label"] != "APP" {
		t.Errorf("label = %v, want APP", payload["label"])
	}
}

func TestHandShakeEncodeTrailingZ(t *testing.T) {
	m := HandShake{
		CurrentTimeUnix: time.UnixMilli(1700000000000),
		UserID:          1,
		ChargeBoxSN:     "ABC123",
		ConnectionKey:   "ABC123",
	}
	raw, err := m.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	payload := decoded["payload"].(map[string]any)
	ct, _ := payload["currentTime"].(string)
	if !strings.HasSuffix(ct, "Z") {
		t.Errorf("currentTime %q does not end with Z", ct)
	}
	if strings.Contains(ct, "+") {
		t.Errorf("currentTime %q should be civil time, not offset-qualified", ct)
	}
}

func TestAuthorizeUniqueIDMatchesEncoded(t *testing.T) {
	m := Authorize{
		CurrentTimeUnix: time.UnixMilli(1700000000123),
		UserID:          1,
		ChargeBoxSN:     "ABC123",
		Purpose:         PurposeStart,
		Current:         16,
		ConnectorID:     1,
	}
	raw, err := m.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["uniqueId"] != m.UniqueID() {
		t.Errorf("uniqueId = %v, want %v", decoded["uniqueId"], m.UniqueID())
	}
	payload := decoded["payload"].(map[string]any)
	if payload["purpose"] != PurposeStart {
		t.Errorf("purpose = %v, want Start", payload["purpose"])
	}
}

func TestAckEncode(t *testing.T) {
	m := Ack{ChargeBoxSN: "ABC123", UniqueID: "1700000000000"}
	raw, err := m.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["messageTypeId"] != TypeAck {
		t.Errorf("messageTypeId = %v, want %v", decoded["messageTypeId"], TypeAck)
	}
	if decoded["uniqueId"] != "1700000000000" {
		t.Errorf("uniqueId = %v, want 1700000000000", decoded["uniqueId"])
	}
}
