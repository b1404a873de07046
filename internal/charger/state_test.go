package charger

import (
	"testing"

	"github.com/matemat13/ha-s-charge/internal/wire"
)

func deviceDataMessage(serial string) *wire.Message {
	connector := map[string]any{
		"miniCurrent":     6,
		"maxCurrent":      32,
		"connectorStatus": 1,
		"lockStatus":      false,
		"PncStatus":       false,
	}
	return &wire.Message{
		Action:      wire.ActionDeviceData,
		ChargeBoxSN: serial,
		Payload: map[string]any{
			"chargeBoxSN":     serial,
			"connectorMain":   connector,
			"connectorVice":   connector,
			"sVersion":        "1.0.0",
			"hVersion":        "1.0",
			"loadbalance":     0,
			"chargeTimes":     3,
			"cumulativeTime":  3600000,
			"totalPower":      1200,
			"rssi":            -55,
			"evseType":        "AC",
			"connectorNumber": 2,
			"evsePhase":       "single",
			"isHasLock":       true,
			"isHasMeter":      true,
		},
	}
}

func synchroStatusMessage(serial, chargeStatus string) *wire.Message {
	sub := map[string]any{
		"connectionStatus": true,
		"chargeStatus":     chargeStatus,
		"statusCode":       0,
		"startTime":        "",
		"endTime":          "",
		"reserveCurrent":   16,
	}
	return &wire.Message{
		Action:      wire.ActionSynchroStatus,
		ChargeBoxSN: serial,
		Payload: map[string]any{
			"chargeBoxSN":   serial,
			"connectorMain": sub,
			"connectorVice": sub,
		},
	}
}

func synchroDataMessage(serial string) *wire.Message {
	sub := map[string]any{
		"voltage":      "230.0",
		"current":      "16.0",
		"power":        "3680.0",
		"electricWork": "1.2",
		"chargingTime": "60",
	}
	meter := map[string]any{
		"voltage": "230.0",
		"current": "16.0",
		"power":   "3680.0",
	}
	return &wire.Message{
		Action:      wire.ActionSynchroData,
		ChargeBoxSN: serial,
		Payload: map[string]any{
			"chargeBoxSN":   serial,
			"connectorMain": sub,
			"connectorVice": sub,
			"meterInfo":     meter,
		},
	}
}

func TestStateUpdateInitializes(t *testing.T) {
	s := NewState("ABC123")
	if s.Initialized() {
		t.Fatalf("state should not be initialized before any update")
	}

	if err := s.Update(deviceDataMessage("ABC123")); err != nil {
		t.Fatalf("device data update: %v", err)
	}
	if err := s.Update(synchroStatusMessage("ABC123", "charging")); err != nil {
		t.Fatalf("synchro status update: %v", err)
	}
	if err := s.Update(synchroDataMessage("ABC123")); err != nil {
		t.Fatalf("synchro data update: %v", err)
	}
	if err := s.Update(&wire.Message{Action: wire.ActionNWireToDics, ChargeBoxSN: "ABC123", Payload: map[string]any{
		"chargeBoxSN": "ABC123", "NWireExist": true, "NWireClosed": false,
	}}); err != nil {
		t.Fatalf("nwire update: %v", err)
	}

	if !s.Initialized() {
		t.Fatalf("state should be initialized after all four actions land")
	}
	if !s.IsCharging() {
		t.Fatalf("state should report charging")
	}
	if v, _ := s.ConnectorMain.Current.Float64(); v != 16.0 {
		t.Errorf("connectorMain.current = %v, want 16.0", v)
	}
	if v, _ := s.MeterInfo.Power.Float64(); v != 3680.0 {
		t.Errorf("meterInfo.power = %v, want 3680.0", v)
	}
}

func TestStateUpdateDropsMismatchedSerial(t *testing.T) {
	s := NewState("ABC123")
	if err := s.Update(deviceDataMessage("OTHER")); err != nil {
		t.Fatalf("update: %v", err)
	}
	if s.SVersion.Initialized() {
		t.Fatalf("message for a different serial should have been dropped")
	}
}

func TestCumulativeTimeTransformToHours(t *testing.T) {
	s := NewState("ABC123")
	if err := s.Update(deviceDataMessage("ABC123")); err != nil {
		t.Fatalf("update: %v", err)
	}
	v, ok := s.CumulativeTime.Value().(float64)
	if !ok {
		t.Fatalf("cumulativeTime not a float64: %T", s.CumulativeTime.Value())
	}
	if v != 1.0 {
		t.Errorf("cumulativeTime = %v hours, want 1.0", v)
	}
}

func TestCurrentForPicksChargingConnector(t *testing.T) {
	s := NewState("ABC123")
	_ = s.Update(deviceDataMessage("ABC123"))
	_ = s.Update(synchroStatusMessage("ABC123", "finish"))
	_ = s.Update(synchroDataMessage("ABC123"))

	if cur, ok := s.CurrentFor(0); !ok || cur != 16.0 {
		t.Errorf("CurrentFor(0) = %v (ok=%v), want 16.0 (fallback to main)", cur, ok)
	}
	if cur, ok := s.CurrentFor(ConnectorVice); !ok || cur != 16.0 {
		t.Errorf("CurrentFor(vice) = %v (ok=%v), want 16.0", cur, ok)
	}
}

func TestPublishableParamsExcludeNonNumeric(t *testing.T) {
	s := NewState("ABC123")
	for _, p := range s.PublishableParams() {
		if p.Kind != KindInt && p.Kind != KindFloat {
			t.Errorf("publishable parameter %q has non-numeric kind", p.HumanName)
		}
		if p.DeviceClass == "" {
			t.Errorf("publishable parameter %q has no device class", p.HumanName)
		}
	}
}
