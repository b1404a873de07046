package command

import (
	"context"
	"testing"

	"github.com/matemat13/ha-s-charge/internal/charger"
	"github.com/matemat13/ha-s-charge/internal/wire"
)

type fakeAuthorizer struct {
	result bool
	err    error
	calls  int
}

func (f *fakeAuthorizer) SendAuthorize(ctx context.Context, purpose string, current, connectorID int) (bool, error) {
	f.calls++
	return f.result, f.err
}

func TestStartChargingConvergesImmediately(t *testing.T) {
	state := charger.NewState("ABC123")
	if err := state.ConnectorMain.Current.Update(wire.ActionSynchroData, map[string]any{
		"current": "16.0", "voltage": "230.0", "power": "3680.0", "electricWork": "1.0", "chargingTime": "0",
	}); err != nil {
		t.Fatalf("seed current: %v", err)
	}

	fa := &fakeAuthorizer{result: true}
	api := NewAPI(fa, state)

	if err := api.StartCharging(context.Background(), 16, charger.ConnectorMain); err != nil {
		t.Fatalf("StartCharging: %v", err)
	}
	if fa.calls != 1 {
		t.Errorf("expected exactly one authorize call, got %d", fa.calls)
	}
}

func TestStopChargingConvergesImmediately(t *testing.T) {
	state := charger.NewState("ABC123")
	if err := state.ConnectorMain.MiniCurrent.Update(wire.ActionDeviceData, map[string]any{
		"miniCurrent": 6, "maxCurrent": 32, "connectorStatus": 1, "lockStatus": false, "PncStatus": false,
	}); err != nil {
		t.Fatalf("seed miniCurrent: %v", err)
	}
	if err := state.ConnectorMain.ChargeStatus.Update(wire.ActionSynchroStatus, map[string]any{
		"connectionStatus": true, "chargeStatus": "finish", "statusCode": 0,
		"startTime": "", "endTime": "", "reserveCurrent": 0,
	}); err != nil {
		t.Fatalf("seed chargeStatus: %v", err)
	}

	fa := &fakeAuthorizer{result: true}
	api := NewAPI(fa, state)

	if err := api.StopCharging(context.Background(), charger.ConnectorMain); err != nil {
		t.Fatalf("StopCharging: %v", err)
	}
	if fa.calls != 1 {
		t.Errorf("expected exactly one authorize call, got %d", fa.calls)
	}
}

func TestInvalidConnectorIDRejected(t *testing.T) {
	state := charger.NewState("ABC123")
	fa := &fakeAuthorizer{result: true}
	api := NewAPI(fa, state)

	if err := api.StartCharging(context.Background(), 16, 99); err == nil {
		t.Fatalf("expected an error for an invalid connector id")
	}
}

func TestStartChargingCanceledContextReturnsPromptly(t *testing.T) {
	state := charger.NewState("ABC123")
	fa := &fakeAuthorizer{result: true}
	api := NewAPI(fa, state)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := api.StartCharging(ctx, 16, charger.ConnectorMain)
	if err == nil {
		t.Fatalf("expected an error when the context is already canceled")
	}
}
