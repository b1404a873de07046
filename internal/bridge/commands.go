package bridge

import (
	"context"
	"strconv"
	"time"

	"github.com/matemat13/ha-s-charge/internal/charger"
)

// commandTimeout bounds how long a single start/stop convergence attempt is
// allowed to run once triggered by an inbound MQTT command.
const commandTimeout = 35 * time.Second

// pickConnector prefers connector 1; if it isn't connected and connector 2
// is, it falls back to 2, matching the original implementation's
// process_switch_charging selection.
func (b *Bridge) pickConnector() int {
	if b.state.ConnectorMain.IsConnected() {
		return charger.ConnectorMain
	}
	if b.state.ConnectorVice.IsConnected() {
		return charger.ConnectorVice
	}
	return charger.ConnectorMain
}

func (b *Bridge) processSwitchCharging(payload string) {
	connectorID := b.pickConnector()
	on := payload == "ON"

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		var err error
		if on {
			err = b.cmd.StartCharging(ctx, int(b.desiredCurrent.Load()), connectorID)
		} else {
			err = b.cmd.StopCharging(ctx, connectorID)
		}
		if err != nil {
			b.log.Printf("[bridge] WARNING switch command failed: %v", err)
		}
		b.publishState(b.switchMgr, b.state.IsCharging())
	}()
}

func (b *Bridge) processSetCurrent(payload string) {
	current, err := strconv.Atoi(payload)
	if err != nil {
		b.log.Printf("[bridge] WARNING ignoring non-integer set_current payload %q: %v", payload, err)
		return
	}
	b.desiredCurrent.Store(int32(current))
	b.publishState(b.numberMgr, current)
}
