// Package command implements the start/stop charging workflows: sending an
// Authorize action and retrying until the station's reported state
// converges with the requested intent, the way a human operator watching
// the app would.
package command

import (
	"context"
	"fmt"
	"time"

	"github.com/matemat13/ha-s-charge/internal/charger"
	"github.com/matemat13/ha-s-charge/internal/wire"
)

const (
	maxRetries       = 5
	retrySpacing     = 3 * time.Second
	currentTolerance = 1.0
)

// Authorizer sends an Authorize action and waits for its ack, the subset of
// *session.Controller this package depends on.
type Authorizer interface {
	SendAuthorize(ctx context.Context, purpose string, current, connectorID int) (bool, error)
}

// API is the command surface the MQTT bridge drives to start/stop charging.
type API struct {
	ctrl  Authorizer
	state *charger.State
}

// NewAPI builds a command API bound to one station's controller and state.
func NewAPI(ctrl Authorizer, state *charger.State) *API {
	return &API{ctrl: ctrl, state: state}
}

func (a *API) connector(connectorID int) (*charger.Connector, error) {
	switch connectorID {
	case charger.ConnectorMain:
		return a.state.ConnectorMain, nil
	case charger.ConnectorVice:
		return a.state.ConnectorVice, nil
	default:
		return nil, fmt.Errorf("command: invalid connector id %d", connectorID)
	}
}

func sleepOrDone(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StartCharging authorizes charging at current amps on connectorID, waiting
// first for the connector to report a live current reading, then retrying
// the Authorize up to maxRetries times (retrySpacing apart) until the
// reported current converges to within currentTolerance of the request.
func (a *API) StartCharging(ctx context.Context, current, connectorID int) error {
	conn, err := a.connector(connectorID)
	if err != nil {
		return err
	}

	for i := 0; i < 5; i++ {
		if _, ok := conn.Current.Float64(); ok {
			break
		}
		if err := sleepOrDone(ctx, time.Second); err != nil {
			return err
		}
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		ok, err := a.ctrl.SendAuthorize(ctx, wire.PurposeStart, current, connectorID)
		switch {
		case err != nil:
			lastErr = err
		case !ok:
			lastErr = fmt.Errorf("command: charger rejected start authorize")
		default:
			lastErr = nil
		}

		if reported, ok := conn.Current.Float64(); ok {
			diff := reported - float64(current)
			if diff >= -currentTolerance && diff <= currentTolerance {
				return nil
			}
		}

		if err := sleepOrDone(ctx, retrySpacing); err != nil {
			return err
		}
	}
	if lastErr != nil {
		return fmt.Errorf("command: start charging did not converge: %w", lastErr)
	}
	return fmt.Errorf("command: start charging did not converge to %dA on connector %d", current, connectorID)
}

// StopCharging authorizes a stop at the connector's configured minimum
// current, then retries until the connector's chargeStatus reports
// "finish".
func (a *API) StopCharging(ctx context.Context, connectorID int) error {
	conn, err := a.connector(connectorID)
	if err != nil {
		return err
	}

	minCurrent, _ := conn.MiniCurrent.Value().(int)

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		ok, err := a.ctrl.SendAuthorize(ctx, wire.PurposeStop, minCurrent, connectorID)
		switch {
		case err != nil:
			lastErr = err
		case !ok:
			lastErr = fmt.Errorf("command: charger rejected stop authorize")
		default:
			lastErr = nil
		}

		if status, _ := conn.ChargeStatus.Value().(string); status == "finish" {
			return nil
		}

		if err := sleepOrDone(ctx, retrySpacing); err != nil {
			return err
		}
	}
	if lastErr != nil {
		return fmt.Errorf("command: stop charging did not converge: %w", lastErr)
	}
	return fmt.Errorf("command: stop charging did not converge on connector %d", connectorID)
}
