// Package bridge wires a decoded charger.State to Home Assistant over MQTT:
// it builds and publishes the discovery payload, republishes availability,
// and dispatches inbound commands (the charging switch, the desired-current
// number) to the command API.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/matemat13/ha-s-charge/internal/charger"
	"github.com/matemat13/ha-s-charge/internal/command"
	"github.com/matemat13/ha-s-charge/internal/mqttentity"
)

const availabilityPeriod = 3 * time.Second

// Commander is the subset of command.API the bridge drives, so tests can
// substitute a fake.
type Commander interface {
	StartCharging(ctx context.Context, current, connectorID int) error
	StopCharging(ctx context.Context, connectorID int) error
}

var _ Commander = (*command.API)(nil)

// Bridge owns every MQTT entity manager for one station and the wiring
// between charger.State updates and MQTT publishes.
type Bridge struct {
	log    *log.Logger
	client mqtt.Client
	serial string
	state  *charger.State
	cmd    Commander

	switchMgr *mqttentity.Switch
	numberMgr *mqttentity.Number

	managers       []mqttentity.Manager
	byCommandTopic map[string]mqttentity.Manager

	desiredCurrent atomic.Int32
}

// New builds a Bridge. logger should carry a "[bridge]"-style prefix.
func New(logger *log.Logger, client mqtt.Client, serial string, state *charger.State, cmd Commander) *Bridge {
	b := &Bridge{log: logger, client: client, serial: serial, state: state, cmd: cmd}

	b.switchMgr = mqttentity.NewSwitch("charging", "Charging")
	// Min/Max are placeholders until Run reads the real bounds off
	// state.ConnectorMain once the station has reported in.
	b.numberMgr = mqttentity.NewNumber("set_current", "Set current", "A", 0, 0, 1)
	b.desiredCurrent.Store(6)

	b.managers = []mqttentity.Manager{b.switchMgr, b.numberMgr}
	for _, p := range state.PublishableParams() {
		mgr := mqttentity.NewNumberDiag(slug(p.HumanName), titleCase(p.HumanName), p.Unit, p.DeviceClass)
		b.managers = append(b.managers, mgr)
		param := p
		param.OnUpdate(func(v any) { b.publishState(mgr, v) })
	}

	b.byCommandTopic = make(map[string]mqttentity.Manager, 2)
	for _, m := range b.managers {
		if m.CommandTopic() != "" {
			b.byCommandTopic[m.CommandTopic()] = m
		}
	}
	return b
}

// Run blocks until the station's state is fully initialized, publishes the
// discovery payload and initial state/availability, subscribes every
// command topic, and keeps republishing availability until ctx is done.
func (b *Bridge) Run(ctx context.Context) error {
	for !b.state.Initialized() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}

	if min, ok := b.state.ConnectorMain.MiniCurrent.Float64(); ok {
		b.numberMgr.Min = min
	}
	if max, ok := b.state.ConnectorMain.MaxCurrent.Float64(); ok {
		b.numberMgr.Max = max
	}

	if err := b.publishDiscovery(); err != nil {
		return fmt.Errorf("bridge: publish discovery: %w", err)
	}

	for topic, mgr := range b.byCommandTopic {
		m := mgr
		token := b.client.Subscribe(topic, 1, b.dispatch(m))
		if token.Wait() && token.Error() != nil {
			return fmt.Errorf("bridge: subscribe %s: %w", topic, token.Error())
		}
	}

	statusToken := b.client.Subscribe("homeassistant/status", 0, func(c mqtt.Client, msg mqtt.Message) {
		if string(msg.Payload()) == "online" {
			b.log.Printf("[bridge] home assistant restarted, republishing discovery")
			if err := b.publishDiscovery(); err != nil {
				b.log.Printf("[bridge] ERROR republishing discovery: %v", err)
			}
		}
	})
	if statusToken.Wait() && statusToken.Error() != nil {
		b.log.Printf("[bridge] WARNING subscribe homeassistant/status: %v", statusToken.Error())
	}

	b.publishState(b.switchMgr, b.state.IsCharging())
	b.publishState(b.numberMgr, int(b.desiredCurrent.Load()))
	b.publishAvailability(true)

	ticker := time.NewTicker(availabilityPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			b.publishAvailability(false)
			return ctx.Err()
		case <-ticker.C:
			b.publishAvailability(true)
		}
	}
}

func (b *Bridge) discoveryTopic() string {
	return fmt.Sprintf("homeassistant/device/scharge%s/config", b.serial)
}

func (b *Bridge) publishDiscovery() error {
	cmps := make(map[string]any, len(b.managers))
	for _, m := range b.managers {
		cmps[m.UniqueID()] = m.Discovery()
	}

	payload := map[string]any{
		"dev": map[string]any{
			"ids":  b.serial,
			"name": "SCharge",
			"mf":   "Joint Charging",
			"mdl":  "EVCD2",
			"sw":   stringValue(b.state.SVersion),
			"sn":   b.serial,
			"hw":   stringValue(b.state.HVersion),
		},
		"o": map[string]any{
			"name": "scharge-bridge",
			"sw":   "1.0",
			"url":  "https://github.com/matemat13/ha-s-charge",
		},
		"cmps":        cmps,
		"state_topic": "scharge/state",
		"qos":         2,
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	token := b.client.Publish(b.discoveryTopic(), 1, true, raw)
	token.Wait()
	return token.Error()
}

func stringValue(p *charger.Parameter) string {
	v := p.Value()
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func (b *Bridge) publishState(mgr mqttentity.Manager, value any) {
	token := b.client.Publish(mgr.StateTopic(), 0, mgr.Retain(), mgr.RenderState(value))
	token.Wait()
	if err := token.Error(); err != nil {
		b.log.Printf("[bridge] WARNING publish %s failed: %v", mgr.StateTopic(), err)
	}
}

func (b *Bridge) publishAvailability(available bool) {
	for _, m := range b.managers {
		token := b.client.Publish(m.AvailabilityTopic(), 0, true, mqttentity.RenderAvailability(available))
		token.Wait()
	}
}

func (b *Bridge) dispatch(mgr mqttentity.Manager) mqtt.MessageHandler {
	return func(c mqtt.Client, msg mqtt.Message) {
		switch mgr {
		case b.switchMgr:
			b.processSwitchCharging(string(msg.Payload()))
		case b.numberMgr:
			b.processSetCurrent(string(msg.Payload()))
		default:
			b.log.Printf("[bridge] WARNING no handler for command topic %s", mgr.CommandTopic())
		}
	}
}
