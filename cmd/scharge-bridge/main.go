// Command scharge-bridge bridges one S-Charge AC charging station to a
// Home Assistant MQTT discovery model: it discovers the station over UDP
// broadcast, accepts its WebSocket connection, decodes its telemetry, and
// exposes a charging switch and a desired-current number over MQTT.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/matemat13/ha-s-charge/internal/bridge"
	"github.com/matemat13/ha-s-charge/internal/charger"
	"github.com/matemat13/ha-s-charge/internal/command"
	"github.com/matemat13/ha-s-charge/internal/config"
	"github.com/matemat13/ha-s-charge/internal/diag"
	"github.com/matemat13/ha-s-charge/internal/session"
	"github.com/matemat13/ha-s-charge/internal/wire"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	sessionLog := log.New(os.Stderr, "", log.LstdFlags)
	bridgeLog := log.New(os.Stderr, "[bridge] ", log.LstdFlags)
	diagLog := log.New(os.Stderr, "", log.LstdFlags)

	state := charger.NewState(cfg.Serial)

	ctrl := session.NewController(cfg.Serial, cfg.LocalIP, sessionLog)
	ctrl.OnMessage = func(msg *wire.Message) {
		if err := state.Update(msg); err != nil {
			sessionLog.Printf("WARNING: dropping %s: %v", msg.Action, err)
		}
	}

	cmdAPI := command.NewAPI(ctrl, state)
	mqttClient := connectMQTT(cfg, bridgeLog)
	br := bridge.New(bridgeLog, mqttClient, cfg.Serial, state, cmdAPI)
	diagSrv := diag.New(cfg.DiagAddr, diagLog, state)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigCh
		sessionLog.Printf("shutting down on signal")
		cancel()
	}()

	go func() {
		if err := diagSrv.Run(); err != nil {
			diagLog.Printf("[diag] WARNING diagnostics server failed, continuing without it: %v", err)
		}
	}()

	go func() {
		if err := br.Run(ctx); err != nil && ctx.Err() == nil {
			bridgeLog.Printf("[bridge] ERROR bridge loop ended: %v", err)
			cancel()
		}
	}()

	runErr := ctrl.Run(ctx, cfg.RecvPort)
	cancel()
	diagSrv.Close()

	// give the bridge's availability-false publish a moment to land before
	// the MQTT client goes down with the process.
	time.Sleep(200 * time.Millisecond)

	if runErr != nil && ctx.Err() == nil {
		sessionLog.Printf("ERROR: session ended: %v", runErr)
		os.Exit(1)
	}
	os.Exit(0)
}

func connectMQTT(cfg *config.Config, logger *log.Logger) mqtt.Client {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTHost, cfg.MQTTPort))
	opts.SetClientID(fmt.Sprintf("scharge-bridge-%s", cfg.Serial))
	opts.SetUsername(cfg.MQTTUser)
	opts.SetPassword(cfg.MQTTPass)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(10 * time.Second)
	opts.SetConnectionLostHandler(func(c mqtt.Client, err error) {
		logger.Printf("WARNING: mqtt connection lost: %v", err)
	})
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		logger.Printf("mqtt connected to %s:%d", cfg.MQTTHost, cfg.MQTTPort)
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		logger.Printf("ERROR: mqtt connect: %v", err)
		os.Exit(1)
	}
	return client
}
