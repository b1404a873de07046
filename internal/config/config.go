// Package config resolves the bridge's CLI arguments and environment
// knobs into a ready-to-use configuration, reading each environment knob
// through getEnv with a default.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

// Config is everything one bridge invocation needs to run.
type Config struct {
	Serial      string
	LocalIP     string
	RecvPort    int // 0 means "bind an ephemeral port"
	MQTTHost    string
	MQTTPort    int
	MQTTUser    string
	MQTTPass    string
	LogLevel    string
	DiagAddr    string
}

// Usage is printed to stderr when required positional arguments are
// missing.
const Usage = "usage: scharge-bridge <serial> <local-ip|auto> <recv-port|auto> <user@host:port> <password>"

// Parse builds a Config from CLI positional arguments plus environment
// knobs. It never touches the network except via resolveAutoIP/"auto".
func Parse(args []string) (*Config, error) {
	if len(args) < 5 {
		return nil, fmt.Errorf("%s", Usage)
	}

	serial, ipArg, portArg, userHostPort, password := args[0], args[1], args[2], args[3], args[4]

	ip := ipArg
	if ipArg == "auto" {
		resolved, err := resolveAutoIP()
		if err != nil {
			return nil, fmt.Errorf("config: auto IP resolution: %w", err)
		}
		ip = resolved
	}

	port := 0
	if portArg != "auto" {
		p, err := strconv.Atoi(portArg)
		if err != nil {
			return nil, fmt.Errorf("config: invalid recv-port %q: %w", portArg, err)
		}
		port = p
	}

	user, host, mqttPort, err := splitUserHostPort(userHostPort)
	if err != nil {
		return nil, fmt.Errorf("config: invalid mqtt target %q: %w", userHostPort, err)
	}

	return &Config{
		Serial:   serial,
		LocalIP:  ip,
		RecvPort: port,
		MQTTHost: host,
		MQTTPort: mqttPort,
		MQTTUser: user,
		MQTTPass: password,
		LogLevel: getEnv("SCHARGE_LOG_LEVEL", "info"),
		DiagAddr: getEnv("SCHARGE_DIAG_ADDR", "127.0.0.1:8090"),
	}, nil
}

// splitUserHostPort parses "user@host:port".
func splitUserHostPort(s string) (user, host string, port int, err error) {
	at := strings.IndexByte(s, '@')
	if at < 0 {
		return "", "", 0, fmt.Errorf("missing '@' separating user from host:port")
	}
	user = s[:at]
	hostPort := s[at+1:]

	h, p, err := net.SplitHostPort(hostPort)
	if err != nil {
		return "", "", 0, err
	}
	portNum, err := strconv.Atoi(p)
	if err != nil {
		return "", "", 0, fmt.Errorf("invalid port %q: %w", p, err)
	}
	return user, h, portNum, nil
}

// resolveAutoIP finds the local address that would be used to reach the
// LAN, via a dummy UDP "connect" that never sends a packet — the same
// trick the original tool's get_ip() used, falling back to loopback if no
// route exists.
func resolveAutoIP() (string, error) {
	conn, err := net.Dial("udp4", "10.254.254.254:1")
	if err != nil {
		return "127.0.0.1", nil
	}
	defer conn.Close()
	local, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return "127.0.0.1", nil
	}
	return local.IP.String(), nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
