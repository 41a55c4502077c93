package main

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"swasthsetu/config"
	"swasthsetu/database"
)

// portListener describes a socket already listening on the wanted port,
// parsed from /proc/net/tcp.
type portListener struct {
	Network string
	IP      string
	Port    int
}

// probePort checks whether the configured address can be bound.
func probePort(host string, port int) error {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	l.Close()
	return nil
}

// waitForPort retries the bind probe until the port frees or the wait budget
// runs out. A zero budget means a single probe.
func waitForPort(host string, port, waitSeconds int) error {
	err := probePort(host, port)
	if err == nil {
		return nil
	}
	if waitSeconds <= 0 {
		return err
	}

	deadline := time.Now().Add(time.Duration(waitSeconds) * time.Second)
	fmt.Printf("Port %d is busy. Waiting up to %ds for it to free...\n", port, waitSeconds)

	for time.Now().Before(deadline) {
		time.Sleep(time.Second)
		if err = probePort(host, port); err == nil {
			return nil
		}
	}
	return err
}

// diagnosePort reports who is listening on the port, best effort via
// /proc/net/tcp and /proc/net/tcp6. No processes are touched: freeing the
// port is deliberately left to the operator.
func diagnosePort(port int) []portListener {
	var out []portListener
	for _, src := range []struct {
		path    string
		network string
	}{
		{"/proc/net/tcp", "tcp4"},
		{"/proc/net/tcp6", "tcp6"},
	} {
		out = append(out, scanProcNet(src.path, src.network, port)...)
	}
	return out
}

// scanProcNet parses one /proc/net table for LISTEN sockets on the port.
func scanProcNet(path, network string, port int) []portListener {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	const stateListen = "0A"
	var out []portListener

	scanner := bufio.NewScanner(f)
	scanner.Scan() // header
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 || fields[3] != stateListen {
			continue
		}
		local := strings.Split(fields[1], ":")
		if len(local) != 2 {
			continue
		}
		p, err := strconv.ParseInt(local[1], 16, 32)
		if err != nil || int(p) != port {
			continue
		}
		out = append(out, portListener{
			Network: network,
			IP:      decodeProcIP(local[0]),
			Port:    port,
		})
	}
	return out
}

// decodeProcIP converts the hex address format of /proc/net/tcp into dotted
// form. IPv6 addresses are returned as raw hex.
func decodeProcIP(hexIP string) string {
	if len(hexIP) != 8 {
		return hexIP
	}
	var parts [4]int64
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseInt(hexIP[i*2:i*2+2], 16, 16)
		if err != nil {
			return hexIP
		}
		// /proc/net/tcp stores IPv4 little-endian
		parts[3-i] = v
	}
	return fmt.Sprintf("%d.%d.%d.%d", parts[0], parts[1], parts[2], parts[3])
}

// reportPortBusy prints actionable diagnostics when the port cannot be bound.
func reportPortBusy(host string, port int, bindErr error) {
	fmt.Printf("Cannot bind %s:%d: %v\n", host, port, bindErr)
	listeners := diagnosePort(port)
	if len(listeners) == 0 {
		fmt.Println("No listening socket found in /proc/net; the port may be held in TIME_WAIT.")
		return
	}
	for _, l := range listeners {
		fmt.Printf("  listener: %s %s:%d\n", l.Network, l.IP, l.Port)
	}
	fmt.Println("Stop the process holding the port, or start with a different -port.")
}

// runPreflight performs the -check mode: configuration validation, database
// connectivity and port availability. Returns the process exit code.
func runPreflight() int {
	failed := false

	fmt.Println("Checking configuration...")
	if problems := config.Settings.Validate(); len(problems) > 0 {
		failed = true
		for _, p := range problems {
			fmt.Printf("  ✗ %s\n", p)
		}
	} else {
		fmt.Println("  ✓ configuration valid")
	}

	fmt.Println("Checking database...")
	if err := database.InitDB(); err != nil {
		failed = true
		fmt.Printf("  ✗ %v\n", err)
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if database.SQLiteUp(ctx) {
			fmt.Println("  ✓ database reachable, migrations applied")
		} else {
			failed = true
			fmt.Println("  ✗ database did not answer ping")
		}
		cancel()
		database.CloseDB()
	}

	fmt.Printf("Checking port %d...\n", config.Settings.Port)
	if err := probePort(config.Settings.Host, config.Settings.Port); err != nil {
		failed = true
		reportPortBusy(config.Settings.Host, config.Settings.Port, err)
	} else {
		fmt.Println("  ✓ port available")
	}

	if failed {
		fmt.Println("\nPreflight failed.")
		return 1
	}
	fmt.Println("\nAll checks passed.")
	return 0
}
