// armctl sends one JSON command to a running armend over the serial
// link and prints the ack, skipping interleaved telemetry. It is the
// headless equivalent of the desktop operator app's send path.
//
// Usage:
//
//	armctl -port /dev/ttyUSB0 '{"cmd":"ping"}'
//	armctl -port /dev/ttyUSB0 '{"cmd":"set_joints","targets":[90,45,120,90,0,30],"speed":0.5}'
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/patkersoxton-bit/armen/pkg/protocol"
	"github.com/patkersoxton-bit/armen/pkg/transport"
)

func main() {
	port := flag.String("port", "/dev/ttyUSB0", "serial port")
	baud := flag.Int("baud", 115200, "baud rate")
	timeout := flag.Duration("timeout", 2*time.Second, "ack wait timeout")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: armctl [flags] '<json command>'")
		os.Exit(2)
	}
	line := flag.Arg(0)

	// Fail early on garbage so typos do not reach the arm.
	if _, err := protocol.ParseCommand([]byte(line)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid command: %v\n", err)
		os.Exit(2)
	}

	tr, err := transport.OpenSerial(*port, *baud)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect: %v\n", err)
		os.Exit(1)
	}
	defer tr.Close()

	if err := tr.WriteLine([]byte(line)); err != nil {
		fmt.Fprintf(os.Stderr, "send: %v\n", err)
		os.Exit(1)
	}

	deadline := time.After(*timeout)
	for {
		select {
		case <-deadline:
			fmt.Fprintln(os.Stderr, "no ack within timeout")
			os.Exit(1)
		case frame, ok := <-tr.Lines():
			if !ok {
				fmt.Fprintln(os.Stderr, "link closed")
				os.Exit(1)
			}
			// Telemetry keeps flowing while we wait for the ack.
			var probe struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(frame, &probe); err != nil {
				continue
			}
			if probe.Type == protocol.TypeTelemetry {
				continue
			}
			fmt.Println(string(frame))
			return
		}
	}
}
