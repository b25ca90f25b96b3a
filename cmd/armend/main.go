// armend is the servo-arm controller daemon. It reads JSON commands
// from the operator link, runs the motion control loop, drives the
// servo outputs and serves the telemetry dashboard.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/patkersoxton-bit/armen/internal/config"
	"github.com/patkersoxton-bit/armen/internal/log"
	"github.com/patkersoxton-bit/armen/pkg/motion"
	"github.com/patkersoxton-bit/armen/pkg/sink"
	"github.com/patkersoxton-bit/armen/pkg/transport"
	"github.com/patkersoxton-bit/armen/pkg/web"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults used if empty)")
	serialPort := flag.String("port", "", "serial port override (e.g. /dev/ttyUSB0)")
	mock := flag.Bool("mock", false, "use the mock actuation sink")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Error("config load failed", "path", *configPath, "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *serialPort != "" {
		cfg.Serial.Port = *serialPort
	}
	if *debug {
		cfg.LogLevel = "debug"
	}
	log.Init(cfg.LogLevel)

	// Operator link: serial when configured, stdio otherwise.
	var tr transport.Transport
	if cfg.Serial.Port != "" {
		serialTr, err := transport.OpenSerial(cfg.Serial.Port, cfg.Serial.Baud)
		if err != nil {
			log.Error("serial open failed", "err", err)
			os.Exit(1)
		}
		tr = serialTr
	} else {
		log.Info("no serial port configured, using stdio")
		tr = transport.OpenStdio()
	}
	defer tr.Close()

	// Actuation sink: GPIO PWM on the arm, mock elsewhere.
	var snk sink.Sink
	if *mock || cfg.Servos.Mock {
		log.Info("using mock actuation sink")
		snk = sink.NewMock()
	} else {
		gpio, err := sink.OpenGPIO(cfg.Servos.Pins)
		if err != nil {
			log.Error("gpio open failed", "err", err)
			os.Exit(1)
		}
		snk = gpio
	}
	defer snk.Detach()

	ctrl := motion.New(motion.Config{
		Tick:            cfg.Tick(),
		TelemetryPeriod: cfg.TelemetryPeriod(),
		Watchdog:        cfg.WatchdogWindow(),
		MaxDegPerSec:    cfg.Control.MaxDegPerSec,
		DefaultSpeed:    cfg.Control.DefaultSpeed,
	}, snk, tr.Lines(), tr)

	if cfg.Web.Enabled {
		srv := web.NewServer(cfg.Web.Listen, ctrl)
		ctrl.OnTelemetry = srv.PublishTelemetry
		srv.StartAsync()
		defer srv.Shutdown()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down")
		cancel()
	}()

	if err := ctrl.Run(ctx); err != nil && err != context.Canceled {
		log.Error("control loop ended", "err", err)
		os.Exit(1)
	}
}
