package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/netbuddy/netbuddy/internal/config"
	"github.com/netbuddy/netbuddy/internal/probe"
	"github.com/netbuddy/netbuddy/internal/report"
	"github.com/netbuddy/netbuddy/internal/session"
	"github.com/netbuddy/netbuddy/internal/ui"
	"github.com/netbuddy/netbuddy/internal/watch"
	"github.com/netbuddy/netbuddy/internal/ws"
)

func main() {
	configPath := pflag.String("config", "netbuddy.yaml", "Path to config file")
	port := pflag.Int("port", 0, "Override server port (watch mode)")
	mockMode := pflag.Bool("mock", false, "Use synthetic probe data (watch mode)")
	quiet := pflag.Bool("quiet", false, "Suppress console narration")
	pflag.Parse()

	args := pflag.Args()
	cmd := "help"
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	sess := session.New(cfg)
	if *quiet {
		sess.SetOutput(io.Discard)
	}

	// Help describes how to get a session; it doesn't need one.
	if cmd == "help" {
		sess.Help()
		return
	}

	if err := sess.Start(); err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exit := 0
	switch cmd {
	case "test", "test-connection":
		summary, err := sess.TestConnection(ctx)
		if err != nil {
			log.Fatalf("Connectivity test failed: %v", err)
		}
		fmt.Println(ui.PassFail(!summary.AllFailed(), "Device is online.", "Device appears to be offline."))
		if summary.AllFailed() {
			exit = 1
		}

	case "ping":
		if len(args) != 1 {
			log.Fatalf("Usage: netbuddy ping <address>")
		}
		r, err := sess.Ping(ctx, args[0])
		if err != nil {
			log.Fatalf("Ping failed: %v", err)
		}
		if !r.OK {
			exit = 1
		}

	case "measure", "measure-ping":
		address := ""
		if len(args) > 0 {
			address = args[0]
		}
		if _, err := sess.MeasurePing(ctx, address); err != nil {
			exit = 1
		}

	case "send":
		if len(args) != 2 {
			log.Fatalf("Usage: netbuddy send <url> <data>")
		}
		resp, err := sess.Send(ctx, []byte(args[1]), args[0])
		if err != nil {
			log.Fatalf("Send failed: %v", err)
		}
		if !resp.OK() {
			exit = 1
		}

	case "ip":
		if _, err := sess.MyIP(); err != nil {
			log.Fatalf("Failed to determine IP: %v", err)
		}

	case "hostname":
		if _, err := sess.MyHostname(); err != nil {
			log.Fatalf("Failed to determine hostname: %v", err)
		}

	case "lookup":
		if len(args) != 1 {
			log.Fatalf("Usage: netbuddy lookup <address>")
		}
		if _, err := sess.Hostname(ctx, args[0]); err != nil {
			exit = 1
		}

	case "ips":
		if _, err := sess.IPs(ctx); err != nil {
			log.Fatalf("Scan failed: %v", err)
		}

	case "hostnames":
		if _, err := sess.Hostnames(ctx); err != nil {
			log.Fatalf("Scan failed: %v", err)
		}

	case "watch":
		runWatch(ctx, cancel, cfg, *mockMode)

	default:
		sess.Help()
		log.Fatalf("Unknown command %q", cmd)
	}

	sess.Quit()
	os.Exit(exit)
}

// runWatch wires the poller, store, broadcaster, and server, then
// blocks serving until interrupted.
func runWatch(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, mock bool) {
	store := report.NewStore()
	broadcaster := ws.NewBroadcaster(store, cfg.Watch.BroadcastThrottle.Std(), cfg.Watch.SnapshotInterval.Std())

	var pinger probe.Pinger
	if mock {
		log.Println("Starting in mock mode (synthetic probes)")
		pinger = &probe.Synthetic{FailRate: 0.3}
	} else {
		log.Println("Starting in real mode (OS ping probes)")
		pinger = &probe.ExecPinger{
			Count:        cfg.Probe.Count,
			PayloadBytes: cfg.Probe.PayloadBytes,
			Timeout:      cfg.Probe.Timeout.Std(),
		}
	}

	watcher := watch.NewWatcher(cfg, store, broadcaster, pinger)
	go watcher.Start(ctx)

	server := ws.NewServer(store, broadcaster, cfg.FailThreshold(), cfg.Server.AllowedOrigins, cfg.Server.AuthToken)
	mux := http.NewServeMux()
	server.SetupRoutes(mux)

	// Cancelling the context stops the poller and shuts the server
	// down; runWatch returns and main unwinds through Quit.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down...")
		cancel()
	}()

	if err := ws.ListenAndServe(ctx, cfg.Server.Host, cfg.Server.Port, mux); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
