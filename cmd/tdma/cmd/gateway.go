package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/nexuslab/tdma/monitoring"
	"github.com/nexuslab/tdma/recording"
	"github.com/nexuslab/tdma/tdma"
)

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Coordinate the shared medium as the TDMA gateway",
	Long: `Runs the gateway role: broadcast a window start time, verify the ` +
		`broadcast loops back within its TTL, then listen across the slot ` +
		`sequence until one slot passes silently. A medium that violates its ` +
		`contract terminates the process.`,
	RunE: runGateway,
}

func init() {
	addLinkFlags(gatewayCmd)
	gatewayCmd.Flags().Int("monitor-port", 0, "serve the monitoring API on this port")
	gatewayCmd.Flags().Bool("no-monitor", false, "disable the monitoring server")
	gatewayCmd.Flags().Bool("open-monitor", false, "open the monitoring URL in a browser")
	gatewayCmd.Flags().String("record", "", "record observed traffic into this SQLite database")

	rootCmd.AddCommand(gatewayCmd)
}

func runGateway(c *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(c)
	if err != nil {
		return err
	}

	if port, _ := c.Flags().GetInt("monitor-port"); port != 0 {
		cfg.Monitor.Enable = true
		cfg.Monitor.Port = port
	}
	if noMonitor, _ := c.Flags().GetBool("no-monitor"); noMonitor {
		cfg.Monitor.Enable = false
	}
	if open, _ := c.Flags().GetBool("open-monitor"); open {
		cfg.Monitor.Open = true
	}
	if record, _ := c.Flags().GetString("record"); record != "" {
		cfg.Recording.Enable = true
		cfg.Recording.Path = record
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	endpoint, err := openRadio(cfg)
	if err != nil {
		return err
	}
	defer endpoint.Close()

	gateway := tdma.MakeGatewayBuilder().
		WithEndpoint(endpoint).
		WithParams(cfg.Params()).
		WithLogger(logger).
		Build()

	if cfg.Recording.Enable {
		recorder := recording.New(cfg.Recording.Path)
		gateway.AcceptHook(recording.NewTrafficHook(recorder))
	}

	if cfg.Monitor.Enable {
		monitor := monitoring.NewMonitor()
		monitor.RegisterGateway(gateway)
		if cfg.Monitor.Port != 0 {
			monitor.WithPortNumber(cfg.Monitor.Port)
		}
		monitor.StartServer()

		if cfg.Monitor.Open {
			if err := browser.OpenURL(monitor.Addr()); err != nil {
				logger.Warn().Err(err).Msg("could not open monitor in browser")
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info().
		Str("radio", cfg.Radio).
		Dur("slot", cfg.Params().SlotLength).
		Dur("guard", cfg.Params().GuardLength).
		Dur("ttl", cfg.Params().TTL).
		Msg("gateway starting")

	if err := gateway.Run(ctx); !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("gateway terminated")
		atexit.Exit(1)
	}

	return nil
}
