package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/nexuslab/tdma/tdma"
)

var peripheralCmd = &cobra.Command{
	Use:   "peripheral",
	Short: "Contend for the shared medium as a TDMA peripheral",
	Long: `Runs the peripheral role: wait for the gateway's sync broadcast, ` +
		`sleep to the slot this node's identity reserves, and transmit one ` +
		`message per window. Identities must be unique across peripherals ` +
		`sharing a medium; the protocol cannot detect a duplicate.`,
	RunE: runPeripheral,
}

func init() {
	addLinkFlags(peripheralCmd)
	peripheralCmd.Flags().Int("id", 0, "node identity (positive integer, unique per peripheral)")

	rootCmd.AddCommand(peripheralCmd)
}

func runPeripheral(c *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(c)
	if err != nil {
		return err
	}

	if id, _ := c.Flags().GetInt("id"); id != 0 {
		cfg.Identity = id
	}

	if err := cfg.ValidatePeripheral(); err != nil {
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

	peripheral := tdma.MakePeripheralBuilder().
		WithEndpoint(endpoint).
		WithParams(cfg.Params()).
		WithLogger(logger).
		WithIdentity(cfg.Identity).
		Build()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info().
		Str("radio", cfg.Radio).
		Int("identity", cfg.Identity).
		Msg("peripheral starting")

	if err := peripheral.Run(ctx); !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("peripheral terminated")
		atexit.Exit(1)
	}

	return nil
}
