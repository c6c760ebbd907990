// Package cmd provides the command-line interface for the TDMA nodes.
package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nexuslab/tdma/config"
	"github.com/nexuslab/tdma/radio"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tdma",
	Short: "TDMA access scheduling for a shared virtual radio link.",
	Long: `The tdma tool runs one node of a time-division multiple access protocol ` +
		`on a shared half-duplex virtual link. The gateway role coordinates the ` +
		`medium by broadcasting transmission windows; the peripheral role transmits ` +
		`once per window in the slot its identity reserves.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func addLinkFlags(c *cobra.Command) {
	c.Flags().String("config", "", "path to a TOML configuration file")
	c.Flags().String("radio", "", "path to the virtual radio link")
	c.Flags().Duration("slot", 0, "slot length")
	c.Flags().Duration("guard", 0, "guard length")
	c.Flags().Duration("ttl", 0, "message time to live on the medium")
	c.Flags().Duration("poll", 0, "poll interval while waiting for traffic")
	c.Flags().String("log-level", "", "log level (trace, debug, info, warn, error)")
}

// resolveConfig layers the configuration sources: defaults, then the TOML
// file, then TDMA_* environment variables, then flags.
func resolveConfig(c *cobra.Command) (config.Config, error) {
	cfg := config.Default()

	if path, _ := c.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if radioPath := os.Getenv("TDMA_RADIO"); radioPath != "" {
		cfg.Radio = radioPath
	}
	if level := os.Getenv("TDMA_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	if radioPath, _ := c.Flags().GetString("radio"); radioPath != "" {
		cfg.Radio = radioPath
	}
	if slot, _ := c.Flags().GetDuration("slot"); slot != 0 {
		cfg.SlotLength = config.Duration(slot)
	}
	if guard, _ := c.Flags().GetDuration("guard"); guard != 0 {
		cfg.GuardLength = config.Duration(guard)
	}
	if ttl, _ := c.Flags().GetDuration("ttl"); ttl != 0 {
		cfg.TTL = config.Duration(ttl)
	}
	if poll, _ := c.Flags().GetDuration("poll"); poll != 0 {
		cfg.PollInterval = config.Duration(poll)
	}
	if level, _ := c.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}

	return cfg, nil
}

func newLogger(level string) (zerolog.Logger, error) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(parsed).
		With().Timestamp().Logger()

	return logger, nil
}

func openRadio(cfg config.Config) (radio.Endpoint, error) {
	path, err := cfg.RadioPath()
	if err != nil {
		return nil, err
	}

	// The medium may corrupt bits; garbled traffic must decode lossily and
	// be discarded by the protocol, not kill the process here.
	return radio.Open(path, radio.WithLossyDecoding())
}
