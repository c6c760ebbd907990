package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nexuslab/tdma/radio"
)

var loopbackCmd = &cobra.Command{
	Use:   "loopback",
	Short: "Self-test the link by reading back own writes",
	Long: `Writes numbered messages to the link and verifies each one reads ` +
		`back exactly, with an empty read in between. Use it to confirm a ` +
		`virtual link behaves as an ideal medium before scheduling traffic ` +
		`on it.`,
	RunE: runLoopback,
}

func init() {
	loopbackCmd.Flags().String("radio", "", "path to the virtual link")
	loopbackCmd.Flags().Int("count", 10, "number of round trips to verify")
	loopbackCmd.Flags().Bool("mem", false, "test an in-memory loopback instead of a link file")

	rootCmd.AddCommand(loopbackCmd)
}

func runLoopback(c *cobra.Command, _ []string) error {
	count, _ := c.Flags().GetInt("count")

	var endpoint radio.Endpoint
	if mem, _ := c.Flags().GetBool("mem"); mem {
		endpoint = radio.NewLoopback()
	} else {
		path, _ := c.Flags().GetString("radio")
		if path == "" {
			return fmt.Errorf("loopback requires --radio or --mem")
		}

		opened, err := radio.Open(path)
		if err != nil {
			return err
		}
		defer opened.Close()
		endpoint = opened
	}

	for i := 0; i < count; i++ {
		if err := roundTrip(endpoint, i); err != nil {
			return err
		}
	}

	fmt.Printf("loopback ok: %d round trips\n", count)

	return nil
}

func roundTrip(endpoint radio.Endpoint, i int) error {
	got, err := endpoint.Read()
	if err != nil {
		return err
	}
	if got != "" {
		return fmt.Errorf("expected no pending message but found %q", got)
	}

	msg := fmt.Sprintf("[%d]", i)
	if err := endpoint.Write(msg); err != nil {
		return err
	}
	if err := endpoint.Flush(); err != nil {
		return err
	}

	got, err = endpoint.Read()
	if err != nil {
		return err
	}
	if got != msg {
		return fmt.Errorf("expected to read %q but found %q", msg, got)
	}

	return nil
}
