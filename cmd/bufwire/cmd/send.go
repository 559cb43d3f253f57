package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bufwire/bufwire/internal/config"
	"github.com/bufwire/bufwire/pkg/transport"
)

var (
	sendData string
	sendHex  bool
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a payload through the buffered HTTP transport",
	Long: `Send writes a payload into the transport's outbound buffer, flushes it
as a single HTTP POST, and prints the response bytes to stdout.

The payload comes from --data, or from stdin when --data is not given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg.LogLevel)

		payload := []byte(sendData)
		if sendData == "" {
			payload, err = io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
		}
		if len(payload) == 0 {
			return fmt.Errorf("empty payload: pass --data or pipe bytes on stdin")
		}

		options, err := cfg.TransportOptions()
		if err != nil {
			return err
		}
		tr, err := transport.NewHTTPTransportFromOptions(
			cfg.Target.Host, cfg.Target.Path, options,
			transport.WithLogger(logger),
		)
		if err != nil {
			return err
		}
		defer func() { _ = tr.Close() }()

		if _, err := tr.Write(payload); err != nil {
			return err
		}
		if err := tr.Flush(cmd.Context()); err != nil {
			return err
		}

		response, err := io.ReadAll(tr)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		logger.Debug("response received", "bytes", len(response))

		if sendHex {
			fmt.Println(hex.EncodeToString(response))
			return nil
		}
		_, err = os.Stdout.Write(response)
		return err
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendData, "data", "", "payload bytes (default: read from stdin)")
	sendCmd.Flags().BoolVar(&sendHex, "hex", false, "print the response as hex instead of raw bytes")
	sendCmd.Flags().String("host", "", "target host, no scheme (overrides config)")
	sendCmd.Flags().String("path", "", "target URL path (overrides config)")
	_ = viper.BindPFlag("target.host", sendCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("target.path", sendCmd.Flags().Lookup("path"))

	rootCmd.AddCommand(sendCmd)
}
