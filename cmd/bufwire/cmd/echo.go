package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bufwire/bufwire/internal/config"
	"github.com/bufwire/bufwire/internal/server"
)

var echoCmd = &cobra.Command{
	Use:   "echo",
	Short: "Run a local echo server for transport testing",
	Long: `Echo runs an HTTP server that reflects every POST body back with
status 200. Clients can inject failure statuses with the X-Echo-Status
request header to exercise flush error handling. Prometheus metrics are
served on /metrics and liveness on /health.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg.LogLevel)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := server.NewEchoServer(
			server.WithAddr(cfg.Echo.Addr),
			server.WithLogger(logger),
		)
		return srv.Start(ctx)
	},
}

func init() {
	echoCmd.Flags().String("addr", "", "listen address (overrides config)")
	_ = viper.BindPFlag("echo.addr", echoCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(echoCmd)
}
