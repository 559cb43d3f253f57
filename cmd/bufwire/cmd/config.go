package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bufwire/bufwire/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Config loads the configuration the same way send and echo do (file,
then environment overrides, then defaults) and prints the effective result
as YAML.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}

		if file := config.ConfigFileUsed(); file != "" {
			fmt.Fprintf(os.Stderr, "# loaded from %s\n", file)
		} else {
			fmt.Fprintln(os.Stderr, "# no config file found, defaults and environment only")
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
