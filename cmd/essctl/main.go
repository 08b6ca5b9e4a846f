package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/essgate/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

type globalOpts struct {
	configPath string
	envFile    string
}

func newRootCmd() *cobra.Command {
	opts := &globalOpts{
		configPath: os.Getenv("CONFIG_PATH"),
		envFile:    ".env",
	}

	root := &cobra.Command{
		Use:           "essctl",
		Short:         "Herramientas de operación del gateway ESS móvil",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("env file %s: %w", opts.envFile, err)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", opts.configPath, "ruta a config.yaml (env CONFIG_PATH)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", opts.envFile, "archivo .env a cargar si existe")

	root.AddCommand(newMigrateCmd(opts))
	root.AddCommand(newEmployeeCmd(opts))
	root.AddCommand(newDeviceCmd())
	return root
}

func (o *globalOpts) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
