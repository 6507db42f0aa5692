package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshade/carbon-dashboard/internal/config"
)

// newRootCmd builds the command tree. Flags override values read from the
// environment and .env.
func newRootCmd() *cobra.Command {
	var (
		cfg     config.Config
		loadErr error
	)

	root := &cobra.Command{
		Use:           "carbon-api",
		Short:         "Carbon accounting dashboard API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if loadErr != nil {
				return loadErr
			}
			return applyFlags(cmd, &cfg)
		},
	}
	cfg, loadErr = config.Load()

	root.PersistentFlags().String("log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", cfg.LogFormat, "log format (console or json)")
	root.PersistentFlags().String("factors", cfg.FactorsFile, "YAML file of emission factor overrides")

	root.AddCommand(newServeCmd(&cfg), newFactorsCmd(&cfg))
	return root
}

func newServeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Example: `  # Serve with the in-memory store
  carbon-api serve

  # Serve from Postgres on a custom port
  carbon-api serve --addr :9000 --database-url postgres://localhost/carbon`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), *cfg)
		},
	}

	cmd.Flags().String("addr", cfg.HTTPAddress, "address to listen on")
	cmd.Flags().String("database-url", cfg.DatabaseURL, "Postgres connection string; empty uses the in-memory store")
	cmd.Flags().Duration("narrative-timeout", cfg.NarrativeTimeout, "time allowed for narrative generation")
	return cmd
}

func newFactorsCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "factors",
		Short: "Print the effective emission factors as an override file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := cfg.FactorTable()
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(table.Overrides()); err != nil {
				return fmt.Errorf("encode factors: %w", err)
			}
			return enc.Close()
		},
	}
}

// applyFlags copies explicitly set flags onto cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	stringFlags := []struct {
		name string
		dst  *string
	}{
		{"log-level", &cfg.LogLevel},
		{"log-format", &cfg.LogFormat},
		{"factors", &cfg.FactorsFile},
		{"addr", &cfg.HTTPAddress},
		{"database-url", &cfg.DatabaseURL},
	}
	for _, s := range stringFlags {
		if flags.Lookup(s.name) == nil || !flags.Changed(s.name) {
			continue
		}
		v, err := flags.GetString(s.name)
		if err != nil {
			return err
		}
		*s.dst = v
	}

	if flags.Lookup("narrative-timeout") != nil && flags.Changed("narrative-timeout") {
		v, err := flags.GetDuration("narrative-timeout")
		if err != nil {
			return err
		}
		if v <= 0 {
			return fmt.Errorf("narrative-timeout must be positive, got %s", v)
		}
		cfg.NarrativeTimeout = v
	}
	return nil
}
