package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tetherworker/internal/config"
)

// serveFlags are the serve-time overrides; only flags the user set are applied.
type serveFlags struct {
	configPath string
	envFile    string
	addr       string
	logLevel   string
	logFormat  string
	cors       bool
	swagger    bool
}

func newRootCmd() *cobra.Command {
	sf := &serveFlags{}
	root := &cobra.Command{
		Use:           "tetherworker",
		Short:         "Inference worker exposing /health and /infer",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServeCmd(cmd, sf)
		},
	}
	addServeFlags(root, sf)

	serveCmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the HTTP server (default)",
		Example: "  tetherworker serve --config worker.yaml\n  PORT=7000 tetherworker serve --log-format console",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServeCmd(cmd, sf)
		},
	}
	addServeFlags(serveCmd, sf)

	root.AddCommand(serveCmd, newInferCmd(), newHealthCmd(), &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "tetherworker", version)
		},
	})
	return root
}

func addServeFlags(cmd *cobra.Command, sf *serveFlags) {
	f := cmd.Flags()
	f.StringVar(&sf.configPath, "config", os.Getenv("TETHER_CONFIG"), "Config file (.yaml|.yml|.json|.toml)")
	f.StringVar(&sf.envFile, "env-file", "", "dotenv file loaded before reading the environment (default .env if present)")
	f.StringVar(&sf.addr, "addr", "", "HTTP listen address (default 0.0.0.0:6000)")
	f.StringVar(&sf.logLevel, "log-level", "", "Log level: debug|info|warn|error")
	f.StringVar(&sf.logFormat, "log-format", "", "Log format: json|console")
	f.BoolVar(&sf.cors, "cors", false, "Enable CORS")
	f.BoolVar(&sf.swagger, "swagger", false, "Serve Swagger UI under /swagger/")
}

// resolveConfig applies defaults < file < env < flags.
func resolveConfig(cmd *cobra.Command, sf *serveFlags) (config.Config, error) {
	cfg := config.Defaults()
	if sf.configPath != "" {
		fileCfg, err := config.Load(sf.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = config.Merge(cfg, fileCfg)
	}
	if cmd.Flags().Changed("env-file") {
		cfg.EnvFile = sf.envFile
	}
	if err := config.LoadDotEnv(cfg.EnvFile); err != nil {
		return cfg, err
	}
	cfg = config.ApplyEnv(cfg)

	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Addr = sf.addr
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = sf.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = sf.logFormat
	}
	if flags.Changed("cors") {
		cfg.CORSEnabled = sf.cors
	}
	if flags.Changed("swagger") {
		cfg.Swagger = sf.swagger
	}
	return cfg, nil
}
