package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/alexiusacademia/civcalc/internal/config"
	"github.com/alexiusacademia/civcalc/internal/observability"
	"github.com/alexiusacademia/civcalc/internal/service"
	"github.com/alexiusacademia/civcalc/internal/session"
	"github.com/alexiusacademia/civcalc/internal/tree"
	"github.com/alexiusacademia/civcalc/internal/version"
)

var (
	cfgFile        string
	flagServiceURL string
	flagLogLevel   string

	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "civcalc",
	Short: "Structural design calculator client",
	Long: `civcalc - client for the structural design calculation service

Fill in a design form from the command line, send it to the calculation
service and read back the results. Supported design categories:
  - beam              simply supported RC beam (flexure + shear)
  - slab              one-way slab strip
  - column            short tied column
  - footing           isolated square footing
  - combined_footing  combined / strap footing (single or two pads)

The service also renders HTML reports as PDF and produces plan,
elevation and DXF drawings for each design.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.New(), cfgFile)
		if err != nil {
			return err
		}
		if flagServiceURL != "" {
			cfg.Service.URL = flagServiceURL
		}
		if flagLogLevel != "" {
			cfg.Logger.Level = flagLogLevel
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		appConfig = cfg
		observability.InitializeLogger(cfg.Logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		observability.Sync()
	},
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  ╔═══════════════════════════════════════════════════════════╗")
		fmt.Fprintln(out, "  ║                                                           ║")
		fmt.Fprintf(out, "  ║   civcalc v%-47s║\n", version.Version)
		fmt.Fprintln(out, "  ║   Structural Design Calculator Client                     ║")
		fmt.Fprintln(out, "  ║                                                           ║")
		fmt.Fprintln(out, "  ╚═══════════════════════════════════════════════════════════╝")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "  Service: %s\n", appConfig.Service.URL)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  Features:")
		fmt.Fprintln(out, "    • Beam, slab, column, footing and combined footing design")
		fmt.Fprintln(out, "    • Decimal comma or point in every numeric input")
		fmt.Fprintln(out, "    • PDF reports and plan / elevation / DXF drawings")
		fmt.Fprintln(out, "    • Batch designs from a spreadsheet, results to xlsx")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  Use 'civcalc --help' to see available commands.")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  ─────────────────────────────────────────────────────────────")
		fmt.Fprintf(out, "  Copyright © %s %s. All rights reserved.\n", version.Year, version.Author)
		fmt.Fprintln(out)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ./civcalc.yaml or ~/.config/civcalc/civcalc.yaml)")
	rootCmd.PersistentFlags().StringVarP(&flagServiceURL, "service", "s", "", "Calculation service URL (overrides service.url)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
}

func logger() *zap.Logger {
	return observability.GetLogger()
}

func newClient() (*service.Client, error) {
	return service.NewClient(service.ClientConfig{
		BaseURL:   appConfig.Service.URL,
		Timeout:   appConfig.Service.Timeout,
		UserAgent: appConfig.Service.UserAgent + "/" + version.Version,
		Logger:    logger().Named("service"),
	})
}

func newCoordinator(client *service.Client, outDir string) *session.Coordinator {
	if outDir == "" {
		outDir = appConfig.Output.Dir
	}
	return session.NewCoordinator(client, session.DirSaver{Dir: outDir},
		session.WithLogger(logger().Named("session")),
		session.WithAssetAliases(tree.Aliases(appConfig.Drawings.AssetAliases)),
	)
}

func resultAliases() tree.Aliases {
	return tree.Aliases(config.DefaultResultAliases()).Merge(tree.Aliases(appConfig.Results.Aliases))
}
