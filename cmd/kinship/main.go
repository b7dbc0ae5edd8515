package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/agenthands/kinship/internal/config"
	"github.com/agenthands/kinship/internal/logging"
	"github.com/agenthands/kinship/internal/wikidata"
)

var (
	cfgPath string
	verbose bool

	cfg    *config.Config
	client *wikidata.Client
)

var rootCmd = &cobra.Command{
	Use:           "kinship <command>",
	Short:         "Build family graphs from Wikidata",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		cfg, err = config.LoadOrDefault(cfgPath)
		if err != nil {
			return err
		}
		if err := cfg.ApplyEnv(); err != nil {
			return err
		}
		if verbose {
			cfg.Log.Level = "debug"
		}
		// logs go to stderr so stdout stays valid JSON
		cfg.Log.Format = "text"
		cfg.Log.File = ""
		if err := cfg.Validate(); err != nil {
			return err
		}

		opts := wikidata.OptionsFromConfig(cfg.Wikidata)
		opts.Logger = logging.New(cfg.Log)
		client = wikidata.NewClient(opts)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a TOML config file (defaults apply when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every crawl round")

	rootCmd.AddCommand(crawlCmd, resolveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
