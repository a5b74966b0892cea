package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pivolan/stay_dashboard/config"
	"github.com/pivolan/stay_dashboard/logging"
	"github.com/pivolan/stay_dashboard/pipeline"
)

var (
	cfg    *config.Config
	logger zerolog.Logger

	envFile   string
	dataPath  string
	separator string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "stay_dashboard",
	Short: "Patient discharge length-of-stay dashboard",
	Long: "Loads a hospital discharge CSV, cleans the Length of Stay column and serves\n" +
		"a filterable dashboard with metrics, charts and a filtered export.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&envFile, "env", ".env", "dotenv file to read before the environment")
	pf.StringVar(&dataPath, "data", "", "discharge CSV (.csv, .gz, .lz4 or .zip), overrides DATA_PATH")
	pf.StringVar(&separator, "sep", "", "CSV separator, overrides CSV_SEPARATOR")
	pf.StringVar(&logFormat, "log-format", "", "Log format: text or json, overrides LOG_FORMAT")
}

func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if dataPath != "" {
		c.DataPath = dataPath
	}
	if separator != "" {
		if c.Separator, err = config.ParseSeparator(separator); err != nil {
			return err
		}
	}
	if logFormat != "" {
		c.LogFormat = logFormat
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	logger = logging.Setup(cfg.LogFormat)
	return nil
}

func newCache() *pipeline.Cache {
	return pipeline.NewCache(cfg.DataPath, pipeline.Options{Separator: cfg.Separator}, logger)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
