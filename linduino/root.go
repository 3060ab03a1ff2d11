package main

import (
	"fmt"
	"strings"

	"github.com/itohio/golinduino/pkg/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "LINDUINO"

// skipConfig marks commands that run without loading the configuration file.
const skipConfig = "skip-config"

// flagKeys maps command-line flags to the configuration keys they override.
var flagKeys = map[string]string{
	"port":       "serial.port",
	"baud":       "serial.baud_rate",
	"vref":       "decoder.vref",
	"signed":     "decoder.signed",
	"fail-fast":  "decoder.fail_fast",
	"max-points": "plot.max_points",
	"pattern":    "search.pattern",
	"include":    "search.include",
	"tool":       "verify.tool",
	"suffix":     "verify.suffix",
	"timeout":    "verify.timeout",
	"log-level":  "logging.level",
	"log-format": "logging.format",
}

// cli holds state shared by all commands.
type cli struct {
	v       *viper.Viper
	cfgFile string
	verbose bool

	cfg *config.Config
	log *logrus.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:   "linduino",
		Short: "LTC2508 capture decoder and Linduino sketchbook tools",
		Long: `linduino decodes LTC2508 hex captures into voltages, plots them, captures
live data from a Linduino board, and searches or verifies a Linduino sketchbook.

Settings come from the configuration file, LINDUINO_* environment variables
(e.g. LINDUINO_DECODER_VREF) and flags, in increasing order of precedence.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&c.cfgFile, "config", "c", "config.yaml", "configuration file")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "verbose output (debug logging)")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().String("log-format", "", "log format: text or json")

	root.AddCommand(
		newDecodeCmd(c),
		newPlotCmd(c),
		newCaptureCmd(c),
		newSearchCmd(c),
		newVerifyCmd(c),
		newConfigCmd(c),
		newVersionCmd(),
	)
	return root
}

// setup loads the configuration, applies environment and flag overrides and
// configures logging.
func (c *cli) setup(cmd *cobra.Command) error {
	c.log = logrus.StandardLogger()

	if cmd.Annotations[skipConfig] == "true" {
		c.cfg = config.Default()
		return configureLogger(c.log, cmd.ErrOrStderr(), c.cfg.Logging, c.verbose)
	}

	cfg, err := config.Load(c.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	c.v.SetEnvPrefix(envPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	c.v.AutomaticEnv()

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok && bindErr == nil {
			bindErr = c.v.BindPFlag(key, f)
		}
	})
	if bindErr != nil {
		return fmt.Errorf("failed to bind flags: %w", bindErr)
	}

	applyOverrides(c.v, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	c.cfg = cfg

	if err := configureLogger(c.log, cmd.ErrOrStderr(), cfg.Logging, c.verbose); err != nil {
		return err
	}
	c.log.WithField("config", c.cfgFile).Debug("configuration loaded")
	return nil
}

// applyOverrides copies every key set by a flag or environment variable into cfg.
func applyOverrides(v *viper.Viper, cfg *config.Config) {
	if v.IsSet("serial.port") {
		cfg.Serial.Port = v.GetString("serial.port")
	}
	if v.IsSet("serial.baud_rate") {
		cfg.Serial.BaudRate = v.GetInt("serial.baud_rate")
	}
	if v.IsSet("decoder.vref") {
		cfg.Decoder.VRef = v.GetFloat64("decoder.vref")
	}
	if v.IsSet("decoder.signed") {
		cfg.Decoder.Signed = v.GetBool("decoder.signed")
	}
	if v.IsSet("decoder.fail_fast") {
		cfg.Decoder.FailFast = v.GetBool("decoder.fail_fast")
	}
	if v.IsSet("plot.max_points") {
		cfg.Plot.MaxPoints = v.GetInt("plot.max_points")
	}
	if v.IsSet("search.pattern") {
		cfg.Search.Pattern = v.GetString("search.pattern")
	}
	if v.IsSet("search.include") {
		cfg.Search.Include = v.GetStringSlice("search.include")
	}
	if v.IsSet("verify.tool") {
		cfg.Verify.Tool = v.GetString("verify.tool")
	}
	if v.IsSet("verify.suffix") {
		cfg.Verify.Suffix = v.GetString("verify.suffix")
	}
	if v.IsSet("verify.timeout") {
		cfg.Verify.Timeout = v.GetDuration("verify.timeout")
	}
	if v.IsSet("logging.level") {
		cfg.Logging.Level = v.GetString("logging.level")
	}
	if v.IsSet("logging.format") {
		cfg.Logging.Format = v.GetString("logging.format")
	}
}
