package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/avi3tal/stepflow/internal/config"
	"github.com/avi3tal/stepflow/internal/logging"
)

// cli holds what every subcommand shares once the root pre-run has loaded the config.
type cli struct {
	out     io.Writer
	errOut  io.Writer
	v       *viper.Viper
	cfgFile string

	cfg    config.Config
	logger *slog.Logger
}

func newRootCommand(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out, errOut: errOut, v: config.New(), logger: logging.Discard()}

	root := &cobra.Command{
		Use:               "stepflow",
		Short:             "Simulate notification workflows step by step",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default ./stepflow.yaml)")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("log-format", "", "log format: text or json")
	flags.String("store-dir", "", "directory holding the saved workflow")
	c.bind(flags.Lookup("log-level"), "log.level")
	c.bind(flags.Lookup("log-format"), "log.format")
	c.bind(flags.Lookup("store-dir"), "store.dir")

	root.AddCommand(
		c.validateCommand(),
		c.showCommand(),
		c.runCommand(),
		c.saveCommand(),
		c.loadCommand(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.v, c.cfgFile)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = logging.New(cfg.Log.Level, cfg.Log.Format, c.errOut)
	cmd.SetContext(logging.WithLogger(cmd.Context(), c.logger))
	c.logger.Debug("config loaded", "config_file", c.v.ConfigFileUsed(), "store_dir", cfg.Store.Dir)
	return nil
}

func (c *cli) bind(flag *pflag.Flag, key string) {
	_ = c.v.BindPFlag(key, flag)
}
