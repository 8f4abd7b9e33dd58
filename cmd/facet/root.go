package main

import (
	"errors"

	"github.com/chazu/facet/pkg/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// errScript marks a run that stopped on script errors already printed.
var errScript = errors.New("script has errors")

// cli carries state shared by the subcommands of one invocation.
type cli struct {
	configPath string
	verbose    bool

	cfg config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "facet",
		Short:         "Script solid parts with persistent face and edge names",
		Long:          "facet evaluates Lisp scripts that build parts whose named faces, edges and vertices survive modelling operations.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			c.teardown()
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default facet.yaml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(newRunCmd(c), newQueryCmd(c), newWatchCmd(c))
	return root
}

// setup loads configuration and installs the process logger.
func (c *cli) setup() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.verbose {
		cfg.Log.Level = "debug"
	}
	log, err := cfg.Log.NewLogger()
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.log = log
	zap.ReplaceGlobals(log)
	return nil
}

func (c *cli) teardown() {
	if c.log != nil {
		_ = c.log.Sync()
	}
}

func (c *cli) app() *App {
	return NewApp(c.cfg, c.log)
}
