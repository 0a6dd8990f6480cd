package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"walletbridge/config"
)

var version = "dev"

// flagKeys maps flags to configuration keys. Command-local flags are bound
// only for the command that declares them.
var flagKeys = map[string]string{
	"host":      "host",
	"socket":    "socket",
	"log-level": "log.level",
	"log-dev":   "log.development",
	"web-addr":  "web.addr",
	"flavour":   "sim.flavour",
}

// env is shared by every subcommand once the root has loaded the
// configuration.
type env struct {
	v   *viper.Viper
	cfg config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "walletbridge",
		Short:         "OS capability bridge for the Coconut wallet",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.load(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.log != nil {
				_ = e.log.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.String("config-dir", config.Dir(), "directory holding config.toml")
	flags.String("host", config.HostSim, "platform host: sim or desktop")
	flags.String("socket", "", "bridge unix socket path")
	flags.String("log-level", "info", "log level")
	flags.Bool("log-dev", false, "human-readable development logging")

	root.AddCommand(
		newServeCmd(e),
		newCallCmd(e),
		newChannelsCmd(e),
		newStdioCmd(e),
		newDeviceCmd(e),
	)
	return root
}

func (e *env) load(cmd *cobra.Command) error {
	e.v = config.New()
	dir, err := cmd.Flags().GetString("config-dir")
	if err != nil {
		return err
	}
	if err := config.ReadFile(e.v, dir); err != nil {
		return err
	}
	keys := map[string]string{}
	for flag, key := range flagKeys {
		if cmd.Flags().Lookup(flag) != nil {
			keys[flag] = key
		}
	}
	if err := config.BindFlags(e.v, cmd.Flags(), keys); err != nil {
		return err
	}
	if e.cfg, err = config.Decode(e.v); err != nil {
		return err
	}
	e.log, err = config.NewLogger(e.cfg.Log)
	return err
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "walletbridge: %v\n", err)
		os.Exit(1)
	}
}
