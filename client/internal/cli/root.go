// Package cli is the command tree of the abandoned binary.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/RihoKanda/Abandoned/client/internal/game"
	"github.com/RihoKanda/Abandoned/client/internal/netcfg"
	"github.com/RihoKanda/Abandoned/client/internal/observability"
	"github.com/RihoKanda/Abandoned/shared/protocol"
)

// options are the flag overrides applied on top of the environment.
type options struct {
	apiBase  string
	logLevel string
	profile  string
	out      io.Writer
}

func (o *options) config() (netcfg.Config, error) {
	cfg, err := netcfg.Load()
	if err != nil {
		return cfg, err
	}
	if o.apiBase != "" {
		cfg.APIBase = o.apiBase
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.profile != "" {
		cfg.Profile = o.profile
	}
	return cfg, cfg.Validate()
}

// app wires a client for a one-shot command: console logs, notifications
// printed to out.
func (o *options) app() (*game.App, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	a, err := game.New(cfg, observability.NewConsoleLogger)
	if err != nil {
		return nil, err
	}
	a.Session.SetBroadcaster(func(eventType string, event any) {
		if n, ok := event.(protocol.Notification); ok {
			fmt.Fprintln(o.out, n.Message)
		}
	})
	return a, nil
}

func NewRootCommand() *cobra.Command {
	o := &options{out: os.Stdout}

	cmd := &cobra.Command{
		Use:   "abandoned",
		Short: protocol.GameName + " idle RPG client",
		Long: `Idle RPG client. The battle runs locally against the enemy roster of the
game server; level ups, upgrades, evolution and idle rewards go through the server.

  abandoned play              Fight and serve the presentation feed
  abandoned status            Show level, stats and upgrade points
  abandoned upgrade attack    Spend an upgrade point`,
		SilenceUsage: true,
	}
	cmd.SetOut(o.out)

	cmd.PersistentFlags().StringVar(&o.apiBase, "api", "", "game server base URL (overrides ABANDONED_API_BASE)")
	cmd.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "log level (overrides ABANDONED_LOG_LEVEL)")
	cmd.PersistentFlags().StringVar(&o.profile, "profile", "", "config profile (overrides ABANDONED_PROFILE)")

	cmd.AddCommand(
		newPlayCommand(o),
		newStatusCommand(o),
		newLevelUpCommand(o),
		newUpgradeCommand(o),
		newEvolveCommand(o),
		newIdleCommand(o),
		newWatchCommand(o),
	)
	return cmd
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
