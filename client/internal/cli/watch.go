package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/RihoKanda/Abandoned/client/internal/feed"
	"github.com/RihoKanda/Abandoned/shared/protocol"
)

func newWatchCommand(o *options) *cobra.Command {
	var (
		feedAddr  string
		snapshots bool
		send      string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the feed of a running play session",
		Long: `Connect to the presentation feed of "abandoned play" and print its events.

  abandoned watch                    Print defeats, deaths and notifications
  abandoned watch --snapshots        Also print every battle snapshot
  abandoned watch --send LevelUp     Issue one command, then keep watching`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if feedAddr == "" {
				cfg, err := o.config()
				if err != nil {
					return err
				}
				feedAddr = cfg.FeedAddr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c, err := feed.Dial(ctx, "ws://"+feedAddr+"/ws")
			if err != nil {
				return fmt.Errorf("connect to feed at %s: %w", feedAddr, err)
			}
			defer c.Close()

			if send != "" {
				typ, payload := parseSend(send)
				if err := c.Send(typ, payload); err != nil {
					return err
				}
			}

			for {
				select {
				case <-ctx.Done():
					return nil
				case env, ok := <-c.Events():
					if !ok {
						fmt.Fprintln(o.out, "feed closed")
						return nil
					}
					printEvent(o.out, env, snapshots)
				}
			}
		},
	}
	cmd.Flags().StringVar(&feedAddr, "feed", "", "feed address (defaults to ABANDONED_FEED_ADDR)")
	cmd.Flags().BoolVar(&snapshots, "snapshots", false, "print battle snapshots")
	cmd.Flags().StringVar(&send, "send", "", "command to send first, e.g. LevelUp or Upgrade:attack")
	return cmd
}

// parseSend turns "Upgrade:speed" into the Upgrade command.
func parseSend(s string) (string, any) {
	typ, arg, _ := strings.Cut(s, ":")
	if typ == "Upgrade" {
		return typ, protocol.Upgrade{Kind: arg}
	}
	return typ, struct{}{}
}

func printEvent(w io.Writer, env protocol.MsgEnvelope, snapshots bool) {
	switch env.Type {
	case "BattleSnapshot":
		if !snapshots {
			return
		}
		var s protocol.BattleSnapshot
		if json.Unmarshal(env.Data, &s) == nil {
			fmt.Fprintf(w, "[%d] you %.0f/%.0f  %s %.0f/%.0f\n",
				s.Tick, s.PlayerHP, s.PlayerMaxHP, s.Enemy.Name, s.EnemyHP, s.EnemyMaxHP)
		}
	case "EnemyDefeated":
		var e protocol.EnemyDefeated
		if json.Unmarshal(env.Data, &e) == nil {
			fmt.Fprintf(w, "%s defeated, +%d exp\n", e.Enemy.Name, e.ExpReward)
		}
	case "PlayerDied":
		var e protocol.PlayerDied
		if json.Unmarshal(env.Data, &e) == nil {
			fmt.Fprintf(w, "killed by %s, falling back\n", e.KilledBy.Name)
		}
	case "BattleStarted":
		fmt.Fprintln(w, "battle started")
	case "BattleStopped":
		fmt.Fprintln(w, "battle stopped")
	case "Progression":
		var v protocol.ProgressionView
		if json.Unmarshal(env.Data, &v) == nil {
			fmt.Fprintf(w, "Lv.%d  exp %d/%d  points %d\n", v.Level, v.Exp, v.RequiredExp, v.AvailablePoints)
		}
	case "Notification":
		var n protocol.Notification
		if json.Unmarshal(env.Data, &n) == nil {
			fmt.Fprintln(w, n.Message)
		}
	case "Error":
		var e protocol.ErrorMsg
		if json.Unmarshal(env.Data, &e) == nil {
			fmt.Fprintln(w, "error:", e.Message)
		}
	}
}
