package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/RihoKanda/Abandoned/client/internal/feed"
	"github.com/RihoKanda/Abandoned/client/internal/game"
	"github.com/RihoKanda/Abandoned/client/internal/observability"
)

func newPlayCommand(o *options) *cobra.Command {
	var feedAddr string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Log in, run the battle and serve the presentation feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.config()
			if err != nil {
				return err
			}
			if feedAddr != "" {
				cfg.FeedAddr = feedAddr
			}
			a, err := game.New(cfg, observability.NewLogger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			hub := feed.NewHub(ctx, a.Session, a.Engine, observability.NewLogger(cfg.LogLevel, "feed"))
			a.SetBroadcaster(hub.Broadcast)
			return play(ctx, a, hub)
		},
	}
	cmd.Flags().StringVar(&feedAddr, "feed", "", "feed listen address (overrides ABANDONED_FEED_ADDR)")
	return cmd
}

func play(ctx context.Context, a *game.App, hub *feed.Hub) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return feed.Serve(ctx, a.Config.FeedAddr, hub) })

	g.Go(func() error {
		if _, err := a.Login(ctx); err != nil {
			return err
		}
		if err := a.Engine.StartWhenReady(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		<-ctx.Done()
		a.Engine.Stop()
		<-a.Engine.Done()
		a.Log.Info().Msg("battle ended")
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
