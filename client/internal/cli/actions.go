package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/RihoKanda/Abandoned/shared/game/types"
	"github.com/RihoKanda/Abandoned/shared/protocol"
)

func newStatusCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show level, stats and upgrade points",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app()
			if err != nil {
				return err
			}
			if _, err := a.Login(cmd.Context()); err != nil {
				return err
			}
			v, _ := a.Session.View()
			printView(o.out, v)
			return nil
		},
	}
}

func newLevelUpCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "levelup",
		Short: "Spend experience on the next level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app()
			if err != nil {
				return err
			}
			if _, err := a.Login(cmd.Context()); err != nil {
				return err
			}
			_, err = a.Session.LevelUp(cmd.Context())
			return err
		},
	}
}

func newUpgradeCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:       "upgrade <attack|speed|hp_regain>",
		Short:     "Spend an upgrade point",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(types.UpgradeAttack), string(types.UpgradeSpeed), string(types.UpgradeHPRegain)},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := types.ParseUpgradeKind(args[0])
			if err != nil {
				return err
			}
			a, err := o.app()
			if err != nil {
				return err
			}
			if _, err := a.Login(cmd.Context()); err != nil {
				return err
			}
			_, err = a.Session.Upgrade(cmd.Context(), kind)
			return err
		},
	}
}

func newEvolveCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "evolve",
		Short: "Evolve once the required level is reached",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app()
			if err != nil {
				return err
			}
			if _, err := a.Login(cmd.Context()); err != nil {
				return err
			}
			_, err = a.Session.Evolve(cmd.Context())
			return err
		},
	}
}

func newIdleCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "idle",
		Short: "Start or finish server side idle mode",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "start",
			Short: "Start idle mode",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := o.app()
				if err != nil {
					return err
				}
				if _, err := a.Login(cmd.Context()); err != nil {
					return err
				}
				_, err = a.Session.StartIdle(cmd.Context())
				return err
			},
		},
		&cobra.Command{
			Use:   "finish",
			Short: "Finish idle mode and collect the reward",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := o.app()
				if err != nil {
					return err
				}
				if _, err := a.Login(cmd.Context()); err != nil {
					return err
				}
				_, err = a.Session.FinishIdle(cmd.Context())
				return err
			},
		},
	)
	return cmd
}

func printView(w io.Writer, v protocol.ProgressionView) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Level\t%d\n", v.Level)
	fmt.Fprintf(tw, "Experience\t%d / %d\n", v.Exp, v.RequiredExp)
	fmt.Fprintf(tw, "Attack\t%.1f\t(+%d)\n", v.AttackPower, v.AttackUp)
	fmt.Fprintf(tw, "Attack speed\tx%.1f\t(+%d)\n", v.AttackSpeed, v.SpeedUp)
	fmt.Fprintf(tw, "HP regen\t%.1f\t(+%d)\n", v.HPRegen, v.HPRegenUp)
	fmt.Fprintf(tw, "Upgrade points\t%d\n", v.AvailablePoints)
	fmt.Fprintf(tw, "Evolution\tstage %d\t(next at Lv.%d)\n", v.EvolutionStage, v.RequiredEvolutionLevel)
	idle := "no"
	if v.IsIdle {
		idle = "yes"
	}
	fmt.Fprintf(tw, "Idle\t%s\n", idle)
	_ = tw.Flush()
}
