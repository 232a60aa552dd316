package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shiftclock/internal/config"
	"github.com/shiftclock/internal/shift"
	"github.com/shiftclock/internal/ticker"
	"github.com/shiftclock/internal/tracker"
	"github.com/shiftclock/internal/work"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var calcCmd = &cobra.Command{
	Use:     "calc",
	Aliases: []string{"clockout", "out"},
	Short:   "Show today's clock-out time",
	Long: `Compute the clock-out time for a shift starting today.
The break is added on top of the shift length. Values not given as flags come
from ~/.shiftclock.yaml.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := inputFromFlags(cmd)
		snap, ok := tracker.Compute(in, time.Now())
		if !ok {
			return fmt.Errorf("start time is required (HH:MM), got %q", in.StartTime)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snapshotJSON(snap))
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Start:     %s\n", shift.FormatClockTime(snap.Window.Start))
		fmt.Fprintf(out, "Clock out: %s\n", snap.FinishTime)
		fmt.Fprintf(out, "Status:    %s\n", snap.Status.Message)
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w", "countdown"},
	Short:   "Live countdown to clock-out",
	Long:    `Print the countdown now and again on every refresh tick until interrupted.`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		in := inputFromFlags(cmd)
		t := tracker.New(
			tracker.WithScheduler(ticker.NewReal(ctx)),
			tracker.WithLogger(logger),
		)
		snap, ok := t.Recompute(in)
		if !ok {
			return fmt.Errorf("start time is required (HH:MM), got %q", in.StartTime)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, visualizer.StatusLine(snap))

		handle := t.Start(cfg.RefreshInterval(), func(s tracker.Snapshot) {
			fmt.Fprintln(out, visualizer.StatusLine(s))
		})
		defer handle.Stop()

		<-ctx.Done()
		return nil
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert <hours> | <h> <m>",
	Short: "Convert between decimal hours and hours/minutes",
	Long: `Convert a shift length between the two entry modes.
  shiftclock convert 7.75   -> 7h 45m
  shiftclock convert 7 45   -> 7.75`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 1 {
			h, m := work.DecimalToHoursMinutes(work.ParseNumber(args[0]))
			fmt.Fprintf(out, "%dh %dm\n", h, m)
			return nil
		}
		d := work.HoursMinutesToDecimal(work.ParseNumber(args[0]), work.ParseNumber(args[1]))
		fmt.Fprintln(out, work.FormatNumber(d))
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the configuration file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", config.Path(), data)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the current configuration to the config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.Path()
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		}
		if err := config.SaveTo(path, cfg); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	addShiftFlags(calcCmd)
	calcCmd.Flags().Bool("json", false, "Print the result as JSON")

	addShiftFlags(watchCmd)

	configInitCmd.Flags().BoolP("force", "f", false, "Overwrite an existing file")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

func addShiftFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("start", "s", "", "Start time HH:MM (default from config)")
	cmd.Flags().String("hours", "", "Shift length in decimal hours, e.g. 8.5")
	cmd.Flags().String("hr", "", "Shift length, whole hours part")
	cmd.Flags().String("min", "", "Shift length, minutes part")
	cmd.Flags().StringP("break", "b", "", "Break in minutes, added to the shift")
}

// inputFromFlags starts from the configured defaults and applies any flag
// that was set. --hr/--min switch to hour/minute entry, --hours to decimal.
func inputFromFlags(cmd *cobra.Command) work.Input {
	in := cfg.Input()
	flags := cmd.Flags()

	if flags.Changed("start") {
		in.StartTime, _ = flags.GetString("start")
	}
	if flags.Changed("hours") {
		in.ShiftHours, _ = flags.GetString("hours")
		in.Mode = work.ModeDecimal
	}
	if flags.Changed("hr") {
		in.ShiftH, _ = flags.GetString("hr")
		in.Mode = work.ModeHrMin
	}
	if flags.Changed("min") {
		in.ShiftM, _ = flags.GetString("min")
		in.Mode = work.ModeHrMin
	}
	if flags.Changed("break") {
		in.BreakMinutes, _ = flags.GetString("break")
	}
	return in
}

type snapshotOutput struct {
	Start      time.Time       `json:"start"`
	End        time.Time       `json:"end"`
	FinishTime string          `json:"finish_time"`
	Status     shift.Phase     `json:"status"`
	Remaining  string          `json:"remaining"`
	Proximity  shift.Proximity `json:"proximity"`
	Asset      shift.Asset     `json:"asset"`
}

func snapshotJSON(s tracker.Snapshot) snapshotOutput {
	return snapshotOutput{
		Start:      s.Window.Start,
		End:        s.Window.End,
		FinishTime: s.FinishTime,
		Status:     s.Status.Phase,
		Remaining:  s.Status.Message,
		Proximity:  s.Proximity,
		Asset:      s.Asset,
	}
}
