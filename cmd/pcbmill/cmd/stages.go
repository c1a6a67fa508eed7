package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chazu/pcbmill/pkg/export"
	"github.com/chazu/pcbmill/pkg/routing"
)

var direction string

var isoCmd = stageCmd(routing.StageIsolation,
	"Isolation outlines for each copper layer",
	`Grows every copper layer by half the tool diameter. Milling along the
outline of the result isolates the copper. Writes f_cu, b_cu and, when the
script has a board outline, edge_cuts.`)

var nccCmd = stageCmd(routing.StageNCC,
	"Non-copper clearing for each copper layer",
	`Covers the board (or the convex hull of the copper when there is no
outline) with parallel scan lines spaced half a tool diameter apart and
removes the copper. Writes f_cu, b_cu and, when the script has a board
outline, edge_cuts.`)

var drillCmd = stageCmd(routing.StageDrill,
	"Drill holes milled with an undersized bit",
	`Shrinks every hole by the drill radius so a mill following the result
opens the hole to size. Holes no larger than the drill become marks. Writes
drill.`)

var edgeCutsCmd = stageCmd(routing.StageEdgeCuts,
	"Board cutout path",
	`Grows the convex hull of the board outline by the cutout tool radius.
Writes edge_cuts.`)

func init() {
	nccCmd.Flags().StringVar(&direction, "direction", "h", "scan direction: h or v")
	rootCmd.AddCommand(isoCmd, nccCmd, drillCmd, edgeCutsCmd)
}

func stageCmd(stage routing.Stage, short, long string) *cobra.Command {
	return &cobra.Command{
		Use:   string(stage) + " <board_file>",
		Short: short,
		Long:  long,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(cmd, stage, args[0])
		},
	}
}

func runStage(cmd *cobra.Command, stage routing.Stage, board string) error {
	format, err := export.ParseFormat(v.GetString("format"))
	if err != nil {
		return err
	}
	dir := routing.Horizontal
	if stage == routing.StageNCC {
		if dir, err = routing.ParseDirection(direction); err != nil {
			return err
		}
	}

	app := NewApp(v.GetFloat64("arc-tolerance-mm"))
	ctx, err := app.Load(board, v.GetString("drl"), applyOverrides)
	if err != nil {
		return err
	}

	job, err := app.Run(stage, ctx, dir)
	if err != nil {
		return err
	}
	written, err := app.Write(job, v.GetString("out-dir"), format)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, path := range written {
		fmt.Fprintf(out, "wrote %s\n", path)
	}
	if len(written) == 0 {
		fmt.Fprintln(out, "nothing to write")
	}
	if job.Dropped > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "dropped %d malformed primitives\n", job.Dropped)
	}
	for _, f := range job.Report.All() {
		fmt.Fprintln(cmd.ErrOrStderr(), f.Error())
	}
	return nil
}
