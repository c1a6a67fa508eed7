package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chazu/pcbmill/pkg/excellon"
	"github.com/chazu/pcbmill/pkg/kernel/clipper"
	"github.com/chazu/pcbmill/pkg/routing"
)

var (
	// Global flags
	verbose bool
	cfgFile string

	// v merges flags, PCBMILL_* environment variables and the config file.
	v = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "pcbmill",
	Short: "pcbmill - PCB isolation milling geometry",
	Long: `pcbmill reads a board script and produces the geometry a CNC mill needs
to make the board: isolation outlines, non-copper clearing, drill holes and
the board cutout.

Routing options come from, in increasing priority: built-in defaults, the
board script's (options ...) form, the config file, PCBMILL_* environment
variables and command line flags.

Examples:
  pcbmill iso board.pcbmill --tool-mm 0.2     # isolation outlines
  pcbmill ncc board.pcbmill --direction v     # non-copper clearing
  pcbmill drill board.pcbmill --drl board.drl # drill holes from Excellon
  pcbmill edge-cuts board.pcbmill --format dxf`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	d := routing.DefaultOptions()
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	pf.StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")

	pf.Float64("tool-mm", d.ToolMM, "isolation and NCC tool diameter in mm")
	pf.Float64("drill-dia-mm", d.DrillDiaMM, "drill bit diameter in mm")
	pf.Float64("cutout-dia-mm", d.CutoutDiaMM, "board cutout tool diameter in mm")
	pf.Float64("mark-radius-mm", d.MarkRadiusMM, "radius of the mark left for holes too small to mill")
	pf.Bool("edge-cuts-on-cu", d.EdgeCutsOnCu, "add the board outline to copper layers")
	pf.Bool("mirror-bcu", d.MirrorBackCu, "mirror back copper across the Y axis")
	pf.Float64("arc-tolerance-mm", clipper.DefaultArcToleranceMM, "maximum deviation of arc approximations in mm")

	pf.String("drl", "", "Excellon drill file replacing the script's drill layer")
	pf.String("out-dir", ".", "directory for output files")
	pf.String("format", "svg", "output format: svg or dxf")

	if err := v.BindPFlags(pf); err != nil {
		panic(err)
	}
	v.SetEnvPrefix("PCBMILL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// setup installs the logger and reads the config file.
func setup(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	routing.SetLogger(logger)
	excellon.SetLogger(logger)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

// applyOverrides copies every option the user set explicitly through
// flags, environment or config file onto opts. Options left at their flag
// defaults keep the value from the board script.
func applyOverrides(opts *routing.Options) {
	for key, p := range map[string]*float64{
		"tool-mm":        &opts.ToolMM,
		"drill-dia-mm":   &opts.DrillDiaMM,
		"cutout-dia-mm":  &opts.CutoutDiaMM,
		"mark-radius-mm": &opts.MarkRadiusMM,
	} {
		if v.IsSet(key) {
			*p = v.GetFloat64(key)
		}
	}
	for key, p := range map[string]*bool{
		"edge-cuts-on-cu": &opts.EdgeCutsOnCu,
		"mirror-bcu":      &opts.MirrorBackCu,
	} {
		if v.IsSet(key) {
			*p = v.GetBool(key)
		}
	}
}
