package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/pcbmill/pkg/routing"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		routing.SetLogger(nil)
	})
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCommandIsolation(t *testing.T) {
	dir := t.TempDir()
	stdout, _, err := execute(t, "iso", exampleBoard, "--out-dir", dir, "--format", "svg")
	if err != nil {
		t.Fatalf("iso: %v", err)
	}
	for _, name := range []string{"f_cu.svg", "b_cu.svg", "edge_cuts.svg"} {
		path := filepath.Join(dir, name)
		if !strings.Contains(stdout, "wrote "+path) {
			t.Errorf("stdout missing %s:\n%s", path, stdout)
		}
		if _, err := os.Stat(path); err != nil {
			t.Error(err)
		}
	}
}

func TestCommandDrillFromExcellonAsDXF(t *testing.T) {
	dir := t.TempDir()
	_, _, err := execute(t, "drill", exampleBoard, "--drl", exampleDrill, "--out-dir", dir, "--format", "dxf")
	if err != nil {
		t.Fatalf("drill: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "drill.dxf")); err != nil {
		t.Error(err)
	}
}

func TestCommandRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"format", []string{"edge-cuts", exampleBoard, "--out-dir", dir, "--format", "png"}, "unknown format"},
		{"direction", []string{"ncc", exampleBoard, "--out-dir", dir, "--format", "svg", "--direction", "z"}, "direction"},
		{"args", []string{"iso"}, "accepts 1 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
	// Restore the flag for later tests in this package.
	direction = "h"
}

func TestApplyOverridesFromEnvironment(t *testing.T) {
	t.Setenv("PCBMILL_TOOL_MM", "0.4")
	t.Setenv("PCBMILL_MIRROR_BCU", "false")

	opts := routing.DefaultOptions()
	opts.CutoutDiaMM = 2.5 // as if set by the board script
	applyOverrides(&opts)

	if opts.ToolMM != 0.4 {
		t.Errorf("ToolMM = %g, want 0.4", opts.ToolMM)
	}
	if opts.MirrorBackCu {
		t.Error("MirrorBackCu should be false")
	}
	if opts.CutoutDiaMM != 2.5 {
		t.Errorf("CutoutDiaMM = %g, want script value 2.5 kept", opts.CutoutDiaMM)
	}
}
