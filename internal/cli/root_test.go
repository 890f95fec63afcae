package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	nerr "github.com/Dante-U/nervi/pkg/errors"
)

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var logs, out bytes.Buffer
	root := New(&logs, LogInfo).RootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// fastConfig keeps marching cubes coarse.
func fastConfig(t *testing.T, dir string) string {
	return writeFile(t, dir, "nervi.toml", "[render]\nmesh_cells = 16\nworkers = 2\n")
}

func TestRootCommandHasSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	want := map[string]bool{"plan": false, "render": false, "graph": false, "materials": false}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("missing --config flag")
	}
}

func TestPlanCommand(t *testing.T) {
	out, err := execute(t, "plan", "--total-rise", "2.8", "--name", "main")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	for _, want := range []string{"main · straight stair", "16 (mount offset 1)", "IfcStair", "wood/oak"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPlanCommandSeveralRises(t *testing.T) {
	out, err := execute(t, "plan", "-r", "2.6,2.8,3.0", "--name", "hall")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	for _, want := range []string{"hall-1 · straight stair", "hall-2 · straight stair", "hall-3 · straight stair", "16 (mount offset 1)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if i, j := strings.Index(out, "hall-1"), strings.Index(out, "hall-3"); i > j {
		t.Errorf("plans out of order:\n%s", out)
	}

	_, err = execute(t, "plan", "-r", "2.8,2800")
	if !nerr.Is(err, nerr.ErrCodeUnitConfusion) {
		t.Errorf("err = %v, want UNIT_CONFUSION from the second stair", err)
	}
}

func TestPlanCommandLShaped(t *testing.T) {
	out, err := execute(t, "plan", "-t", "l-shaped", "-r", "2.8", "--family", "masonry", "--sides", "left,right")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	for _, want := range []string{"l-shaped stair", "landings", "masonry/concrete"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPlanCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code nerr.Code
	}{
		{"bad type", []string{"plan", "-r", "2.8", "-t", "spiral"}, nerr.ErrCodeInvalidType},
		{"bad family", []string{"plan", "-r", "2.8", "-f", "glass"}, nerr.ErrCodeInvalidFamily},
		{"bad side", []string{"plan", "-r", "2.8", "--sides", "up"}, nerr.ErrCodeInvalidSides},
		{"rise in millimeters", []string{"plan", "-r", "2800"}, nerr.ErrCodeUnitConfusion},
		{"spiral too tight", []string{"plan", "spiral", "-r", "3", "--steps-per-turn", "1"}, nerr.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := nerr.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (%v)", got, tt.code, err)
			}
		})
	}

	if _, err := execute(t, "plan"); err == nil {
		t.Error("plan without --total-rise should fail")
	}
}

func TestPlanSpiralCommand(t *testing.T) {
	out, err := execute(t, "plan", "spiral", "--total-rise", "3", "--radius", "900", "--ccw", "--handrail")
	if err != nil {
		t.Fatalf("plan spiral: %v", err)
	}
	for _, want := range []string{"spiral · spiral stair", "step angle", "metal/steel"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMaterialsCommand(t *testing.T) {
	out, err := execute(t, "materials")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"oak *", "steel *", "concrete *", "stainless", "pine"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, err = execute(t, "materials", "--family", "metal")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "oak") || !strings.Contains(out, "aluminium") {
		t.Errorf("metal listing wrong:\n%s", out)
	}
}

func TestMaterialsFromConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "nervi.toml", `
[[materials]]
family = "wood"
name = "walnut"
density = 640
price = 2400
default = true
`)
	out, err := execute(t, "--config", cfg, "materials", "-f", "wood")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "walnut *") {
		t.Errorf("configured default missing:\n%s", out)
	}
}

func TestBadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "nervi.toml", "[stairs]\nrise = 170\n")
	if _, err := execute(t, "--config", cfg, "materials"); err == nil {
		t.Error("unknown config key should fail")
	}
	if _, err := execute(t, "--config", filepath.Join(dir, "missing.toml"), "materials"); err == nil {
		t.Error("missing config file should fail")
	}
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "flight.nervi", `(stairs "flight" :width 0.9 :total-rise 1.0 :family :metal)`)
	stl := filepath.Join(dir, "flight.stl")

	out, err := execute(t, "--config", fastConfig(t, dir), "render", src, "-o", stl)
	if err != nil {
		t.Fatalf("render: %v\n%s", err, out)
	}
	if !strings.Contains(out, stl) {
		t.Errorf("output does not name the file:\n%s", out)
	}
	data, err := os.ReadFile(stl)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.HasPrefix(text, "solid flight/") || !strings.Contains(text, "facet normal") {
		t.Errorf("not an STL with facets:\n%.200s", text)
	}
	if got := strings.Count(text, "endsolid"); got < 5 {
		t.Errorf("got %d solids, want treads and stringers", got)
	}
}

func TestRenderCommandReportsErrors(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "bad.nervi", "\n(stairs \"x\" :width 1 :total-rise 2800)\n")

	out, err := execute(t, "render", src, "-o", filepath.Join(dir, "bad.stl"))
	if !errors.Is(err, errDesign) {
		t.Fatalf("err = %v, want errDesign", err)
	}
	if !strings.Contains(out, "UNIT_CONFUSION") {
		t.Errorf("output does not report the code:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "bad.stl")); !os.IsNotExist(err) {
		t.Error("no STL should be written for a failed design")
	}
}

func TestGraphCommand(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "rail.nervi", `(handrail "rail" :length 1500 :sides (list :left :right))`)

	dot := filepath.Join(dir, "rail.dot")
	if _, err := execute(t, "graph", src, "-o", dot, "--detailed"); err != nil {
		t.Fatalf("graph: %v", err)
	}
	data, err := os.ReadFile(dot)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "digraph") {
		t.Errorf("not a DOT file:\n%s", data)
	}

	svg := filepath.Join(dir, "rail.svg")
	if _, err := execute(t, "graph", src, "-f", "svg", "-o", svg); err != nil {
		t.Fatalf("graph svg: %v", err)
	}
	data, err = os.ReadFile(svg)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Error("SVG output has no <svg> element")
	}

	if _, err := execute(t, "graph", src, "-f", "png"); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct{ in, ext, want string }{
		{"examples/house.nervi", ".stl", "house.stl"},
		{"design", ".svg", "design.svg"},
		{"/tmp/a.b.nervi", ".dot", "a.b.dot"},
	}
	for _, tt := range tests {
		if got := outputPath(tt.in, tt.ext); got != tt.want {
			t.Errorf("outputPath(%q, %q) = %q, want %q", tt.in, tt.ext, got, tt.want)
		}
	}
}
