// Package config loads generator defaults, render settings and extra
// materials from a TOML file.
//
//	[stairs]
//	theoretical_rise_mm = 175
//
//	[render]
//	kernel = "sdfx"
//	mesh_cells = 300
//
//	[[materials]]
//	family = "wood"
//	name = "walnut"
//	density = 640
//
// Keys left out of the file keep their built-in values.
package config

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	nerr "github.com/Dante-U/nervi/pkg/errors"
	"github.com/Dante-U/nervi/pkg/kernel"
	"github.com/Dante-U/nervi/pkg/kernel/manifold"
	"github.com/Dante-U/nervi/pkg/kernel/sdfx"
	"github.com/Dante-U/nervi/pkg/material"
	"github.com/Dante-U/nervi/pkg/spiral"
	"github.com/Dante-U/nervi/pkg/stair"
)

// Kernel backends selectable from [render].
const (
	KernelSdfx     = "sdfx"
	KernelManifold = "manifold"
)

// Render holds tessellation settings.
type Render struct {
	Kernel    string `toml:"kernel"`
	MeshCells int    `toml:"mesh_cells"`
	Segments  int    `toml:"segments"`
	Workers   int    `toml:"workers"` // 0 means one per CPU
}

// Config is the decoded configuration file.
type Config struct {
	Stairs    stair.Settings         `toml:"stairs"`
	Handrail  stair.HandrailSettings `toml:"handrail"`
	Spiral    spiral.Settings        `toml:"spiral"`
	Render    Render                 `toml:"render"`
	Materials []material.Material    `toml:"materials"`

	// Path is the file the configuration came from, empty for defaults.
	Path string `toml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	st := stair.DefaultSettings()
	opts := kernel.DefaultOptions()
	return &Config{
		Stairs:   st,
		Handrail: st.Handrail,
		Spiral:   spiral.DefaultSettings(),
		Render: Render{
			Kernel:    KernelSdfx,
			MeshCells: opts.MeshCells,
			Segments:  opts.Segments,
		},
	}
}

// Load reads path over the defaults. An empty path returns Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, nerr.Invalid(nerr.ErrCodeInvalidInput, "config", keys[0],
			"%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the decoded values.
func (c *Config) Validate() error {
	positive := []struct {
		param string
		v     float64
	}{
		{"stairs.theoretical_rise_mm", c.Stairs.TheoreticalRiseMM},
		{"stairs.run_mm", c.Stairs.RunMM},
		{"stairs.thread_thickness_mm", c.Stairs.ThreadThicknessMM},
		{"stairs.slab_thickness_mm", c.Stairs.SlabThicknessMM},
		{"handrail.height_mm", c.Handrail.HeightMM},
		{"handrail.diameter_mm", c.Handrail.DiameterMM},
		{"handrail.width_mm", c.Handrail.WidthMM},
		{"handrail.post_diameter_mm", c.Handrail.PostDiameterMM},
		{"handrail.post_interval_mm", c.Handrail.PostIntervalMM},
		{"spiral.tread_thickness_mm", c.Spiral.TreadThicknessMM},
		{"spiral.samples_per_step", float64(c.Spiral.SamplesPerStep)},
		{"spiral.arc_segments", float64(c.Spiral.ArcSegments)},
	}
	for _, p := range positive {
		if p.v <= 0 {
			return nerr.Invalid(nerr.ErrCodeInvalidInput, "config", p.param, "must be positive, got %v", p.v)
		}
	}
	if c.Spiral.GapDeg < 0 || c.Spiral.RailOffsetMM < 0 {
		return nerr.Invalid(nerr.ErrCodeInvalidInput, "config", "spiral",
			"gap_deg and rail_offset_mm must not be negative")
	}
	if c.Render.Workers < 0 {
		return nerr.Invalid(nerr.ErrCodeInvalidInput, "config", "render.workers", "must not be negative")
	}
	switch c.Render.Kernel {
	case KernelSdfx, KernelManifold:
	default:
		return nerr.Invalid(nerr.ErrCodeInvalidInput, "config", "render.kernel",
			"unknown kernel %q (want %s or %s)", c.Render.Kernel, KernelSdfx, KernelManifold)
	}
	return nil
}

// StairSettings returns the stair defaults with the [handrail] section
// folded in.
func (c *Config) StairSettings() stair.Settings {
	s := c.Stairs
	s.Handrail = c.Handrail
	return s
}

// SpiralSettings returns the spiral defaults with the [handrail] section
// folded in.
func (c *Config) SpiralSettings() spiral.Settings {
	s := c.Spiral
	s.Rail = c.Handrail
	return s
}

// Catalog returns the built-in materials extended by [[materials]].
func (c *Config) Catalog() (*material.Catalog, error) {
	cat := material.Builtin()
	if err := cat.Merge(c.Materials); err != nil {
		return nil, fmt.Errorf("config: materials: %w", err)
	}
	return cat, nil
}

// WorkerCount returns the tessellation concurrency.
func (r Render) WorkerCount() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return runtime.NumCPU()
}

// NewKernel constructs the configured geometry backend.
func (r Render) NewKernel() (kernel.Kernel, error) {
	opts := []kernel.Option{kernel.WithMeshCells(r.MeshCells), kernel.WithSegments(r.Segments)}
	switch r.Kernel {
	case "", KernelSdfx:
		return sdfx.New(opts...), nil
	case KernelManifold:
		return manifold.New(opts...)
	}
	return nil, fmt.Errorf("config: unknown kernel %q", r.Kernel)
}
