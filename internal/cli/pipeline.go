package cli

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/Dante-U/nervi/pkg/config"
	"github.com/Dante-U/nervi/pkg/engine"
	nerr "github.com/Dante-U/nervi/pkg/errors"
	"github.com/Dante-U/nervi/pkg/graph"
	"github.com/Dante-U/nervi/pkg/kernel"
	"github.com/Dante-U/nervi/pkg/tessellate"
)

// colorPalette is assigned to meshes whose material carries no color.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// Diagnostic is an evaluation error or warning.
type Diagnostic struct {
	Line    int       `json:"line"`
	Col     int       `json:"col"`
	Message string    `json:"message"`
	Code    nerr.Code `json:"code,omitempty"`
}

// Result is the output of one pipeline run.
type Result struct {
	Graph    *graph.DesignGraph
	Meshes   []*kernel.Mesh
	Errors   []Diagnostic
	Warnings []Diagnostic
}

// OK reports whether the run produced no errors.
func (r *Result) OK() bool { return len(r.Errors) == 0 }

// Pipeline turns design script source into a validated scene graph and,
// on request, into meshes.
type Pipeline struct {
	engine  *engine.Engine
	kernel  kernel.Kernel
	workers int
	log     *log.Logger
}

// newPipeline wires an engine and a kernel from cfg.
func newPipeline(cfg *config.Config, l *log.Logger) (*Pipeline, error) {
	cat, err := cfg.Catalog()
	if err != nil {
		return nil, err
	}
	k, err := cfg.Render.NewKernel()
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		engine: engine.NewEngine(
			engine.WithLogger(l),
			engine.WithCatalog(cat),
			engine.WithStairSettings(cfg.StairSettings()),
			engine.WithSpiralSettings(cfg.SpiralSettings()),
		),
		kernel:  k,
		workers: cfg.Render.WorkerCount(),
		log:     l,
	}, nil
}

// Evaluate runs source through the engine and graph validation.
func (p *Pipeline) Evaluate(source string) *Result {
	result := &Result{}

	// Step 1: Evaluate the Lisp source into a validated design graph.
	res, err := p.engine.Run(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		p.log.Error("evaluate", "err", err)
		result.Errors = append(result.Errors, Diagnostic{Message: err.Error(), Code: nerr.ErrCodeInternal})
		return result
	}

	// Step 2: Convert eval errors and warnings.
	for _, e := range res.Errors {
		result.Errors = append(result.Errors, Diagnostic{Line: e.Line, Col: e.Col, Message: e.Message, Code: e.Code})
	}
	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, Diagnostic{Line: w.Line, Col: w.Col, Message: w.Message})
	}
	result.Graph = res.Graph
	return result
}

// Render evaluates source and tessellates the graph.
func (p *Pipeline) Render(ctx context.Context, source string) *Result {
	result := p.Evaluate(source)
	if !result.OK() {
		return result
	}

	// Step 3: Tessellate the design graph into triangle meshes.
	meshes, err := tessellate.Parallel(ctx, result.Graph, p.kernel, p.workers)
	if err != nil {
		p.log.Error("tessellate", "err", err)
		result.Errors = append(result.Errors, Diagnostic{
			Message: "tessellation failed: " + err.Error(),
			Code:    nerr.GetCode(err),
		})
		return result
	}

	// Step 4: Fill in colors for parts without a material color.
	for i, m := range meshes {
		if m.Color == "" {
			m.Color = colorPalette[i%len(colorPalette)]
		}
	}
	result.Meshes = meshes
	return result
}
