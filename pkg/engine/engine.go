// Package engine evaluates nervi design scripts. It wraps zygomys in a
// sandboxed environment, exposes the stair, spiral and handrail generators
// as builtins, and produces a DesignGraph from user source code.
package engine

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	zygo "github.com/glycerine/zygomys/zygo"

	nerr "github.com/Dante-U/nervi/pkg/errors"
	"github.com/Dante-U/nervi/pkg/graph"
	"github.com/Dante-U/nervi/pkg/material"
	"github.com/Dante-U/nervi/pkg/spiral"
	"github.com/Dante-U/nervi/pkg/stair"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error, a runtime error in user code or a generator
// rejecting its arguments.
type EvalError struct {
	Line    int
	Col     int
	Message string
	Code    nerr.Code // set when a generator rejected its input
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning represents a non-fatal warning produced during evaluation.
type EvalWarning struct {
	Line    int
	Col     int
	Message string
	NodeID  graph.NodeID
}

// EvalResult bundles the full output of an evaluation and validation pass.
type EvalResult struct {
	Graph    *graph.DesignGraph
	Errors   []EvalError
	Warnings []EvalWarning
}

// OK reports whether the evaluation produced a usable graph.
func (r *EvalResult) OK() bool {
	return r.Graph != nil && len(r.Errors) == 0
}

// Engine wraps the zygomys interpreter for nervi evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	timeout time.Duration
	log     *log.Logger
	catalog *material.Catalog
	stairs  stair.Settings
	spiral  spiral.Settings
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger generators report their plans to.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithCatalog sets the material catalog.
func WithCatalog(c *material.Catalog) Option {
	return func(e *Engine) {
		if c != nil {
			e.catalog = c
		}
	}
}

// WithStairSettings sets the stair and handrail defaults.
func WithStairSettings(s stair.Settings) Option {
	return func(e *Engine) { e.stairs = s }
}

// WithSpiralSettings sets the spiral stair defaults.
func WithSpiralSettings(s spiral.Settings) Option {
	return func(e *Engine) { e.spiral = s }
}

// WithTimeout overrides EvalTimeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// NewEngine creates a new Engine instance.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		timeout: EvalTimeout,
		log:     log.New(io.Discard),
		catalog: material.Builtin(),
		stairs:  stair.DefaultSettings(),
		spiral:  spiral.DefaultSettings(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate takes Lisp source code and produces a new DesignGraph.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns graph + nil errors + nil error
//   - On parse/eval failure: returns nil graph + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*graph.DesignGraph, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		g, evalErrs, err := e.evaluate(source)
		ch <- evalResult{graph: g, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation, e.timeout)
}

// Run evaluates source and validates the resulting graph. Validation
// errors are reported as eval errors, validation warnings as warnings.
func (e *Engine) Run(source string) (*EvalResult, error) {
	g, evalErrs, err := e.Evaluate(source)
	if err != nil {
		return nil, err
	}
	res := &EvalResult{Errors: evalErrs}
	if len(evalErrs) > 0 {
		return res, nil
	}
	v := graph.ValidateAll(g)
	for _, ve := range v.Errors {
		res.Errors = append(res.Errors, EvalError{Message: ve.Error(), Code: nerr.ErrCodeInternal})
	}
	for _, w := range v.Warnings {
		res.Warnings = append(res.Warnings, EvalWarning{Message: w.Message, NodeID: w.NodeID})
	}
	if len(res.Errors) == 0 {
		res.Graph = g
	}
	return res, nil
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*graph.DesignGraph, []EvalError, error) {
	// Empty source is a valid program that produces an empty graph.
	if strings.TrimSpace(source) == "" {
		return graph.New(), nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	s := e.newSession()
	s.register(env)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		evalErrs := parseZygomysError(err)
		if s.failure != nil {
			evalErrs[0].Message = s.failure.Error()
			evalErrs[0].Code = nerr.GetCode(s.failure)
		}
		return nil, evalErrs, nil
	}
	return s.g, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
