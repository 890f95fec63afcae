package engine

import (
	"fmt"
	"sort"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	nerr "github.com/Dante-U/nervi/pkg/errors"
	"github.com/Dante-U/nervi/pkg/graph"
	"github.com/Dante-U/nervi/pkg/stair"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpNodeRef wraps a graph.NodeID so it can be passed between builtins.
// anchors is the node carrying the anchors when it differs from id, as
// for a stair placed in a space.
type sexpNodeRef struct {
	id      graph.NodeID
	anchors graph.NodeID
	name    string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(noderef %q)", n.name)
	}
	return fmt.Sprintf("(noderef %s)", n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

func (n *sexpNodeRef) anchorNode() graph.NodeID {
	if n.anchors.IsZero() {
		return n.id
	}
	return n.anchors
}

// sexpAnchor names an anchor of a node, as returned by top-of.
type sexpAnchor struct {
	ref    *sexpNodeRef
	anchor string
}

func (a *sexpAnchor) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(anchor %s %q)", a.ref.SexpString(ps), a.anchor)
}
func (a *sexpAnchor) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a graph.Vec3.
type sexpVec3 struct {
	vec graph.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.1f %.1f %.1f)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpSpace wraps a declared space.
type sexpSpace struct {
	space stair.Space
}

func (s *sexpSpace) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(space %q :height %g)", s.space.Name, s.space.HeightM)
}
func (s *sexpSpace) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer; floats must be whole.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == float64(int(v.Val)) {
			return int(v.Val), nil
		}
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a boolean.
func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_wood) and plain strings ("wood").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toNodeRef extracts a node reference.
func toNodeRef(s zygo.Sexp) (*sexpNodeRef, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref, nil
	}
	return nil, fmt.Errorf("expected node reference, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (graph.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return graph.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
// A single non-list value is returned as a one-element slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	case *zygo.SexpStr:
		return []zygo.Sexp{v}, nil
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Argument reader
// ---------------------------------------------------------------------------

// argReader pulls typed keyword arguments for one builtin call. The first
// failure sticks; done reports it along with any keyword nobody asked for.
type argReader struct {
	fn    string
	pa    kwArgs
	used  map[string]bool
	named bool
	err   error
}

func newArgReader(fn string, args []zygo.Sexp) *argReader {
	return &argReader{fn: fn, pa: parseArgs(args), used: map[string]bool{}}
}

func (r *argReader) take(key string) (zygo.Sexp, bool) {
	if r.err != nil {
		return nil, false
	}
	v, ok := r.pa.kw[key]
	if ok {
		r.used[key] = true
	}
	return v, ok
}

func (r *argReader) fail(key string, err error) {
	r.err = nerr.Invalid(nerr.ErrCodeInvalidInput, r.fn, key, "%v", err)
}

// name reads the optional leading positional name.
func (r *argReader) name() string {
	r.named = true
	if len(r.pa.positional) == 0 || r.err != nil {
		return ""
	}
	s, err := toString(r.pa.positional[0])
	if err != nil {
		r.fail("name", err)
	}
	return s
}

func (r *argReader) float(key string, dst *float64) {
	if v, ok := r.take(key); ok {
		f, err := toFloat64(v)
		if err != nil {
			r.fail(key, err)
			return
		}
		*dst = f
	}
}

// floatPtr sets *dst only when the keyword is present.
func (r *argReader) floatPtr(key string, dst **float64) {
	if _, ok := r.pa.kw[key]; !ok {
		return
	}
	var f float64
	r.float(key, &f)
	if r.err == nil {
		*dst = &f
	}
}

func (r *argReader) int(key string, dst *int) {
	if v, ok := r.take(key); ok {
		n, err := toInt(v)
		if err != nil {
			r.fail(key, err)
			return
		}
		*dst = n
	}
}

func (r *argReader) intPtr(key string, dst **int) {
	if _, ok := r.pa.kw[key]; !ok {
		return
	}
	var n int
	r.int(key, &n)
	if r.err == nil {
		*dst = &n
	}
}

func (r *argReader) bool(key string, dst *bool) {
	if v, ok := r.take(key); ok {
		b, err := toBool(v)
		if err != nil {
			r.fail(key, err)
			return
		}
		*dst = b
	}
}

func (r *argReader) str(key string, dst *string) {
	if v, ok := r.take(key); ok {
		s, err := toString(v)
		if err != nil {
			r.fail(key, err)
			return
		}
		*dst = s
	}
}

func (r *argReader) keyword(key string, dst *string) {
	if v, ok := r.take(key); ok {
		s, err := toKeywordString(v)
		if err != nil {
			r.fail(key, err)
			return
		}
		*dst = s
	}
}

func (r *argReader) vec(key string, dst *graph.Vec3) {
	if v, ok := r.take(key); ok {
		vec, err := toVec3(v)
		if err != nil {
			r.fail(key, err)
			return
		}
		*dst = vec
	}
}

// sides reads a list of side keywords.
func (r *argReader) sides(key string, dst *[]stair.Side) {
	v, ok := r.take(key)
	if !ok {
		return
	}
	items, err := sexpListToSlice(v)
	if err != nil {
		r.fail(key, err)
		return
	}
	names := make([]string, 0, len(items))
	for _, it := range items {
		s, err := toKeywordString(it)
		if err != nil {
			r.fail(key, err)
			return
		}
		names = append(names, s)
	}
	out, err := stair.ParseSides(names)
	if err != nil {
		r.err = err
		return
	}
	*dst = out
}

// rail reads the handrail dimension overrides shared by stairs and handrail.
func (r *argReader) rail(o *stair.HandrailOptions) {
	r.floatPtr("rail-height", &o.HeightMM)
	r.floatPtr("rail-diameter", &o.DiameterMM)
	r.floatPtr("rail-width", &o.WidthMM)
	r.floatPtr("post-diameter", &o.PostDiameterMM)
	r.floatPtr("post-interval", &o.PostIntervalMM)
}

// done returns the first failure, or an error naming unexpected arguments.
func (r *argReader) done() error {
	if r.err != nil {
		return r.err
	}
	var unknown []string
	for k := range r.pa.kw {
		if !r.used[k] {
			unknown = append(unknown, ":"+k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nerr.Invalid(nerr.ErrCodeInvalidInput, r.fn, strings.TrimPrefix(unknown[0], ":"),
			"unknown keyword %s", strings.Join(unknown, ", "))
	}
	limit := 0
	if r.named {
		limit = 1
	}
	if len(r.pa.positional) > limit {
		return nerr.Invalid(nerr.ErrCodeInvalidInput, r.fn, "",
			"unexpected positional argument %s", r.pa.positional[limit].SexpString(nil))
	}
	return nil
}
