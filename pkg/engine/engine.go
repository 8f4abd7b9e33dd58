// Package engine provides the Lisp evaluation engine for facet scripts.
// It wraps zygomys in a sandboxed environment with builtins over parts and
// produces the Design a script defines.
package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/kernel/poly"
	zygo "github.com/glycerine/zygomys/zygo"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning represents a non-fatal warning produced during evaluation.
type EvalWarning struct {
	Part    string
	Message string
}

func (w EvalWarning) String() string {
	return fmt.Sprintf("part %q: %s", w.Part, w.Message)
}

// EvalResult bundles the full output of an evaluation.
type EvalResult struct {
	Design   *Design
	Errors   []EvalError
	Warnings []EvalWarning
	Cached   bool
}

// DefaultCacheSize is the number of evaluations kept when no size is given.
const DefaultCacheSize = 32

// Engine wraps the zygomys interpreter for facet evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	k       kernel.Kernel
	log     *zap.Logger
	timeout time.Duration
	cache   *lru.Cache[string, *EvalResult]
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	k         kernel.Kernel
	log       *zap.Logger
	timeout   time.Duration
	cacheSize int
}

// WithKernel sets the kernel builtins build shapes with. The default is a
// poly kernel with default settings.
func WithKernel(k kernel.Kernel) Option {
	return func(o *engineOptions) { o.k = k }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *engineOptions) { o.log = l }
}

// WithTimeout bounds a single evaluation.
func WithTimeout(d time.Duration) Option {
	return func(o *engineOptions) { o.timeout = d }
}

// WithCacheSize sets how many successful evaluations are remembered. Zero
// or less disables the cache.
func WithCacheSize(n int) Option {
	return func(o *engineOptions) { o.cacheSize = n }
}

// NewEngine creates a new Engine instance.
func NewEngine(opts ...Option) *Engine {
	o := engineOptions{timeout: EvalTimeout, cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.k == nil {
		o.k = poly.New()
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	e := &Engine{k: o.k, log: o.log.Named("engine"), timeout: o.timeout}
	if o.cacheSize > 0 {
		c, err := lru.New[string, *EvalResult](o.cacheSize)
		if err != nil {
			e.log.Warn("result cache disabled", zap.Int("size", o.cacheSize), zap.Error(err))
		} else {
			e.cache = c
		}
	}
	return e
}

// Kernel returns the kernel builtins run against.
func (e *Engine) Kernel() kernel.Kernel { return e.k }

// Purge drops every cached evaluation.
func (e *Engine) Purge() {
	if e.cache != nil {
		e.cache.Purge()
	}
}

// Evaluate takes Lisp source code and produces the Design it defines.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns a result with a design and no errors, nil error
//   - On parse/eval failure: returns a result with eval errors and a nil
//     design, nil error
//   - On fatal failure (timeout, panic): returns nil result + error
func (e *Engine) Evaluate(source string) (*EvalResult, error) {
	src := preprocessSource(source)
	key := cacheKey(src)
	if e.cache != nil {
		if res, ok := e.cache.Get(key); ok {
			e.log.Debug("cache hit", zap.String("key", key[:12]))
			hit := *res
			hit.Cached = true
			return &hit, nil
		}
		e.log.Debug("cache miss", zap.String("key", key[:12]))
	}

	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	start := time.Now()
	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		ch <- e.evaluate(src)
	}()

	res := waitWithTimeout(ch, gen, &e.mu, &e.generation, e.timeout)
	e.log.Debug("evaluated",
		zap.Uint64("generation", gen),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("errors", len(res.errors)),
		zap.Error(res.err))
	if res.err != nil {
		return nil, res.err
	}

	out := &EvalResult{Design: res.design, Errors: res.errors, Warnings: res.warnings}
	if e.cache != nil && len(out.Errors) == 0 {
		e.cache.Add(key, out)
	}
	return out, nil
}

func cacheKey(src string) string {
	sum := sha256.Sum256([]byte(src))
	return hex.EncodeToString(sum[:])
}

// evaluate performs the actual zygomys evaluation of preprocessed source
// in a fresh sandbox.
func (e *Engine) evaluate(source string) evalResult {
	// Empty source is a valid program that defines nothing.
	if strings.TrimSpace(source) == "" {
		return evalResult{design: newDesign()}
	}

	// Sandbox mode prevents user code from accessing the filesystem or
	// syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	d := newDesign()
	registerBuiltins(env, e.k, d)

	if err := env.LoadString(source); err != nil {
		return evalResult{errors: parseZygomysError(err)}
	}
	last, err := env.Run()
	if err != nil {
		return evalResult{errors: parseZygomysError(err)}
	}

	// A script that defines nothing but ends in a part yields that part.
	if d.PartCount() == 0 {
		if p, ok := last.(*sexpPart); ok {
			d.define("main", p.p)
		}
	}
	return evalResult{design: d, warnings: lint(d)}
}

// lint reports parts whose label maps hold labels (prune ...) would drop.
func lint(d *Design) []EvalWarning {
	var out []EvalWarning
	for _, np := range d.parts {
		if stale := np.Part.StaleLabels(); len(stale) > 0 {
			out = append(out, EvalWarning{
				Part:    np.Name,
				Message: fmt.Sprintf("%d labels name nothing below the part; use (prune ...) to drop them", len(stale)),
			})
		}
	}
	return out
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError
// values, extracting line information when the message carries it.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
