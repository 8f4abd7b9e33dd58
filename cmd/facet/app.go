package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/chazu/facet/pkg/config"
	"github.com/chazu/facet/pkg/engine"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/tessellate"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// App ties the script engine to mesh export for one CLI invocation.
type App struct {
	cfg    config.Config
	engine *engine.Engine
	log    *zap.Logger
}

// NewApp creates an App with an engine configured from cfg.
func NewApp(cfg config.Config, log *zap.Logger) *App {
	return &App{cfg: cfg, engine: cfg.NewEngine(log), log: log}
}

// Report is the outcome of evaluating one script.
type Report struct {
	RunID    string
	Source   string
	Result   *engine.EvalResult
	Meshes   []*kernel.Mesh
	Files    []string
	Manifest Manifest
}

// Failed reports whether the script produced evaluation errors.
func (r *Report) Failed() bool {
	return r.Result == nil || len(r.Result.Errors) > 0
}

// Evaluate runs source and tessellates every part it defines. Evaluation
// errors are returned in the report; the error result is reserved for
// fatal failures (timeouts, tessellation).
func (a *App) Evaluate(name, source string) (*Report, error) {
	rep := &Report{RunID: uuid.NewString(), Source: name}
	log := a.log.With(zap.String("run", rep.RunID), zap.String("source", name))

	// Step 1: evaluate the script into a design.
	res, err := a.engine.Evaluate(source)
	if err != nil {
		log.Error("evaluation failed", zap.Error(err))
		return nil, fmt.Errorf("evaluate %s: %w", name, err)
	}
	rep.Result = res

	// Step 2: script errors end the run without meshes.
	if len(res.Errors) > 0 {
		for _, e := range res.Errors {
			log.Warn("script error", zap.Int("line", e.Line), zap.String("message", e.Message))
		}
		return rep, nil
	}
	for _, w := range res.Warnings {
		log.Warn("script warning", zap.String("part", w.Part), zap.String("message", w.Message))
	}

	// Step 3: tessellate each defined part.
	opts := tessellate.Options{PerSolid: a.cfg.Export.PerSolid}
	for _, np := range res.Design.Parts() {
		meshes, err := tessellate.Tessellate(np.Part, np.Name, opts)
		if err != nil {
			return nil, fmt.Errorf("tessellate %s: %w", np.Name, err)
		}
		rep.Meshes = append(rep.Meshes, meshes...)
	}
	rep.Manifest = BuildManifest(rep.RunID, name, res.Design)

	log.Info("evaluated",
		zap.Int("parts", res.Design.PartCount()),
		zap.Int("meshes", len(rep.Meshes)),
		zap.Bool("cached", res.Cached))
	return rep, nil
}

// EvaluateFile reads and evaluates a script file.
func (a *App) EvaluateFile(path string) (*Report, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return a.Evaluate(filepath.Base(path), string(src))
}

// Export writes the report's meshes to dir as STL files.
func (a *App) Export(rep *Report, dir string) error {
	files, err := tessellate.Export(dir, rep.Meshes)
	if err != nil {
		return err
	}
	rep.Files = files
	a.log.Info("exported", zap.String("run", rep.RunID), zap.String("dir", dir), zap.Int("files", len(files)))
	return nil
}
