package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/chazu/facet/pkg/engine"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/part"
	"github.com/chazu/facet/pkg/topo"
	"gopkg.in/yaml.v3"
)

// Manifest describes the labels of every part a run produced.
type Manifest struct {
	RunID  string         `yaml:"run_id"`
	Source string         `yaml:"source"`
	Parts  []PartManifest `yaml:"parts"`
}

// PartManifest lists one part's labels in order.
type PartManifest struct {
	Name    string          `yaml:"name"`
	Kind    string          `yaml:"kind"`
	Extents []float64       `yaml:"extents,flow"`
	Labels  []LabelManifest `yaml:"labels,omitempty"`
}

// LabelManifest summarises what a label names.
type LabelManifest struct {
	Label string         `yaml:"label"`
	Kinds map[string]int `yaml:"kinds,omitempty"`
	// Extents of everything under the label as min x,y,z then max x,y,z.
	Extents []float64 `yaml:"extents,flow,omitempty"`
	// Stale marks labels that pruning would drop.
	Stale bool `yaml:"stale,omitempty"`
}

// BuildManifest summarises the labels of every part in d.
func BuildManifest(runID, source string, d *engine.Design) Manifest {
	m := Manifest{RunID: runID, Source: source}
	for _, np := range d.Parts() {
		m.Parts = append(m.Parts, partManifest(np.Name, np.Part))
	}
	return m
}

func partManifest(name string, p *part.Part) PartManifest {
	pm := PartManifest{
		Name:    name,
		Kind:    p.Kind().String(),
		Extents: extentsOf(p.Extents()),
	}
	stale := p.StaleLabels()
	for _, l := range p.Labels() {
		shapes, _ := p.Get(l)
		lm := LabelManifest{Label: l, Kinds: make(map[string]int), Stale: slices.Contains(stale, l)}
		for _, s := range shapes {
			lm.Kinds[s.Kind().String()]++
		}
		if len(shapes) > 0 {
			lm.Extents = extentsOf(topo.Of(p.Kernel().Compound(shapes...)))
		}
		pm.Labels = append(pm.Labels, lm)
	}
	return pm
}

func extentsOf(e topo.Extents) []float64 {
	lo, hi := e.MinPoint(), e.MaxPoint()
	return []float64{lo.X, lo.Y, lo.Z, hi.X, hi.Y, hi.Z}
}

// WriteManifest writes m as YAML to path.
func WriteManifest(path string, m Manifest) error {
	out, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("manifest: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("manifest: %w", err)
	}
	return nil
}

// kindCounts counts shapes by kind, for query output.
func kindCounts(shapes []kernel.Shape) map[string]int {
	out := make(map[string]int)
	for _, s := range shapes {
		out[s.Kind().String()]++
	}
	return out
}
