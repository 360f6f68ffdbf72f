package progress

import (
	"encoding/json"

	"github.com/p-n-ai/pai-progress/internal/curriculum"
)

// Progress bounds, in percent.
const (
	MinProgress = 0
	MaxProgress = 100
)

type (
	ConceptID = curriculum.ConceptID
	ModuleID  = curriculum.ModuleID
)

// Concept is the progress state of one concept.
type Concept struct {
	ID        ConceptID `json:"id"`
	Name      string    `json:"name"`
	Progress  int       `json:"progress"`
	Unlocked  bool      `json:"unlocked"`
	Completed bool      `json:"completed"`
}

// Module is the progress state of one module and its concepts.
type Module struct {
	ID          ModuleID   `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Unlocked    bool       `json:"unlocked"`
	Completed   bool       `json:"completed"`
	Concepts    []*Concept `json:"concepts"`
}

// Snapshot is an immutable view of the curriculum state. Snapshots share
// untouched modules and concepts with their predecessor, so pointer equality
// on a Module or Concept means it did not change. Callers must not modify
// anything reachable from a Snapshot.
type Snapshot struct {
	Version        uint64
	Modules        []*Module
	ExpandedModule *ModuleID
}

// Expanded returns the expanded module ID, if any.
func (s *Snapshot) Expanded() (ModuleID, bool) {
	if s.ExpandedModule == nil {
		return 0, false
	}
	return *s.ExpandedModule, true
}

// IsExpanded reports whether the given module is the expanded one.
func (s *Snapshot) IsExpanded(id ModuleID) bool {
	expanded, ok := s.Expanded()
	return ok && expanded == id
}

// Module returns the module with the given ID.
func (s *Snapshot) Module(id ModuleID) (*Module, bool) {
	for _, m := range s.Modules {
		if m.ID == id {
			return m, true
		}
	}
	return nil, false
}

// Concept returns the concept with the given ID.
func (s *Snapshot) Concept(id ConceptID) (*Concept, bool) {
	mi, ci, ok := s.locate(id)
	if !ok {
		return nil, false
	}
	return s.Modules[mi].Concepts[ci], true
}

// ModuleOfConcept returns the module that owns the given concept.
func (s *Snapshot) ModuleOfConcept(id ConceptID) (*Module, bool) {
	mi, _, ok := s.locate(id)
	if !ok {
		return nil, false
	}
	return s.Modules[mi], true
}

// OverallProgress is the fraction of completed modules, between 0 and 1.
func (s *Snapshot) OverallProgress() float64 {
	if len(s.Modules) == 0 {
		return 0
	}
	completed := 0
	for _, m := range s.Modules {
		if m.Completed {
			completed++
		}
	}
	return float64(completed) / float64(len(s.Modules))
}

func (s *Snapshot) locate(id ConceptID) (moduleIdx, conceptIdx int, ok bool) {
	for mi, m := range s.Modules {
		for ci, c := range m.Concepts {
			if c.ID == id {
				return mi, ci, true
			}
		}
	}
	return 0, 0, false
}

// MarshalJSON renders the snapshot for the presentation layer.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Version         uint64    `json:"version"`
		ExpandedModule  *ModuleID `json:"expanded_module"`
		OverallProgress float64   `json:"overall_progress"`
		Modules         []*Module `json:"modules"`
	}{
		Version:         s.Version,
		ExpandedModule:  s.ExpandedModule,
		OverallProgress: s.OverallProgress(),
		Modules:         s.Modules,
	})
}

// initialSnapshot builds version 0 from a definition: only the first module
// and its first concept are unlocked.
func initialSnapshot(def curriculum.Definition) *Snapshot {
	modules := make([]*Module, len(def.Modules))
	for mi, md := range def.Modules {
		concepts := make([]*Concept, len(md.Concepts))
		for ci, cd := range md.Concepts {
			concepts[ci] = &Concept{
				ID:       cd.ID,
				Name:     cd.Name,
				Unlocked: mi == 0 && ci == 0,
			}
		}
		modules[mi] = &Module{
			ID:          md.ID,
			Title:       md.Title,
			Description: md.Description,
			Unlocked:    mi == 0,
			Concepts:    concepts,
		}
	}
	return &Snapshot{Modules: modules}
}
