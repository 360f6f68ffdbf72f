package progress

import (
	"encoding/json"
	"slices"
)

// Outcome describes what ApplyProgressDelta did with a request.
type Outcome string

const (
	OutcomeApplied          Outcome = "applied"
	OutcomeConceptLocked    Outcome = "concept_locked"
	OutcomeConceptCompleted Outcome = "concept_completed"
	OutcomeNotFound         Outcome = "not_found"
)

// ChangeKind names a single state transition produced by a mutation.
type ChangeKind string

const (
	ChangeProgress         ChangeKind = "concept.progressed"
	ChangeConceptCompleted ChangeKind = "concept.completed"
	ChangeConceptUnlocked  ChangeKind = "concept.unlocked"
	ChangeModuleCompleted  ChangeKind = "module.completed"
	ChangeModuleUnlocked   ChangeKind = "module.unlocked"
)

// Change records one transition. From and To are only set for ChangeProgress.
type Change struct {
	Kind      ChangeKind `json:"kind"`
	ModuleID  ModuleID   `json:"module_id"`
	ConceptID ConceptID  `json:"concept_id,omitempty"`
	From      int        `json:"from"`
	To        int        `json:"to"`
}

// MarshalJSON emits from and to for progress changes only, zero included.
func (c Change) MarshalJSON() ([]byte, error) {
	out := struct {
		Kind      ChangeKind `json:"kind"`
		ModuleID  ModuleID   `json:"module_id"`
		ConceptID ConceptID  `json:"concept_id,omitempty"`
		From      *int       `json:"from,omitempty"`
		To        *int       `json:"to,omitempty"`
	}{
		Kind:      c.Kind,
		ModuleID:  c.ModuleID,
		ConceptID: c.ConceptID,
	}
	if c.Kind == ChangeProgress {
		out.From, out.To = &c.From, &c.To
	}
	return json.Marshal(out)
}

// applyDelta computes the successor of prev after adding amount to a concept's
// progress, including the unlock cascade. When the request is a no-op it
// returns prev itself.
func applyDelta(prev *Snapshot, conceptID ConceptID, amount int) (*Snapshot, Outcome, []Change) {
	mi, ci, ok := prev.locate(conceptID)
	if !ok {
		return prev, OutcomeNotFound, nil
	}

	mod := prev.Modules[mi]
	concept := mod.Concepts[ci]
	if !concept.Unlocked {
		return prev, OutcomeConceptLocked, nil
	}
	if concept.Completed {
		return prev, OutcomeConceptCompleted, nil
	}

	var changes []Change

	updated := *concept
	updated.Progress = addClamped(concept.Progress, amount)
	updated.Completed = updated.Progress == MaxProgress
	if updated.Progress != concept.Progress {
		changes = append(changes, Change{
			Kind:      ChangeProgress,
			ModuleID:  mod.ID,
			ConceptID: concept.ID,
			From:      concept.Progress,
			To:        updated.Progress,
		})
	}

	concepts := slices.Clone(mod.Concepts)
	concepts[ci] = &updated

	if updated.Completed {
		changes = append(changes, Change{Kind: ChangeConceptCompleted, ModuleID: mod.ID, ConceptID: concept.ID})
		if ci+1 < len(concepts) && !concepts[ci+1].Unlocked {
			next := *concepts[ci+1]
			next.Unlocked = true
			concepts[ci+1] = &next
			changes = append(changes, Change{Kind: ChangeConceptUnlocked, ModuleID: mod.ID, ConceptID: next.ID})
		}
	}

	updatedMod := *mod
	updatedMod.Concepts = concepts
	updatedMod.Completed = allCompleted(concepts)

	modules := slices.Clone(prev.Modules)
	modules[mi] = &updatedMod

	if updatedMod.Completed && !mod.Completed {
		changes = append(changes, Change{Kind: ChangeModuleCompleted, ModuleID: mod.ID})
		if mi+1 < len(modules) {
			if unlocked, cascade := unlockModule(modules[mi+1]); unlocked != nil {
				modules[mi+1] = unlocked
				changes = append(changes, cascade...)
			}
		}
	}

	return &Snapshot{
		Version:        prev.Version + 1,
		Modules:        modules,
		ExpandedModule: prev.ExpandedModule,
	}, OutcomeApplied, changes
}

// unlockModule returns an unlocked copy of m with its first concept unlocked,
// or nil if both already are.
func unlockModule(m *Module) (*Module, []Change) {
	firstLocked := len(m.Concepts) > 0 && !m.Concepts[0].Unlocked
	if m.Unlocked && !firstLocked {
		return nil, nil
	}

	var changes []Change
	out := *m
	if !m.Unlocked {
		out.Unlocked = true
		changes = append(changes, Change{Kind: ChangeModuleUnlocked, ModuleID: m.ID})
	}
	if firstLocked {
		first := *m.Concepts[0]
		first.Unlocked = true
		out.Concepts = slices.Clone(m.Concepts)
		out.Concepts[0] = &first
		changes = append(changes, Change{Kind: ChangeConceptUnlocked, ModuleID: m.ID, ConceptID: first.ID})
	}
	return &out, changes
}

// addClamped returns progress+amount limited to [MinProgress, MaxProgress]
// without overflowing for extreme amounts.
func addClamped(progress, amount int) int {
	switch {
	case amount >= MaxProgress-progress:
		return MaxProgress
	case amount <= MinProgress-progress:
		return MinProgress
	default:
		return progress + amount
	}
}

func allCompleted(concepts []*Concept) bool {
	for _, c := range concepts {
		if !c.Completed {
			return false
		}
	}
	return true
}

// toggleExpansion returns the successor of prev with the expansion toggled.
func toggleExpansion(prev *Snapshot, moduleID ModuleID) *Snapshot {
	next := &Snapshot{
		Version: prev.Version + 1,
		Modules: prev.Modules,
	}
	if !prev.IsExpanded(moduleID) {
		id := moduleID
		next.ExpandedModule = &id
	}
	return next
}
