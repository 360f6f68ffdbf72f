package curriculum

// ModuleID identifies a module within a curriculum.
type ModuleID int

// ConceptID identifies a concept. Concept IDs are unique across the whole curriculum.
type ConceptID int

// Definition is the static shape of a curriculum, loaded from YAML or built in.
// It carries no progress or unlock state.
type Definition struct {
	ID      string             `yaml:"id"`
	Name    string             `yaml:"name"`
	Modules []ModuleDefinition `yaml:"modules"`
}

// ModuleDefinition describes an ordered group of concepts.
type ModuleDefinition struct {
	ID          ModuleID            `yaml:"id"`
	Title       string              `yaml:"title"`
	Description string              `yaml:"description"`
	Concepts    []ConceptDefinition `yaml:"concepts"`
}

// ConceptDefinition describes a single learnable concept.
type ConceptDefinition struct {
	ID        ConceptID  `yaml:"id"`
	Name      string     `yaml:"name"`
	Guide     string     `yaml:"guide,omitempty"`
	Exercises []Exercise `yaml:"exercises,omitempty"`
}

// Exercise is a practice problem with an integer answer.
type Exercise struct {
	Problem string `yaml:"problem"`
	Answer  int    `yaml:"answer"`
}

// Concept returns the concept definition with the given ID.
func (d Definition) Concept(id ConceptID) (ConceptDefinition, bool) {
	for _, m := range d.Modules {
		for _, c := range m.Concepts {
			if c.ID == id {
				return c, true
			}
		}
	}
	return ConceptDefinition{}, false
}

// Guide returns the guide text for a concept. Concepts without their own guide
// fall back to the first concept's guide.
func (d Definition) Guide(id ConceptID) (string, bool) {
	if c, ok := d.Concept(id); ok && c.Guide != "" {
		return c.Guide, true
	}
	if len(d.Modules) == 0 || len(d.Modules[0].Concepts) == 0 {
		return "", false
	}
	first := d.Modules[0].Concepts[0].Guide
	return first, first != ""
}

// Exercises returns the exercise set of every concept that has one.
func (d Definition) Exercises() map[ConceptID][]Exercise {
	out := make(map[ConceptID][]Exercise)
	for _, m := range d.Modules {
		for _, c := range m.Concepts {
			if len(c.Exercises) > 0 {
				out[c.ID] = c.Exercises
			}
		}
	}
	return out
}
