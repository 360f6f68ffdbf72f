package curriculum

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const guideSuffix = ".guide.md"

// definitionFiles are the names looked up when Load is given a directory.
var definitionFiles = []string{"curriculum.yaml", "curriculum.yml"}

// Load reads a curriculum definition from path. The path is either a YAML
// file or a directory holding curriculum.yaml plus optional guide notes named
// <concept-id>.guide.md anywhere below it. Guide notes override guide text
// embedded in the YAML.
func Load(path string) (Definition, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Definition{}, fmt.Errorf("loading curriculum: %w", err)
	}

	if !info.IsDir() {
		return loadFile(path)
	}

	var defPath string
	for _, name := range definitionFiles {
		candidate := filepath.Join(path, name)
		if _, err := os.Stat(candidate); err == nil {
			defPath = candidate
			break
		}
	}
	if defPath == "" {
		return Definition{}, fmt.Errorf("loading curriculum: no curriculum.yaml in %s", path)
	}

	def, err := loadFile(defPath)
	if err != nil {
		return Definition{}, err
	}

	guides, err := loadGuides(path)
	if err != nil {
		return Definition{}, fmt.Errorf("loading guides: %w", err)
	}
	applied := 0
	for mi := range def.Modules {
		for ci := range def.Modules[mi].Concepts {
			c := &def.Modules[mi].Concepts[ci]
			if g, ok := guides[c.ID]; ok {
				c.Guide = g
				applied++
			}
		}
	}
	if applied < len(guides) {
		slog.Warn("guide notes without matching concept", "unmatched", len(guides)-applied)
	}

	return Normalize(def), nil
}

func loadFile(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("loading curriculum: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML curriculum definition.
func Parse(data []byte) (Definition, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Definition{}, fmt.Errorf("decoding curriculum YAML: %w", err)
	}
	if doc == nil {
		return Definition{}, fmt.Errorf("%w: empty document", ErrInvalidDefinition)
	}
	if err := validateDocument(doc); err != nil {
		return Definition{}, err
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return Definition{}, fmt.Errorf("decoding curriculum YAML: %w", err)
	}

	def = Normalize(def)
	if err := Validate(def); err != nil {
		return Definition{}, err
	}

	slog.Info("curriculum loaded", "id", def.ID, "modules", len(def.Modules))
	return def, nil
}

func loadGuides(root string) (map[ConceptID]string, error) {
	guides := make(map[ConceptID]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), guideSuffix) {
			return nil
		}

		id, convErr := strconv.Atoi(strings.TrimSuffix(d.Name(), guideSuffix))
		if convErr != nil {
			slog.Warn("skipping guide with non-numeric name", "path", path)
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		guides[ConceptID(id)] = string(data)
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return guides, nil
}
