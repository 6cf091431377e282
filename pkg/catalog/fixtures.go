package catalog

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Fixtures is a catalog snapshot loaded from YAML by the seed command.
type Fixtures struct {
	Cities     []City      `yaml:"cities"`
	Developers []Developer `yaml:"developers"`
	Complexes  []Complex   `yaml:"complexes"`
	Apartments []Apartment `yaml:"apartments"`
	Reviews    []Review    `yaml:"reviews"`
}

// LoadFixtures decodes and validates a YAML catalog. Unknown keys are
// rejected.
func LoadFixtures(r io.Reader) (*Fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	f := &Fixtures{}
	if err := dec.Decode(f); err != nil {
		if errors.Is(err, io.EOF) {
			return f, nil
		}
		return nil, fmt.Errorf("decoding fixtures: %w", err)
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate checks that every row has an id and that references point to
// rows defined in the same file.
func (f *Fixtures) Validate() error {
	cities := map[string]bool{}
	for i, c := range f.Cities {
		if c.ID == "" || c.Name == "" {
			return fmt.Errorf("city #%d: id and name are required", i)
		}
		cities[c.ID] = true
	}

	developers := map[string]bool{}
	for i, d := range f.Developers {
		if d.ID == "" || d.Name == "" {
			return fmt.Errorf("developer #%d: id and name are required", i)
		}
		if d.CityID != "" && !cities[d.CityID] {
			return fmt.Errorf("developer %s: unknown city %q", d.ID, d.CityID)
		}
		developers[d.ID] = true
	}

	complexes := map[string]bool{}
	for i, c := range f.Complexes {
		if c.ID == "" || c.Name == "" || c.Slug == "" {
			return fmt.Errorf("complex #%d: id, name and slug are required", i)
		}
		if complexes[c.ID] {
			return fmt.Errorf("complex %s: duplicate id", c.ID)
		}
		if c.CityID != "" && !cities[c.CityID] {
			return fmt.Errorf("complex %s: unknown city %q", c.ID, c.CityID)
		}
		if c.DeveloperID != "" && !developers[c.DeveloperID] {
			return fmt.Errorf("complex %s: unknown developer %q", c.ID, c.DeveloperID)
		}
		complexes[c.ID] = true
	}

	for i, a := range f.Apartments {
		if a.ID == "" {
			return fmt.Errorf("apartment #%d: id is required", i)
		}
		if !complexes[a.ComplexID] {
			return fmt.Errorf("apartment %s: unknown complex %q", a.ID, a.ComplexID)
		}
	}

	for i, r := range f.Reviews {
		if r.ID == "" {
			return fmt.Errorf("review #%d: id is required", i)
		}
		if !complexes[r.ComplexID] {
			return fmt.Errorf("review %s: unknown complex %q", r.ID, r.ComplexID)
		}
		if r.Rating < 1 || r.Rating > 5 {
			return fmt.Errorf("review %s: rating must be between 1 and 5", r.ID)
		}
	}

	return nil
}
