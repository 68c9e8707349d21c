package bramble

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// ElementDef is one catalog entry: an element and how many anchors it
// offers for each element that may follow it.
type ElementDef struct {
	Name       string         `yaml:"name"`
	Connectors map[string]int `yaml:"connectors"`
}

// ConnectorKeys returns the keys of the elements that may follow this one,
// sorted so random picks are reproducible for a given seed.
func (d ElementDef) ConnectorKeys() []string {
	keys := make([]string, 0, len(d.Connectors))
	for k := range d.Connectors {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// CreatureType maps element keys to their catalog entries.
type CreatureType map[string]ElementDef

// Catalog maps creature types to their elements. It is static and read-only.
type Catalog map[string]CreatureType

// LoadCatalog decodes a YAML catalog and validates it.
func LoadCatalog(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that every connector count is positive and every
// connector names an element of the same creature type.
func (c Catalog) Validate() error {
	for typ, elems := range c {
		for key, def := range elems {
			for next, count := range def.Connectors {
				if count <= 0 {
					return fmt.Errorf("%w: %s/%s -> %s has connector count %d", ErrInvalidCatalog, typ, key, next, count)
				}
				if _, ok := elems[next]; !ok {
					return fmt.Errorf("%w: %s/%s -> %s: %w", ErrInvalidCatalog, typ, key, next, ErrUnknownElement)
				}
			}
		}
	}
	return nil
}

// Element returns the catalog entry for key within creatureType.
func (c Catalog) Element(creatureType, key string) (ElementDef, error) {
	elems, ok := c[creatureType]
	if !ok {
		return ElementDef{}, fmt.Errorf("%w: %q", ErrUnknownCreatureType, creatureType)
	}
	def, ok := elems[key]
	if !ok {
		return ElementDef{}, fmt.Errorf("%w: %s/%s", ErrUnknownElement, creatureType, key)
	}
	return def, nil
}

// ElementKeys returns the sorted element keys of creatureType.
func (c Catalog) ElementKeys(creatureType string) ([]string, error) {
	elems, ok := c[creatureType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCreatureType, creatureType)
	}
	keys := make([]string, 0, len(elems))
	for k := range elems {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

// ElementAt returns the element key at index within the sorted keys of creatureType.
func (c Catalog) ElementAt(creatureType string, index int) (string, error) {
	keys, err := c.ElementKeys(creatureType)
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(keys) {
		return "", fmt.Errorf("%w: %s element index %d of %d", ErrUnknownElement, creatureType, index, len(keys))
	}
	return keys[index], nil
}
