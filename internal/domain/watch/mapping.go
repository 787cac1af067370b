package watch

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"evewatch/internal/errs"
)

// GroupMapping is the static character roster: group name to the characters
// owned by that group. Loaded fresh every cycle.
type GroupMapping map[string][]CharacterRef

// LoadGroupMapping reads and validates the mapping file. Any malformed entry
// is a configuration error that aborts the whole cycle.
func LoadGroupMapping(path string) (GroupMapping, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrapf(err, "read mapping file %q", path)
	}

	var mapping GroupMapping
	if err := json.Unmarshal(raw, &mapping); err != nil {
		return nil, errs.Wrapf(err, "parse mapping file %q", path)
	}
	if err := mapping.Validate(); err != nil {
		return nil, errs.Wrapf(err, "validate mapping file %q", path)
	}
	return mapping, nil
}

func (m GroupMapping) Validate() error {
	for group, characters := range m {
		if group == "" {
			return fmt.Errorf("group name must not be empty")
		}
		for i, character := range characters {
			if character.ID <= 0 {
				return fmt.Errorf("group %q: characters[%d].id is required", group, i)
			}
			if character.Name == "" {
				return fmt.Errorf("group %q: characters[%d].name is required", group, i)
			}
		}
	}
	return nil
}

// GroupNames returns the group names in deterministic order.
func (m GroupMapping) GroupNames() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
