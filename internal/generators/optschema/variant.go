package optschema

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/simonhull/firebird-suite/quill/internal/synth"
	"github.com/simonhull/firebird-suite/quill/internal/types"
)

// ErrUnknownVariant is returned for a variant name with no preset.
var ErrUnknownVariant = errors.New("unknown schema variant")

// Variant selects which flavour of the schema set is generated.
type Variant struct {
	Name       string
	Target     synth.Target
	PatternKey string // field key holding string regexes, "" for none
	References types.ReferenceStrategy

	// EntityTypes lists the ambiguous types (MaterialPhoto,
	// MaterialCertification) that resolve to an embedded entity schema.
	// The others resolve to an enum of the same-named enum document.
	EntityTypes []string

	// Plan lists the basenames of the plan steps this variant emits.
	// Empty means every step. Files are still emitted in plan order, and
	// each listed entity must carry the filter flag.
	Plan []string
}

// Emits reports whether the plan step basename belongs to the variant.
func (v Variant) Emits(basename string) bool {
	if len(v.Plan) == 0 {
		return true
	}
	for _, name := range v.Plan {
		if name == basename {
			return true
		}
	}
	return false
}

// EmbedsEntity reports whether typeName resolves as an embedded entity.
func (v Variant) EmbedsEntity(typeName string) bool {
	for _, name := range v.EntityTypes {
		if name == typeName {
			return true
		}
	}
	return false
}

// Validate checks that the variant names its flags and a known strategy.
func (v Variant) Validate() error {
	if v.Target.Filter == "" || v.Target.Required == "" {
		return fmt.Errorf("variant %s: filter and required flags must be set", v.Name)
	}
	if _, err := types.ParseReferenceStrategy(string(v.References)); err != nil {
		return fmt.Errorf("variant %s: %w", v.Name, err)
	}
	for _, name := range v.EntityTypes {
		if _, ok := ambiguous[name]; !ok {
			return fmt.Errorf("variant %s: %s is not an entity-or-enum type (supported: %s)",
				v.Name, name, strings.Join(ambiguousNames(), ", "))
		}
	}
	for _, name := range v.Plan {
		if !inPlan(name) {
			return fmt.Errorf("variant %s: %s is not a schema of the plan", v.Name, name)
		}
	}
	return nil
}

var presets = map[string]Variant{
	"opt_db": {
		Name:        "opt_db",
		Target:      synth.Target{Required: "required_in_opt_db", Filter: "in_opt_db"},
		PatternKey:  "opt_db_regex",
		References:  types.ReferenceUnion,
		EntityTypes: []string{"MaterialPhoto"},
	},
	"opt": {
		Name:        "opt",
		Target:      synth.Target{Required: "required_in_opt", Filter: "in_opt"},
		References:  types.ReferenceDirect,
		EntityTypes: []string{"MaterialPhoto", "MaterialCertification"},
		Plan:        []string{"material", "brand", "material_color"},
	},
}

// Preset returns a copy of the built-in variant called name.
func Preset(name string) (Variant, error) {
	v, ok := presets[name]
	if !ok {
		return Variant{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownVariant, name, strings.Join(PresetNames(), ", "))
	}
	v.EntityTypes = append([]string(nil), v.EntityTypes...)
	v.Plan = append([]string(nil), v.Plan...)
	return v, nil
}

// PresetNames returns the built-in variant names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
