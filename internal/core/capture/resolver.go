package capture

import "github.com/example/fieldforms/internal/core/payload"

// fieldIndex resolves incoming field keys against a page's field specs.
//
// The same logical field may be labeled slightly differently in different
// record-type sections, so resolution follows a fixed fallback order:
// exact raw label, then canonicalized label, then element identifier, then
// capability-tagged lookup. The first match wins; unresolvable keys are
// skipped by the caller.
type fieldIndex struct {
	byLabel      map[string]*FieldSpec
	byCanonical  map[string]*FieldSpec
	byID         map[string]*FieldSpec
	byCapability map[string]*FieldSpec
}

// capabilitiesByLabel maps every known canonical label, across all page
// types, to its capability tags. It lets a label from one record-type section
// resolve to the equivalent field on another.
var capabilitiesByLabel = buildCapabilityAliases()

func buildCapabilityAliases() map[string][]string {
	aliases := make(map[string][]string)
	for _, pt := range payload.AllPageTypes() {
		for _, spec := range FieldsFor(pt) {
			if len(spec.Capabilities) == 0 {
				continue
			}
			key := payload.Key(spec.Label)
			aliases[key] = append(aliases[key], spec.Capabilities...)
		}
	}
	return aliases
}

func newFieldIndex(specs []FieldSpec) *fieldIndex {
	idx := &fieldIndex{
		byLabel:      make(map[string]*FieldSpec, len(specs)),
		byCanonical:  make(map[string]*FieldSpec, len(specs)),
		byID:         make(map[string]*FieldSpec, len(specs)),
		byCapability: make(map[string]*FieldSpec),
	}
	for i := range specs {
		spec := &specs[i]
		idx.byLabel[spec.Label] = spec
		idx.byCanonical[payload.Key(spec.Label)] = spec
		idx.byID[spec.ID] = spec
		for _, c := range spec.Capabilities {
			// First spec registered for a capability keeps it; later ones
			// stay reachable by label or id.
			if _, taken := idx.byCapability[c]; !taken {
				idx.byCapability[c] = spec
			}
		}
	}
	return idx
}

// resolve applies the fallback order to one incoming key.
func (idx *fieldIndex) resolve(key string) (*FieldSpec, bool) {
	if spec, ok := idx.byLabel[key]; ok {
		return spec, true
	}
	if spec, ok := idx.byCanonical[payload.Key(key)]; ok {
		return spec, true
	}
	if spec, ok := idx.byID[key]; ok {
		return spec, true
	}
	for _, c := range capabilitiesByLabel[payload.Key(key)] {
		if spec, ok := idx.byCapability[c]; ok {
			return spec, true
		}
	}
	return nil, false
}
