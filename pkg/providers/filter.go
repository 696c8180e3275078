package providers

// FilterMode selects how a Filter interprets its model set.
type FilterMode string

const (
	// FilterModeWhitelist keeps only models whose id is in the set.
	FilterModeWhitelist FilterMode = "whitelist"

	// FilterModeBlacklist drops models whose id is in the set.
	FilterModeBlacklist FilterMode = "blacklist"
)

// Filter restricts which upstream models are registered into the alias table.
// It is attached to a provider's configuration and applied exactly once, to
// the raw upstream model list, before alias registration. Filters are never
// mutated at runtime.
type Filter struct {
	// Mode selects whitelist or blacklist semantics.
	Mode FilterMode

	// Models is the configured set of model ids.
	Models []string
}

// Apply returns the models that pass the filter, preserving the order of the
// upstream list. A nil filter is the identity: all models pass.
func (f *Filter) Apply(models []ModelInfo) []ModelInfo {
	if f == nil {
		return models
	}

	set := make(map[string]struct{}, len(f.Models))
	for _, id := range f.Models {
		set[id] = struct{}{}
	}

	filtered := make([]ModelInfo, 0, len(models))
	for _, m := range models {
		_, listed := set[m.ID]

		switch f.Mode {
		case FilterModeWhitelist:
			if listed {
				filtered = append(filtered, m)
			}
		case FilterModeBlacklist:
			if !listed {
				filtered = append(filtered, m)
			}
		default:
			// Unknown mode is rejected at config validation; treat as identity.
			filtered = append(filtered, m)
		}
	}

	return filtered
}
