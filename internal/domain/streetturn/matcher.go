package streetturn

import (
	"github.com/drayage/backend/internal/domain/shared"
	"github.com/drayage/backend/internal/domain/shared/valueobject"
)

// MatcherConfig holds the pairing rules and per-match savings estimates
type MatcherConfig struct {
	// SameTerminalSavings is the estimated saving when import and export
	// share a terminal: one avoided empty return plus one avoided empty
	// pickup.
	SameTerminalSavings valueobject.Money
	// DifferentTerminalSavings is the estimated saving when terminals
	// differ: only the empty return is avoided.
	DifferentTerminalSavings valueobject.Money
	// RequireTypeMatch additionally demands identical container types.
	// Size must always match exactly.
	RequireTypeMatch bool
}

// Validate checks the configuration at load time
func (c MatcherConfig) Validate() error {
	if !c.SameTerminalSavings.IsPositive() {
		return shared.NewConfigurationError("same terminal savings must be positive")
	}
	if !c.DifferentTerminalSavings.IsPositive() {
		return shared.NewConfigurationError("different terminal savings must be positive")
	}
	if less, err := c.SameTerminalSavings.LessThan(c.DifferentTerminalSavings); err != nil {
		return shared.NewConfigurationError(err.Error())
	} else if less {
		return shared.NewConfigurationError("same terminal savings cannot be less than different terminal savings")
	}
	return nil
}

// FindMatches enumerates every valid (import, export) pairing. An import is
// eligible only when its customs status is RELEASED; a pairing requires an
// exact size match and, when configured, an exact type match.
//
// This is a plain O(imports x exports) enumeration, not an assignment
// solver: one import may appear in several candidates and the caller
// resolves one-to-one assignment. No output ordering is guaranteed.
func FindMatches(imports []ImportCandidate, exports []ExportCandidate, cfg MatcherConfig) []StreetTurnCandidate {
	var candidates []StreetTurnCandidate

	for _, imp := range imports {
		if !imp.CustomsStatus.IsReleased() {
			continue
		}
		for _, exp := range exports {
			if imp.Size != exp.Size {
				continue
			}
			if cfg.RequireTypeMatch && imp.Type != exp.Type {
				continue
			}

			matchType := MatchTypeDifferentTerminal
			savings := cfg.DifferentTerminalSavings
			if imp.Terminal == exp.Terminal {
				matchType = MatchTypeSameTerminal
				savings = cfg.SameTerminalSavings
			}

			candidates = append(candidates, StreetTurnCandidate{
				Import:           imp,
				Export:           exp,
				MatchType:        matchType,
				EstimatedSavings: savings,
			})
		}
	}

	return candidates
}
