package resolver

import (
	"context"
	"strings"

	"cardvault/core/errs"
	"cardvault/feature/catalog/models"
)

// Tier identifies which fallback strategy produced a match.
type Tier string

const (
	// TierExact is a case-sensitive match on name, set and number.
	TierExact Tier = "exact"
	// TierFold is a case-insensitive match on name, set and number.
	TierFold Tier = "fold"
	// TierNameSet ignores the collector number (handles reformatted
	// numbering between ledger sources and the catalog).
	TierNameSet Tier = "name_set"
	// TierName matches the name across every printing.
	TierName Tier = "name"
)

// Match is the chosen catalog record for a lookup, plus the tier that
// produced it. Card.Promo tells which catalog it came from.
type Match struct {
	Card models.Card
	Tier Tier
}

// Source is anywhere candidates can come from: the store's indexed repo or
// the reconciliation engine's prefetched in-memory index.
type Source interface {
	FindExact(ctx context.Context, promo bool, name, set, number string) ([]models.Card, error)
	FindFold(ctx context.Context, promo bool, name, set, number string) ([]models.Card, error)
	FindNameSetFold(ctx context.Context, promo bool, name, set string) ([]models.Card, error)
	FindNameFold(ctx context.Context, promo bool, name string) ([]models.Card, error)
}

// placeholder values some ledger sources emit for "no name"; they must be
// rejected before any lookup rather than silently matching nothing useful.
var placeholders = map[string]struct{}{
	"unknown": {},
	"unset":   {},
	"n/a":     {},
	"-":       {},
}

// ValidName reports whether the name is usable for resolution.
func ValidName(name string) bool {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return false
	}
	_, bad := placeholders[strings.ToLower(trimmed)]
	return !bad
}

// Resolve finds the best catalog record for a (name, set, number) triple
// using the ranked fallback policy: exact, case-insensitive, set-only,
// name-only — first against the main catalog, then the whole ladder again
// against the promotional/token catalog. The first non-empty tier wins.
//
// Within a tier, English (or untagged) records are preferred; remaining
// ties break on primary key, never on arbitrary row order. A miss across
// every tier returns ErrNotFound.
func Resolve(ctx context.Context, src Source, name, set, number string) (*Match, error) {
	if !ValidName(name) {
		return nil, errs.ErrInvalidInput
	}

	for _, promo := range []bool{false, true} {
		match, err := resolveCatalog(ctx, src, promo, name, set, number)
		if err != nil {
			return nil, err
		}
		if match != nil {
			return match, nil
		}
	}
	return nil, errs.ErrNotFound
}

func resolveCatalog(ctx context.Context, src Source, promo bool, name, set, number string) (*Match, error) {
	type tier struct {
		label Tier
		find  func() ([]models.Card, error)
	}

	var tiers []tier
	if set != "" && number != "" {
		tiers = append(tiers,
			tier{TierExact, func() ([]models.Card, error) {
				return src.FindExact(ctx, promo, name, set, number)
			}},
			tier{TierFold, func() ([]models.Card, error) {
				return src.FindFold(ctx, promo, name, set, number)
			}},
		)
	}
	if set != "" {
		tiers = append(tiers, tier{TierNameSet, func() ([]models.Card, error) {
			return src.FindNameSetFold(ctx, promo, name, set)
		}})
	}
	tiers = append(tiers, tier{TierName, func() ([]models.Card, error) {
		return src.FindNameFold(ctx, promo, name)
	}})

	for _, t := range tiers {
		cards, err := t.find()
		if err != nil {
			return nil, err
		}
		if len(cards) == 0 {
			continue
		}
		return &Match{Card: pick(cards), Tier: t.label}, nil
	}
	return nil, nil
}

// pick applies the tie-break inside a tier: prefer English or untagged
// language, then the lowest primary key. Candidates arrive ordered by id.
func pick(cards []models.Card) models.Card {
	for _, card := range cards {
		if card.Lang == "en" || card.Lang == "" {
			return card
		}
	}
	return cards[0]
}
