package resolver

import (
	"context"
	"sort"
	"strings"

	"cardvault/feature/catalog/models"
)

// Index is an in-memory Source over a prefetched candidate set, keyed by
// folded name. The reconciliation engine builds one per run so resolving
// thousands of aggregates costs two bulk queries instead of a round-trip
// per tier per aggregate.
type Index struct {
	byName map[string][]models.Card
}

// NewIndex builds an index from prefetched candidates. Cards must carry
// their Promo flag; ordering within a name bucket is normalized to primary
// key so tie-breaks match the store-backed path.
func NewIndex(cards []models.Card) *Index {
	byName := make(map[string][]models.Card)
	for _, card := range cards {
		key := strings.ToLower(card.Name)
		byName[key] = append(byName[key], card)
	}
	for key := range byName {
		bucket := byName[key]
		sort.Slice(bucket, func(i, j int) bool { return bucket[i].ID < bucket[j].ID })
	}
	return &Index{byName: byName}
}

func (ix *Index) filter(promo bool, name string, keep func(models.Card) bool) []models.Card {
	var out []models.Card
	for _, card := range ix.byName[strings.ToLower(name)] {
		if card.Promo != promo {
			continue
		}
		if keep == nil || keep(card) {
			out = append(out, card)
		}
	}
	return out
}

// FindExact matches name, set and number case-sensitively.
func (ix *Index) FindExact(_ context.Context, promo bool, name, set, number string) ([]models.Card, error) {
	return ix.filter(promo, name, func(c models.Card) bool {
		return c.Name == name && c.SetCode == set && c.CollectorNumber == number
	}), nil
}

// FindFold matches name, set and number case-insensitively.
func (ix *Index) FindFold(_ context.Context, promo bool, name, set, number string) ([]models.Card, error) {
	return ix.filter(promo, name, func(c models.Card) bool {
		return strings.EqualFold(c.SetCode, set) && c.CollectorNumber == number
	}), nil
}

// FindNameSetFold matches name and set case-insensitively, ignoring the
// collector number.
func (ix *Index) FindNameSetFold(_ context.Context, promo bool, name, set string) ([]models.Card, error) {
	return ix.filter(promo, name, func(c models.Card) bool {
		return strings.EqualFold(c.SetCode, set)
	}), nil
}

// FindNameFold matches the name case-insensitively across every printing.
func (ix *Index) FindNameFold(_ context.Context, promo bool, name string) ([]models.Card, error) {
	return ix.filter(promo, name, nil), nil
}
