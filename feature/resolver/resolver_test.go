package resolver

import (
	"context"
	"testing"

	"cardvault/core/errs"
	"cardvault/feature/catalog/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func card(id, name, set, number, lang string, promo bool) models.Card {
	return models.Card{
		ID:              id,
		Name:            name,
		SetCode:         set,
		CollectorNumber: number,
		Lang:            lang,
		Promo:           promo,
	}
}

func TestResolve_TierOrdering(t *testing.T) {
	ctx := context.Background()

	exact := card("a1", "Lightning Bolt", "lea", "161", "en", false)
	folded := card("b1", "Lightning Bolt", "LEA", "161", "en", false)
	sameSet := card("c1", "Lightning Bolt", "lea", "999", "en", false)
	otherSet := card("d1", "Lightning Bolt", "m10", "146", "en", false)

	cases := []struct {
		name     string
		cards    []models.Card
		set      string
		number   string
		wantID   string
		wantTier Tier
	}{
		{"exact wins over everything", []models.Card{otherSet, sameSet, folded, exact}, "lea", "161", "a1", TierExact},
		{"fold when exact misses", []models.Card{otherSet, sameSet, folded}, "lea", "161", "b1", TierFold},
		{"set-only when number is wrong", []models.Card{otherSet, sameSet}, "lea", "161", "c1", TierNameSet},
		{"name-only when set is wrong", []models.Card{otherSet}, "lea", "161", "d1", TierName},
		{"name-only when set is absent", []models.Card{otherSet}, "", "", "d1", TierName},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			match, err := Resolve(ctx, NewIndex(tc.cards), "Lightning Bolt", tc.set, tc.number)
			require.NoError(t, err)
			assert.Equal(t, tc.wantID, match.Card.ID)
			assert.Equal(t, tc.wantTier, match.Tier)
		})
	}
}

func TestResolve_PromoCatalogIsSecondPass(t *testing.T) {
	ctx := context.Background()

	promoExact := card("p1", "Goblin Guide", "plg21", "1", "en", true)
	mainLoose := card("m1", "Goblin Guide", "zen", "145", "en", false)

	// A loose main-catalog hit still beats an exact promo hit: the whole
	// ladder runs against the main catalog first.
	match, err := Resolve(ctx, NewIndex([]models.Card{promoExact, mainLoose}), "Goblin Guide", "plg21", "1")
	require.NoError(t, err)
	assert.Equal(t, "m1", match.Card.ID)
	assert.Equal(t, TierName, match.Tier)
	assert.False(t, match.Card.Promo)

	// With no main-catalog record at all, the promo catalog resolves.
	match, err = Resolve(ctx, NewIndex([]models.Card{promoExact}), "Goblin Guide", "plg21", "1")
	require.NoError(t, err)
	assert.Equal(t, "p1", match.Card.ID)
	assert.Equal(t, TierExact, match.Tier)
	assert.True(t, match.Card.Promo)
}

func TestResolve_TieBreaks(t *testing.T) {
	ctx := context.Background()

	t.Run("prefers english over other languages", func(t *testing.T) {
		ix := NewIndex([]models.Card{
			card("a1", "Counterspell", "7ed", "67", "ja", false),
			card("b2", "Counterspell", "7ed", "67", "en", false),
		})
		match, err := Resolve(ctx, ix, "Counterspell", "7ed", "67")
		require.NoError(t, err)
		assert.Equal(t, "b2", match.Card.ID)
	})

	t.Run("untagged language counts as english", func(t *testing.T) {
		ix := NewIndex([]models.Card{
			card("a1", "Counterspell", "7ed", "67", "ja", false),
			card("b2", "Counterspell", "7ed", "67", "", false),
		})
		match, err := Resolve(ctx, ix, "Counterspell", "7ed", "67")
		require.NoError(t, err)
		assert.Equal(t, "b2", match.Card.ID)
	})

	t.Run("equal candidates break on primary key", func(t *testing.T) {
		ix := NewIndex([]models.Card{
			card("z9", "Counterspell", "7ed", "67", "en", false),
			card("a1", "Counterspell", "7ed", "67", "en", false),
		})
		match, err := Resolve(ctx, ix, "Counterspell", "7ed", "67")
		require.NoError(t, err)
		assert.Equal(t, "a1", match.Card.ID)
	})
}

func TestResolve_RejectsPlaceholderNames(t *testing.T) {
	ctx := context.Background()
	ix := NewIndex(nil)

	for _, name := range []string{"", "   ", "unknown", "Unknown", "N/A", "-", "unset"} {
		_, err := Resolve(ctx, ix, name, "lea", "161")
		assert.ErrorIs(t, err, errs.ErrInvalidInput, "name %q", name)
	}
}

func TestResolve_NotFound(t *testing.T) {
	ix := NewIndex([]models.Card{card("a1", "Lightning Bolt", "lea", "161", "en", false)})

	_, err := Resolve(context.Background(), ix, "Black Lotus", "lea", "232")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestIndex_NormalizesBucketOrder(t *testing.T) {
	ix := NewIndex([]models.Card{
		card("c3", "Shock", "m20", "160", "en", false),
		card("a1", "Shock", "m20", "160", "en", false),
		card("b2", "Shock", "m20", "160", "en", false),
	})

	cards, err := ix.FindNameFold(context.Background(), false, "shock")
	require.NoError(t, err)
	require.Len(t, cards, 3)
	assert.Equal(t, "a1", cards[0].ID)
	assert.Equal(t, "b2", cards[1].ID)
	assert.Equal(t, "c3", cards[2].ID)
}
