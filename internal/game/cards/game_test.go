package cards

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// seqSource deals deterministic values so shuffles are reproducible.
type seqSource struct {
	mu   sync.Mutex
	vals []int
	i    int
}

func (s *seqSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.vals) == 0 {
		return 0
	}
	v := s.vals[s.i%len(s.vals)] % n
	s.i++
	return v
}

func TestNewDeck(t *testing.T) {
	deck := NewDeck()
	require.Len(t, deck, 52)

	seen := make(map[Card]bool)
	for _, c := range deck {
		assert.False(t, seen[c], "duplicate card %v", c)
		seen[c] = true
	}
}

func TestCardString(t *testing.T) {
	assert.Equal(t, "ace of spades", Card{Suit: Spades, Rank: Ace}.String())
	assert.Equal(t, "10 of clubs", Card{Suit: Clubs, Rank: Ten}.String())
	assert.Equal(t, "queen of hearts", Card{Suit: Hearts, Rank: Queen}.String())
}

func TestNewGame_FullDeck(t *testing.T) {
	g := NewGame(&seqSource{})
	assert.Equal(t, 52, g.Remaining())
	assert.NotEmpty(t, g.ID())
}

func TestNewGame_UniqueIDs(t *testing.T) {
	src := &seqSource{}
	a := NewGame(src)
	b := NewGame(src)
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestNewGame_ShuffleDeterministic(t *testing.T) {
	a := NewGame(&seqSource{vals: []int{3, 1, 4, 1, 5}})
	b := NewGame(&seqSource{vals: []int{3, 1, 4, 1, 5}})

	cardsA, err := a.Deal("u", 52)
	require.NoError(t, err)
	cardsB, err := b.Deal("u", 52)
	require.NoError(t, err)
	assert.Equal(t, cardsA, cardsB)
}

func TestGame_Deal(t *testing.T) {
	g := NewGame(NewCryptoSource())

	hand, err := g.Deal("alice", 5)
	require.NoError(t, err)
	assert.Len(t, hand, 5)
	assert.Equal(t, 47, g.Remaining())
	assert.Equal(t, hand, g.Hand("alice"))

	more, err := g.Deal("alice", 2)
	require.NoError(t, err)
	assert.Len(t, g.Hand("alice"), 7)
	assert.Equal(t, append(hand, more...), g.Hand("alice"))
}

func TestGame_DealExhausted(t *testing.T) {
	g := NewGame(NewCryptoSource())

	_, err := g.Deal("alice", 50)
	require.NoError(t, err)

	_, err = g.Deal("bob", 3)
	assert.ErrorIs(t, err, ErrDeckExhausted)
	assert.Equal(t, 2, g.Remaining())
	assert.Empty(t, g.Hand("bob"))
}

func TestGame_JoinDealsStartingHand(t *testing.T) {
	g := NewGame(NewCryptoSource())

	require.NoError(t, g.Join("alice"))
	assert.Len(t, g.Hand("alice"), StartingHandSize)
	assert.Equal(t, 52-StartingHandSize, g.Remaining())

	require.NoError(t, g.Join("bob"))
	assert.Len(t, g.Hand("bob"), StartingHandSize)
	assert.Equal(t, 52-2*StartingHandSize, g.Remaining())
}

func TestGame_JoinSeatedUserUnchanged(t *testing.T) {
	g := NewGame(NewCryptoSource())

	require.NoError(t, g.Join("alice"))
	hand := g.Hand("alice")

	require.NoError(t, g.Join("alice"))
	assert.Equal(t, hand, g.Hand("alice"))
	assert.Equal(t, 52-StartingHandSize, g.Remaining())
}

func TestGame_JoinAfterEnd(t *testing.T) {
	g := NewGame(NewCryptoSource())
	g.End()
	assert.ErrorIs(t, g.Join("alice"), ErrGameOver)
	assert.Empty(t, g.Hand("alice"))
}

func TestGame_JoinExhaustsDeck(t *testing.T) {
	g := NewGame(NewCryptoSource())

	// 10 players consume all 50 dealable cards; the 11th cannot be seated.
	for i := 0; i < 10; i++ {
		require.NoError(t, g.Join(fmt.Sprintf("p%d", i)))
	}
	assert.Equal(t, 2, g.Remaining())

	err := g.Join("p10")
	assert.ErrorIs(t, err, ErrDeckExhausted)
	assert.Empty(t, g.Hand("p10"))
	assert.Equal(t, 2, g.Remaining())
}

func TestGame_EndStopsDealing(t *testing.T) {
	g := NewGame(NewCryptoSource())
	g.End()

	_, err := g.Deal("alice", 1)
	assert.ErrorIs(t, err, ErrGameOver)

	// End is idempotent.
	g.End()
	assert.Equal(t, true, g.Snapshot()["over"])
}

func TestGame_Snapshot(t *testing.T) {
	g := NewGame(NewCryptoSource())
	_, err := g.Deal("alice", 5)
	require.NoError(t, err)
	_, err = g.Deal("bob", 3)
	require.NoError(t, err)

	snap := g.Snapshot()
	assert.Equal(t, g.ID(), snap["game_id"])
	assert.Equal(t, 44, snap["deck_remaining"])
	assert.Equal(t, map[string]int{"alice": 5, "bob": 3}, snap["hands"])
	assert.Equal(t, false, snap["over"])

	// The snapshot is detached: later deals do not alter it.
	_, err = g.Deal("alice", 1)
	require.NoError(t, err)
	assert.Equal(t, 44, snap["deck_remaining"])
	assert.Equal(t, map[string]int{"alice": 5, "bob": 3}, snap["hands"])
}

func TestPropertyDealConservesCards(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := NewGame(NewCryptoSource())
		users := []string{"a", "b", "c"}

		dealt := 0
		numDeals := rapid.IntRange(1, 20).Draw(t, "num_deals")
		for i := 0; i < numDeals; i++ {
			user := rapid.SampledFrom(users).Draw(t, "user")
			n := rapid.IntRange(1, 10).Draw(t, "n")
			if _, err := g.Deal(user, n); err == nil {
				dealt += n
			}
		}

		// Every dealt card is in exactly one hand; none vanish.
		inHands := 0
		for _, user := range users {
			inHands += len(g.Hand(user))
		}
		if inHands != dealt {
			t.Fatalf("dealt %d cards but hands hold %d", dealt, inHands)
		}
		if g.Remaining()+dealt != 52 {
			t.Fatalf("remaining %d + dealt %d != 52", g.Remaining(), dealt)
		}
	})
}
