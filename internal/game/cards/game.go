package cards

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/DavePearce/OnlineCards/internal/game"
)

// ErrGameOver is returned by mutating operations after End.
var ErrGameOver = errors.New("game is over")

// ErrDeckExhausted is returned when a deal asks for more cards than
// remain in the deck.
var ErrDeckExhausted = errors.New("deck exhausted")

// StartingHandSize is the number of cards dealt to each player when
// they join the game.
const StartingHandSize = 5

// Game is one card game instance. It implements game.Session and is
// safe for concurrent use.
type Game struct {
	mu    sync.Mutex
	id    string
	deck  []Card
	hands map[string][]Card
	over  bool
}

// NewGame creates a game with a freshly shuffled 52-card deck.
//
// Precondition: src must be non-nil.
// Postcondition: Returns a Game with a unique ID, a full deck, and no hands.
func NewGame(src Source) *Game {
	deck := NewDeck()
	// Fisher-Yates
	for i := len(deck) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	return &Game{
		id:    uuid.NewString(),
		deck:  deck,
		hands: make(map[string][]Card),
	}
}

// NewFactory returns a game.Factory producing independent games that
// share the given random source.
//
// Precondition: src must be non-nil.
func NewFactory(src Source) game.Factory {
	return func() game.Session {
		return NewGame(src)
	}
}

// ID returns the unique game identifier.
func (g *Game) ID() string {
	return g.id
}

// Join implements game.Joiner: a player entering the room is dealt
// their starting hand.
//
// Precondition: user must be non-empty.
// Postcondition: The user holds a hand of StartingHandSize cards, or
// the game is unchanged and an ErrGameOver / ErrDeckExhausted error is
// returned. A user who already holds a hand is left as-is.
func (g *Game) Join(user string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.over {
		return ErrGameOver
	}
	if _, ok := g.hands[user]; ok {
		return nil
	}
	if StartingHandSize > len(g.deck) {
		return fmt.Errorf("seating %q with %d cards remaining: %w", user, len(g.deck), ErrDeckExhausted)
	}

	dealt := g.deck[:StartingHandSize]
	g.deck = g.deck[StartingHandSize:]
	g.hands[user] = append([]Card(nil), dealt...)
	return nil
}

// Deal removes n cards from the top of the deck and appends them to the
// given user's hand, creating the hand if needed.
//
// Precondition: user must be non-empty; n must be > 0.
// Postcondition: Returns the dealt cards, or ErrGameOver / ErrDeckExhausted.
func (g *Game) Deal(user string, n int) ([]Card, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.over {
		return nil, ErrGameOver
	}
	if n > len(g.deck) {
		return nil, fmt.Errorf("dealing %d cards with %d remaining: %w", n, len(g.deck), ErrDeckExhausted)
	}

	dealt := g.deck[:n]
	g.deck = g.deck[n:]
	g.hands[user] = append(g.hands[user], dealt...)

	out := make([]Card, n)
	copy(out, dealt)
	return out, nil
}

// Hand returns a copy of the given user's current hand.
//
// Postcondition: Returns a detached slice; may be empty.
func (g *Game) Hand(user string) []Card {
	g.mu.Lock()
	defer g.mu.Unlock()

	hand := make([]Card, len(g.hands[user]))
	copy(hand, g.hands[user])
	return hand
}

// Remaining returns the number of undealt cards.
func (g *Game) Remaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.deck)
}

// Snapshot implements game.Session.
//
// Postcondition: The returned snapshot is detached from the game.
func (g *Game) Snapshot() game.Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	handSizes := make(map[string]int, len(g.hands))
	for user, hand := range g.hands {
		handSizes[user] = len(hand)
	}
	return game.Snapshot{
		"game_id":        g.id,
		"deck_remaining": len(g.deck),
		"hands":          handSizes,
		"over":           g.over,
	}
}

// End implements game.Session. Idempotent.
func (g *Game) End() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.over = true
}
