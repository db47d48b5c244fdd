// Package cards implements the hosted card-game activity: a standard
// 52-card deck dealt out to the participants of a room.
package cards

import "fmt"

// Suit identifies one of the four French suits.
type Suit int

// Suits in deck order.
const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

// String returns the lowercase suit name.
func (s Suit) String() string {
	switch s {
	case Clubs:
		return "clubs"
	case Diamonds:
		return "diamonds"
	case Hearts:
		return "hearts"
	case Spades:
		return "spades"
	default:
		return fmt.Sprintf("suit(%d)", int(s))
	}
}

// Rank identifies a card rank, ace low.
type Rank int

// Ranks in ascending order.
const (
	Ace Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

// String returns the lowercase rank name.
func (r Rank) String() string {
	switch r {
	case Ace:
		return "ace"
	case Jack:
		return "jack"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		if r >= Two && r <= Ten {
			return fmt.Sprintf("%d", int(r))
		}
		return fmt.Sprintf("rank(%d)", int(r))
	}
}

// Card is a single playing card.
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// String returns e.g. "ace of spades".
func (c Card) String() string {
	return fmt.Sprintf("%s of %s", c.Rank, c.Suit)
}

// NewDeck returns all 52 cards in canonical order (clubs ace..king,
// then diamonds, hearts, spades).
func NewDeck() []Card {
	deck := make([]Card, 0, 52)
	for s := Clubs; s <= Spades; s++ {
		for r := Ace; r <= King; r++ {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck
}
