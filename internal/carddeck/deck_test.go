package carddeck

import (
	"testing"

	"github.com/lox/blanks/internal/randutil"
)

func TestDeckDealsEveryCardExactlyOnce(t *testing.T) {
	t.Parallel()
	src := []Card{"a", "b", "c", "d", "e"}
	deck := NewDeck(src, randutil.New(1))

	seen := make(map[Card]int)
	for i := 0; i < len(src); i++ {
		card, err := deck.Draw()
		if err != nil {
			t.Fatalf("draw %d: %v", i, err)
		}
		seen[card]++
	}

	for _, card := range src {
		if seen[card] != 1 {
			t.Errorf("card %q drawn %d times", card, seen[card])
		}
	}
	if deck.Remaining() != 0 {
		t.Errorf("expected empty deck, %d remaining", deck.Remaining())
	}

	if _, err := deck.Draw(); err != ErrExhausted {
		t.Errorf("expected ErrExhausted on empty deck, got %v", err)
	}
}

func TestDeckShuffleIsDeterministicPerSeed(t *testing.T) {
	t.Parallel()
	src := []Card{"a", "b", "c", "d", "e", "f", "g", "h"}

	drawAll := func(seed int64) []Card {
		deck := NewDeck(src, randutil.New(seed))
		out := make([]Card, 0, len(src))
		for deck.Remaining() > 0 {
			card, err := deck.Draw()
			if err != nil {
				t.Fatal(err)
			}
			out = append(out, card)
		}
		return out
	}

	first := drawAll(42)
	second := drawAll(42)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("same seed produced different orders at %d: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestDeckDoesNotMutateSource(t *testing.T) {
	t.Parallel()
	src := []Card{"a", "b", "c"}
	deck := NewDeck(src, randutil.New(7))
	for deck.Remaining() > 0 {
		if _, err := deck.Draw(); err != nil {
			t.Fatal(err)
		}
	}
	if src[0] != "a" || src[1] != "b" || src[2] != "c" {
		t.Errorf("source pool mutated: %v", src)
	}
}
