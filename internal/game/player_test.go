package game

import "testing"

func TestPlayerPlayFromHand(t *testing.T) {
	t.Parallel()
	p := NewPlayer("p1", "Alice")
	p.Receive("a")
	p.Receive("b")
	p.Receive("c")

	card, err := p.PlayFromHand(1)
	if err != nil {
		t.Fatal(err)
	}
	if card != "b" {
		t.Errorf("played %q, want b", card)
	}
	if p.HandSize() != 2 {
		t.Errorf("hand size %d after play, want 2", p.HandSize())
	}

	if _, err := p.PlayFromHand(2); err != ErrInvalidIndex {
		t.Errorf("expected ErrInvalidIndex, got %v", err)
	}
	if _, err := p.PlayFromHand(-1); err != ErrInvalidIndex {
		t.Errorf("expected ErrInvalidIndex, got %v", err)
	}
}

func TestPlayerHandReturnsCopy(t *testing.T) {
	t.Parallel()
	p := NewPlayer("p1", "Alice")
	p.Receive("a")

	hand := p.Hand()
	hand[0] = "mutated"
	if got := p.Hand()[0]; got != "a" {
		t.Errorf("hand snapshot leaked internal state: %q", got)
	}
}

func TestPlayerScore(t *testing.T) {
	t.Parallel()
	p := NewPlayer("p1", "Alice")
	if p.Score() != 0 {
		t.Errorf("new player score %d", p.Score())
	}
	p.AwardWin("prompt _____")
	p.AwardWin("another _____")
	if p.Score() != 2 {
		t.Errorf("score %d, want 2", p.Score())
	}
}
