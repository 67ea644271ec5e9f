package carddeck

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Pool is the fixed card inventory sessions build their decks from. It is
// loaded once at process start and never mutated afterwards.
type Pool struct {
	Prompts   []Card
	Responses []Card

	// FilteredPrompts counts prompt texts dropped at load time for not
	// containing exactly one blank marker. Multi-blank "pick two" prompts
	// are not supported.
	FilteredPrompts int
}

// NewPool builds a pool from raw card texts, applying the prompt filter and
// widening the blank marker for display.
func NewPool(prompts, responses []string) (*Pool, error) {
	pool := &Pool{
		Prompts:   make([]Card, 0, len(prompts)),
		Responses: make([]Card, 0, len(responses)),
	}

	for _, text := range prompts {
		if strings.Count(text, blankMarker) != 1 {
			pool.FilteredPrompts++
			continue
		}
		pool.Prompts = append(pool.Prompts, Card(strings.Replace(text, blankMarker, displayBlank, 1)))
	}
	for _, text := range responses {
		pool.Responses = append(pool.Responses, Card(text))
	}

	if len(pool.Prompts) == 0 {
		return nil, fmt.Errorf("no usable prompt cards (%d filtered)", pool.FilteredPrompts)
	}
	if len(pool.Responses) == 0 {
		return nil, fmt.Errorf("no response cards")
	}
	return pool, nil
}

// LoadPool reads the prompt and response card files, each a JSON array of
// card texts.
func LoadPool(promptsPath, responsesPath string) (*Pool, error) {
	prompts, err := loadCardFile(promptsPath)
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	responses, err := loadCardFile(responsesPath)
	if err != nil {
		return nil, fmt.Errorf("load responses: %w", err)
	}
	return NewPool(prompts, responses)
}

func loadCardFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cards []string
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cards, nil
}
