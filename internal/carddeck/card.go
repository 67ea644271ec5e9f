package carddeck

// Card is an immutable card text. Prompt cards carry a fill-in-the-blank
// marker; response cards are plain text. Cards have no identity beyond their
// text, but a single dealt instance only ever lives in one place at a time.
type Card string

const (
	// blankMarker is the placeholder character in raw prompt text.
	blankMarker = "_"

	// displayBlank is what the marker is widened to so the blank reads as a
	// blank in chat output.
	displayBlank = "_____"
)
