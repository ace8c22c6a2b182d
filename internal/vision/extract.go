package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"crosspad/internal/puzzle"
)

const extractPrompt = `You are looking at a photo of a numbered crossword puzzle together
with its across and down clue lists.

Extract the complete puzzle in the following JSON format:
{
  "title": "<puzzle title, empty string if none>",
  "size": <number of squares per side>,
  "clues": [
    {"number": 1, "text": "<clue text>", "answer": "<ANSWER>", "row": 0, "col": 0, "direction": "across"},
    ...
  ]
}

Rules:
- "row" and "col" are the zero-based position of the answer's first letter.
  Row 0 is the top row, col 0 is the leftmost column.
- "direction" is "across" for words read left to right, "down" for words
  read top to bottom.
- "answer" is the word in upper case, one letter per square. If the photo
  shows a filled-in solution, read the answers from it; otherwise solve the
  clues. Crossing words must agree on their shared letters.
- Include every clue from both lists.
- Respond ONLY with the JSON, no commentary and no markdown.`

// wireGrid is the JSON shape the model is asked to produce.
type wireGrid struct {
	Title string     `json:"title"`
	Size  int        `json:"size"`
	Clues []wireClue `json:"clues"`
}

type wireClue struct {
	Number    int    `json:"number"`
	Text      string `json:"text"`
	Answer    string `json:"answer"`
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	Direction string `json:"direction"`
}

// Extract sends a photo to Gemini and returns the puzzle it describes,
// already validated.
func (c *Client) Extract(ctx context.Context, imageData []byte, mimeType string) (*puzzle.Puzzle, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{{
			Role: "user",
			Parts: []*genai.Part{
				{Text: extractPrompt},
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: imageData}},
			},
		}},
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(float32(0.1)),
			TopP:             genai.Ptr(float32(1)),
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("empty gemini response")
	}

	var w wireGrid
	if err := json.Unmarshal([]byte(text), &w); err != nil {
		return nil, fmt.Errorf("parse puzzle JSON: %w\nraw response: %s", err, text)
	}
	return buildPuzzle(w)
}

// buildPuzzle converts the model's answer into a Puzzle. The playable grid
// is the union of the clue footprints, numbered at each word's first
// square, so the model never has to describe blocked squares explicitly.
func buildPuzzle(w wireGrid) (*puzzle.Puzzle, error) {
	if w.Size <= 0 {
		return nil, fmt.Errorf("invalid puzzle size %d", w.Size)
	}
	if len(w.Clues) == 0 {
		return nil, fmt.Errorf("no clues extracted")
	}

	p := &puzzle.Puzzle{
		Title: strings.TrimSpace(w.Title),
		Size:  w.Size,
		Grid:  puzzle.Grid{},
	}
	for _, wc := range w.Clues {
		var dir puzzle.Orientation
		switch strings.ToLower(strings.TrimSpace(wc.Direction)) {
		case "across":
			dir = puzzle.Across
		case "down":
			dir = puzzle.Down
		default:
			return nil, fmt.Errorf("clue %d: unknown direction %q", wc.Number, wc.Direction)
		}

		c := puzzle.Clue{
			Number: wc.Number,
			Text:   strings.TrimSpace(wc.Text),
			Answer: strings.ToUpper(strings.TrimSpace(wc.Answer)),
			Row:    wc.Row,
			Col:    wc.Col,
			Dir:    dir,
		}
		for _, sq := range c.Squares() {
			if _, ok := p.Grid[sq]; !ok {
				p.Grid[sq] = puzzle.Cell{}
			}
		}
		start := p.Grid[c.Start()]
		if start.Number != 0 && start.Number != c.Number {
			return nil, fmt.Errorf("square %s claimed by numbers %d and %d", c.Start().Key(), start.Number, c.Number)
		}
		start.Number = c.Number
		p.Grid[c.Start()] = start
		p.Clues = append(p.Clues, c)
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("extracted puzzle: %w", err)
	}
	return p, nil
}
