package command

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Result is what the interpreter extracted from one model response.
// Exactly one of Commands and Raw is set: Raw carries a bare data array
// (e.g. search results) whose elements are not commands.
type Result struct {
	Commands []Command
	Raw      json.RawMessage
}

// ParseError reports model output that could not be decoded as a command
// list. The offending text is kept for logging and the user-visible reply.
type ParseError struct {
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse extracts a normalized command list from raw model text.
//
// The model is told to answer with JSON only, but in practice wraps it in
// markdown fences or surrounds it with prose. Recovery order: strip fences,
// slice from the first '{' to the last '}' unless the text already starts
// with '[', wrap a single object into a one-element array, then decode.
func Parse(raw string) (*Result, error) {
	text := strings.TrimSpace(raw)
	text = stripFences(text)

	if !strings.HasPrefix(text, "[") {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start >= 0 && end > start {
			text = text[start : end+1]
		}
	}
	if strings.HasPrefix(text, "{") {
		text = "[" + text + "]"
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(text), &elems); err != nil {
		return nil, &ParseError{Text: raw, Err: err}
	}
	if len(elems) == 0 {
		return &Result{}, nil
	}

	// A list whose first element has no "action" is a raw data payload
	// (search results etc.), passed through rather than dispatched.
	var probe struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(elems[0], &probe); err != nil || probe.Action == "" {
		return &Result{Raw: json.RawMessage(text)}, nil
	}

	cmds := make([]Command, 0, len(elems))
	for _, e := range elems {
		var c Command
		if err := json.Unmarshal(e, &c); err != nil {
			return nil, &ParseError{Text: raw, Err: err}
		}
		cmds = append(cmds, c)
	}
	return &Result{Commands: cmds}, nil
}

func stripFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
