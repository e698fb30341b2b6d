package service

import (
	"strings"

	"surveybuddy/internal/model"
)

// RenderContent maps accumulated assistant text to a structured content tree.
// It is called anew after every stream delta, so it is a pure function of the
// whole text: no state is held between calls and partial input (for example an
// unmatched ** whose closing marker has not arrived yet) renders as literal
// text instead of failing.
func RenderContent(text string) []model.Block {
	var blocks []model.Block
	var items [][]model.Span

	flushList := func() {
		if len(items) > 0 {
			blocks = append(blocks, model.Block{Kind: model.BlockList, Items: items})
			items = nil
		}
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			// Blank lines separate blocks but never become nodes
			flushList()
			continue
		}

		if item, ok := bulletText(line); ok {
			items = append(items, parseSpans(item))
			continue
		}
		flushList()

		switch {
		case strings.HasPrefix(line, "### "):
			blocks = append(blocks, model.Block{Kind: model.BlockSubheading, Spans: parseSpans(line[4:])})
		case strings.HasPrefix(line, "## "):
			blocks = append(blocks, model.Block{Kind: model.BlockHeading, Spans: parseSpans(line[3:])})
		case strings.HasPrefix(line, "# "):
			// H1 maps to the same node kind as H2
			blocks = append(blocks, model.Block{Kind: model.BlockHeading, Spans: parseSpans(line[2:])})
		default:
			blocks = append(blocks, model.Block{Kind: model.BlockParagraph, Spans: parseSpans(line)})
		}
	}
	flushList()

	return blocks
}

// bulletText returns the item text if the line is a bullet (-, * or • followed
// by whitespace).
func bulletText(line string) (string, bool) {
	for _, marker := range []string{"- ", "-\t", "* ", "*\t", "• ", "•\t"} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(line[len(marker):]), true
		}
	}
	return "", false
}

// parseSpans splits a line into inline spans, turning each matched **...**
// pair into a strong span. An unmatched ** stays in the literal text.
func parseSpans(text string) []model.Span {
	var spans []model.Span
	rest := text

	for {
		open := strings.Index(rest, "**")
		if open == -1 {
			break
		}
		close := strings.Index(rest[open+2:], "**")
		if close == -1 {
			break
		}
		if open > 0 {
			spans = append(spans, model.Span{Text: rest[:open]})
		}
		if inner := rest[open+2 : open+2+close]; inner != "" {
			spans = append(spans, model.Span{Text: inner, Strong: true})
		}
		rest = rest[open+2+close+2:]
	}

	if rest != "" || len(spans) == 0 {
		spans = append(spans, model.Span{Text: rest})
	}
	return spans
}
