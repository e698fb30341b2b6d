package service

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"surveybuddy/internal/model"
)

// tagSpec describes one directive tag kind. Object tags carry a JSON payload
// that is walked brace by brace instead of pattern-matched, so a ] inside a
// quoted string value does not end the payload early.
type tagSpec struct {
	name   string
	kind   model.CommandKind
	object bool
}

// Listed in application order: goal first, then adds, then deletes, then
// edits. Deletes and edits address 1-based positions that must stay stable
// relative to the pre-command survey, while adds only append.
var directiveTags = []tagSpec{
	{"STUDY_GOAL", model.CommandStudyGoal, false},
	{"ADD_QUESTION", model.CommandAddQuestion, true},
	{"DELETE_QUESTION", model.CommandDeleteQuestion, false},
	{"EDIT_QUESTION", model.CommandEditQuestion, true},
}

var blankLineRuns = regexp.MustCompile(`\n{3,}`)

// ExtractDirectives scans one complete assistant reply for embedded directive
// tags. It returns the reply with every matched tag removed plus the commands
// that parsed and validated, ordered for application. A span that matches a
// tag is always stripped, parse success or not, so malformed directives never
// leak into the visible text. Only run this on a finished reply: partial text
// can truncate a tag mid-payload.
func ExtractDirectives(reply string) (string, []model.Command) {
	grouped := make(map[model.CommandKind][]model.Command)
	var clean strings.Builder

	i := 0
	for i < len(reply) {
		tag, start := nextTag(reply, i)
		if tag == nil {
			clean.WriteString(reply[i:])
			break
		}

		end, payload, ok := scanPayload(reply, start+len(tag.name)+2, tag.object)
		if !ok {
			// Unterminated tag: keep the text and move past the opening bracket
			clean.WriteString(reply[i : start+1])
			i = start + 1
			continue
		}

		clean.WriteString(reply[i:start])
		if cmd, parsed := parseCommand(tag, payload); parsed {
			grouped[tag.kind] = append(grouped[tag.kind], cmd)
		}
		i = end
	}

	var commands []model.Command
	for _, tag := range directiveTags {
		commands = append(commands, grouped[tag.kind]...)
	}
	return collapseWhitespace(clean.String()), commands
}

// nextTag finds the earliest directive marker at or after from.
func nextTag(text string, from int) (*tagSpec, int) {
	best := -1
	var bestTag *tagSpec
	for idx := range directiveTags {
		tag := &directiveTags[idx]
		if p := strings.Index(text[from:], "["+tag.name+":"); p != -1 {
			if best == -1 || from+p < best {
				best = from + p
				bestTag = tag
			}
		}
	}
	return bestTag, best
}

// scanPayload returns the payload between the tag's colon and its closing
// bracket, plus the index just past that bracket. Object payloads are walked
// as JSON; a malformed object falls back to the scalar rule (everything up to
// the first closing bracket) so the span is still stripped.
func scanPayload(text string, from int, object bool) (end int, payload string, ok bool) {
	if object {
		j := from
		for j < len(text) && isSpace(text[j]) {
			j++
		}
		if j < len(text) && text[j] == '{' {
			if objEnd, found := scanObject(text, j); found {
				k := objEnd + 1
				for k < len(text) && isSpace(text[k]) {
					k++
				}
				if k < len(text) && text[k] == ']' {
					return k + 1, text[j : objEnd+1], true
				}
			}
		}
	}

	rel := strings.IndexByte(text[from:], ']')
	if rel == -1 {
		return 0, "", false
	}
	return from + rel + 1, text[from : from+rel], true
}

// scanObject walks a JSON object from its opening brace, tracking brace depth
// and quoted strings, and returns the index of the matching closing brace.
func scanObject(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// parseCommand validates one matched payload. A false return drops the
// command; the span has already been stripped either way.
func parseCommand(tag *tagSpec, payload string) (model.Command, bool) {
	switch tag.kind {
	case model.CommandStudyGoal:
		return model.Command{Kind: tag.kind, Goal: strings.TrimSpace(payload)}, true

	case model.CommandDeleteQuestion:
		index, err := strconv.Atoi(strings.TrimSpace(payload))
		if err != nil || index < 1 {
			return model.Command{}, false
		}
		return model.Command{Kind: tag.kind, Index: index}, true

	case model.CommandAddQuestion:
		var spec model.QuestionSpec
		if err := json.Unmarshal([]byte(payload), &spec); err != nil {
			return model.Command{}, false
		}
		return model.Command{Kind: tag.kind, Spec: &spec}, true

	case model.CommandEditQuestion:
		var spec model.QuestionSpec
		if err := json.Unmarshal([]byte(payload), &spec); err != nil {
			return model.Command{}, false
		}
		// An edit with no target is meaningless
		if spec.Index < 1 {
			return model.Command{}, false
		}
		return model.Command{Kind: tag.kind, Index: spec.Index, Spec: &spec}, true
	}
	return model.Command{}, false
}

// collapseWhitespace trims the runs of blank space left behind by stripped
// tags.
func collapseWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	out := blankLineRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(out)
}
