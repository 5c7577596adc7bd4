package provider

import (
	"encoding/json"
	"github.com/halvemaan/gumshoe/internal/errors"
	"log/slog"
	"regexp"
	"strings"
)

// Models without native structured output wrap their JSON in markdown
// fences or sprinkle it with comments and trailing commas. These patterns
// dig the payload out.
var (
	jsonBlockPattern     = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\{.*\\})\\s*```")
	jsonObjectPattern    = regexp.MustCompile(`(?s)\{[\s\S]*\}`)
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// ExtractJSON extracts a JSON object from a completion. It handles markdown
// code blocks, line comments and trailing commas. Returns "" when the
// completion holds no object at all.
func ExtractJSON(content string) string {
	raw := ""
	if matches := jsonBlockPattern.FindStringSubmatch(content); len(matches) > 1 {
		raw = matches[1]
	} else if match := jsonObjectPattern.FindString(content); match != "" {
		raw = match
	}
	if raw == "" {
		return ""
	}
	return cleanJSON(raw)
}

// DecodeJSON extracts the JSON object from a completion and unmarshals it
// into T.
func DecodeJSON[T any](content string) (T, error) {
	var v T
	payload := ExtractJSON(content)
	if payload == "" {
		return v, errors.New("no JSON object in completion",
			slog.String("content", truncate(content, 120)))
	}
	if err := json.Unmarshal([]byte(payload), &v); err != nil {
		return v, errors.Wrap(err, "unmarshal completion",
			slog.String("payload", truncate(payload, 120)))
	}
	return v, nil
}

// cleanJSON removes line comments and trailing commas, which language
// models commonly produce despite instructions.
func cleanJSON(raw string) string {
	lines := strings.Split(raw, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, stripLineComment(line))
	}
	result := strings.Join(cleaned, "\n")
	return trailingCommaPattern.ReplaceAllString(result, "$1")
}

// stripLineComment removes a // comment from a JSON line without touching
// string values such as URLs.
func stripLineComment(line string) string {
	if !strings.Contains(line, "//") {
		return line
	}
	inString := false
	escaped := false
	for i := 0; i < len(line); i++ {
		ch := line[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if !inString && ch == '/' && i+1 < len(line) && line[i+1] == '/' {
			return strings.TrimRight(line[:i], " \t")
		}
	}
	return line
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
