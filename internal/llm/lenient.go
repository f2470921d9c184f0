package llm

import (
	"errors"
	"regexp"
	"strings"
)

var (
	reFenceOpen  = regexp.MustCompile("^```(?:json|JSON)?\\s*")
	reFenceClose = regexp.MustCompile("\\s*```$")
)

// ErrNoJSONObject is returned when model content carries no JSON object.
var ErrNoJSONObject = errors.New("no json object in model content")

// ExtractJSONObject strips markdown fences and any prose around the outermost
// JSON object of a model reply.
func ExtractJSONObject(content string) ([]byte, error) {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = reFenceOpen.ReplaceAllString(s, "")
		s = reFenceClose.ReplaceAllString(s, "")
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return nil, ErrNoJSONObject
	}
	return []byte(s[start : end+1]), nil
}
