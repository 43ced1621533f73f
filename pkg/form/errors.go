package form

import (
	"errors"
	"strconv"
	"strings"

	"github.com/goliatone/go-formstate/pkg/model"
)

var (
	// ErrNoSubmit is returned by Submit when no SubmitFunc was configured.
	ErrNoSubmit = errors.New("form: no submit handler")
	// ErrSubmitInFlight is returned when Submit is called while a previous
	// submission is still running.
	ErrSubmitInFlight = errors.New("form: submit in flight")
	// ErrInvalidPath is returned for malformed change-event names.
	ErrInvalidPath = errors.New("form: invalid field path")
)

// ErrorMapping splits user errors into field-level messages keyed by dotted
// path and form-level messages.
type ErrorMapping struct {
	Fields map[string][]string `json:"fields,omitempty"`
	Form   []string            `json:"form,omitempty"`
}

// Empty reports whether the mapping holds no messages.
func (m ErrorMapping) Empty() bool {
	return len(m.Fields) == 0 && len(m.Form) == 0
}

// wrapperSegments are envelope keys mutations put in front of field names.
var wrapperSegments = map[string]struct{}{
	"input":   {},
	"body":    {},
	"data":    {},
	"payload": {},
}

// MapUserErrors attaches each user error to the longest known field path
// its Field resolves to. JSON pointers ("/input/seo/title"), bracket
// indexes ("attributes[0]") and envelope prefixes are tolerated. Errors
// without a matching field become form-level so no message is lost.
func MapUserErrors(known map[string]struct{}, errs []model.UserError) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	var formLevel []string
	for _, userErr := range errs {
		message := strings.TrimSpace(userErr.Message)
		if message == "" {
			continue
		}
		path := resolvePath(userErr.Field, known)
		if path == "" {
			formLevel = append(formLevel, message)
			continue
		}
		mapping.Fields[path] = appendUnique(mapping.Fields[path], message)
	}
	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = MergeMessages(nil, formLevel...)
	return mapping
}

// MergeMessages appends extras to existing, trimming whitespace and
// dropping blanks and duplicates while keeping first-seen order.
func MergeMessages(existing []string, extras ...string) []string {
	var out []string
	for _, message := range append(append([]string(nil), existing...), extras...) {
		out = appendUnique(out, strings.TrimSpace(message))
	}
	return out
}

func appendUnique(list []string, message string) []string {
	if message == "" {
		return list
	}
	for _, existing := range list {
		if existing == message {
			return list
		}
	}
	return append(list, message)
}

func resolvePath(raw string, known map[string]struct{}) string {
	segments := splitPath(raw)
	if len(segments) == 0 {
		return ""
	}
	best := ""
	for _, candidate := range [][]string{
		segments,
		dropWrappers(segments),
		dropIndexes(segments),
		dropIndexes(dropWrappers(segments)),
	} {
		match := longestKnownPrefix(candidate, known)
		if match == "" {
			continue
		}
		if best == "" || strings.Count(match, ".") > strings.Count(best, ".") {
			best = match
		}
	}
	return best
}

func splitPath(raw string) []string {
	clean := strings.TrimSpace(raw)
	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)
	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/' || r == '#' || r == '$'
	})
	out := parts[:0]
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		out = append(out, part)
	}
	return out
}

func dropWrappers(segments []string) []string {
	for len(segments) > 1 {
		if _, ok := wrapperSegments[strings.ToLower(segments[0])]; !ok {
			break
		}
		segments = segments[1:]
	}
	return segments
}

func dropIndexes(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		out = append(out, segment)
	}
	return out
}

func longestKnownPrefix(segments []string, known map[string]struct{}) string {
	for end := len(segments); end > 0; end-- {
		candidate := strings.Join(segments[:end], ".")
		if _, ok := known[candidate]; ok {
			return candidate
		}
	}
	return ""
}
