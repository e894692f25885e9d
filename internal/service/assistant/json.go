package assistant

import "strings"

// extractJSON pulls the JSON payload out of a model answer. It accepts a bare
// value, a ```json fenced block, or a value surrounded by prose; open is the
// expected first character ('{' or '[').
func extractJSON(raw string, open, closing byte) (string, bool) {
	s := strings.TrimSpace(raw)

	if start := strings.Index(s, "```"); start >= 0 {
		body := s[start+3:]
		if nl := strings.IndexByte(body, '\n'); nl >= 0 {
			body = body[nl+1:]
		}
		if end := strings.Index(body, "```"); end >= 0 {
			body = body[:end]
		}
		s = strings.TrimSpace(body)
	}

	first := strings.IndexByte(s, open)
	last := strings.LastIndexByte(s, closing)
	if first < 0 || last < first {
		return "", false
	}
	return s[first : last+1], true
}
