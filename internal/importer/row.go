package importer

import (
	"fmt"
	"strconv"
	"strings"
)

// Row is one input record. Rows arrive as JSON objects or as parsed
// CSV/XLSX lines, so values may be strings or numbers.
type Row map[string]any

// stringField returns the trimmed string value of a key. Numeric values
// are formatted; anything else yields "".
func stringField(row Row, key string) string {
	switch v := row[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

// intField returns the integer value of a key, or fallback when the key
// is absent or unparsable.
func intField(row Row, key string, fallback int) int {
	s := stringField(row, key)
	if s == "" {
		return fallback
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return int(f)
	}
	return fallback
}

// parseList splits a comma-separated value into a deduplicated set of
// lower-cased, trimmed entries, preserving first-seen order.
func parseList(row Row, key string) []string {
	raw := stringField(row, key)
	if raw == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string
	for _, part := range strings.Split(raw, ",") {
		item := strings.ToLower(strings.TrimSpace(part))
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// Slugify derives a URL slug from a name: lower-cased, with runs of
// non-alphanumeric characters collapsed to single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
