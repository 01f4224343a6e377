package checkpoint

import (
	"errors"
	"strings"
)

const (
	pairSeparator = ", "
	keySeparator  = ": "
)

var errMissingBraces = errors.New("payload is not enclosed in braces")

// splitDictLiteral turns a textual dictionary such as
//
//	{'designer_slug': 'acme', 'last_scroll_count': 12}
//
// into a key to raw value mapping. Quotes are stripped from keys only; values are returned as sent.
// Values that contain ", " inside quotes are not supported.
func splitDictLiteral(raw string) (map[string]string, error) {
	s := strings.TrimSpace(raw)
	if len(s) < 2 || s[0] != '{' || s[len(s)-1] != '}' {
		return nil, errMissingBraces
	}
	body := s[1 : len(s)-1]

	fields := make(map[string]string)
	if strings.TrimSpace(body) == "" {
		return fields, nil
	}
	for _, pair := range strings.Split(body, pairSeparator) {
		key, value, ok := strings.Cut(pair, keySeparator)
		if !ok {
			continue
		}
		fields[stripQuotes(key)] = value
	}
	return fields, nil
}

func stripQuotes(s string) string {
	return strings.NewReplacer(`'`, "", `"`, "").Replace(strings.TrimSpace(s))
}
