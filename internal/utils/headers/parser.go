package headers

import (
	"fmt"
	"strings"
)

// Parse converts "Key: Value" strings into a header map. A later duplicate key wins.
func Parse(h []string) (map[string]string, error) {
	m := make(map[string]string, len(h))
	for _, hdr := range h {
		key, value, ok := strings.Cut(hdr, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" || strings.ContainsAny(key, " \t") {
			return nil, fmt.Errorf("invalid header %q (want \"Key: Value\")", hdr)
		}
		m[key] = strings.TrimSpace(value)
	}
	return m, nil
}
