package reqkey

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Build derives the canonical cache key for an API request. Parameters are
// sorted so that logically identical requests always map to the same key,
// and the request path is embedded verbatim so substring patterns like
// "/courses/" match every cached entry under that path.
func Build(method, path string, params map[string]string, body []byte) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(method))
	b.WriteByte(' ')
	b.WriteString(path)

	if len(params) > 0 {
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('?')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte('&')
			}
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(params[k])
		}
	}

	if len(body) > 0 {
		sum := sha256.Sum256(body)
		b.WriteByte('#')
		b.WriteString(hex.EncodeToString(sum[:]))
	}

	return b.String()
}
