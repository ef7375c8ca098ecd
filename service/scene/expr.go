package scene

import (
	"os"
	"strings"
	"unicode"
)

// expandEnvExpr replaces all occurrences of ${env.KEY} in the input
// with the value of the environment variable KEY (or "" if unset).
func expandEnvExpr(value string) string {
	const prefix = "${env."
	var b strings.Builder
	i := 0
	for {
		idx := strings.Index(value[i:], prefix)
		if idx < 0 {
			b.WriteString(value[i:])
			break
		}

		b.WriteString(value[i : i+idx])
		startKey := i + idx + len(prefix)

		endKey := strings.IndexByte(value[startKey:], '}')
		if endKey < 0 {
			// No closing brace; treat the rest as literal.
			b.WriteString(value[i+idx:])
			break
		}

		key := value[startKey : startKey+endKey]

		// The key must consist solely of letters, digits or '_' (empty is allowed).
		valid := true
		for _, r := range key {
			if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
				valid = false
				break
			}
		}

		if valid {
			b.WriteString(os.Getenv(key))
		} else {
			// Invalid expression; keep the prefix literal and continue scanning
			// right after it so nested expressions are still processed.
			b.WriteString(value[i+idx : startKey])
			i = startKey
			continue
		}

		i = startKey + endKey + 1
	}

	return b.String()
}
