// ABOUTME: Quote-aware CSV tokenizer for pasted plan text
// ABOUTME: Splits records on newlines outside quotes and fields on commas outside quotes
package csvplan

import "strings"

// normalize unifies line endings and trims surrounding whitespace
func normalize(input string) string {
	s := strings.ReplaceAll(input, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimSpace(s)
}

// splitRecords splits normalized text into non-blank records.
// A newline inside a quoted field belongs to the field, not the record boundary.
func splitRecords(text string) []string {
	var (
		records  []string
		current  strings.Builder
		inQuotes bool
	)

	flush := func() {
		if strings.TrimSpace(current.String()) != "" {
			records = append(records, current.String())
		}
		current.Reset()
	}

	for _, ch := range text {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
			current.WriteRune(ch)
		case ch == '\n' && !inQuotes:
			flush()
		default:
			current.WriteRune(ch)
		}
	}
	flush()

	return records
}

// splitFields tokenizes one record. Fields are trimmed; "" inside quotes is a literal quote.
func splitFields(record string) []string {
	var (
		out      []string
		current  strings.Builder
		inQuotes bool
	)

	runes := []rune(record)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		if ch == '"' {
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				current.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
			continue
		}
		if ch == ',' && !inQuotes {
			out = append(out, strings.TrimSpace(current.String()))
			current.Reset()
			continue
		}
		current.WriteRune(ch)
	}
	out = append(out, strings.TrimSpace(current.String()))

	return out
}

// Escape quotes a value when it contains a comma, a double quote or a line break
func Escape(value string) string {
	if strings.ContainsAny(value, ",\"\n\r") {
		return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
	}
	return value
}

// JoinRecord escapes and joins values into one CSV line
func JoinRecord(values []string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = Escape(v)
	}
	return strings.Join(escaped, ",")
}
