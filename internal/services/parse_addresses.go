package services

import (
	"encoding/json"
	"route-optimizer/internal/domain"
	"strings"
)

// ParseAddresses splits the text form of an address list.
//
// Text starting with "[" is decoded as a JSON array of strings. Syntactically
// malformed JSON is split on commas instead of being rejected, but a well
// formed array holding anything other than strings is an InputError.
// Entries are trimmed and empty entries are dropped.
func ParseAddresses(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []string{}, nil
	}

	if strings.HasPrefix(text, "[") {
		var list []string
		err := json.Unmarshal([]byte(text), &list)
		if err == nil {
			return CleanAddresses(list), nil
		}
		if json.Valid([]byte(text)) {
			return nil, &domain.InputError{Reason: "Addresses must be strings"}
		}
	}

	return CleanAddresses(strings.Split(text, ",")), nil
}

// CleanAddresses trims every entry and drops the empty ones.
// Duplicates are kept; each one is geocoded on its own.
func CleanAddresses(addresses []string) []string {
	out := make([]string, 0, len(addresses))
	for _, a := range addresses {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		out = append(out, a)
	}
	return out
}
