package schema

import (
	"strings"
	"unicode"
)

// Identity builds the author key for a commit signature.
func Identity(key AuthorKey, name, email string) string {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	switch key {
	case AuthorName:
		return name
	case AuthorEmail:
		if email == "" {
			return name
		}
		return email
	default:
		if email == "" {
			return name
		}
		return name + " <" + email + ">"
	}
}

// IdentityName strips the "<email>" suffix from an identity key.
func IdentityName(identity string) string {
	if i := strings.Index(identity, " <"); i > 0 && strings.HasSuffix(identity, ">") {
		return identity[:i]
	}
	return identity
}

// trimNameParts drops surrounding punctuation from each name part, keeping
// letters, digits, hyphens, apostrophes and inner periods.
func trimNameParts(parts []string) []string {
	var cleaned []string
	for _, p := range parts {
		cp := strings.TrimFunc(p, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '-' && r != '\'' && r != '.'
		})
		cp = strings.TrimSuffix(cp, ".")
		if cp != "" {
			cleaned = append(cleaned, cp)
		}
	}
	return cleaned
}

// AbbreviateName formats "Samuel Huang" to "Samuel H". Bot accounts and
// single-word names are returned as-is. Identity keys lose their email first.
func AbbreviateName(identity string) string {
	name := strings.TrimSpace(IdentityName(identity))

	if strings.Contains(name, "[bot]") {
		return strings.Join(strings.Fields(name), " ")
	}

	parts := trimNameParts(strings.Fields(strings.Trim(name, "()\"'`")))
	switch {
	case len(parts) >= 2:
		last := []rune(parts[len(parts)-1])
		return parts[0] + " " + string(last[0])
	case len(parts) == 1:
		return parts[0]
	default:
		return name
	}
}
