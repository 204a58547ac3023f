// Package textx normalizes human input into the identifiers the store
// persists: node slugs, type names, field names and attribute codes.
package textx

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Letters that do not decompose into a base letter plus combining marks.
var latinFolds = strings.NewReplacer(
	"ß", "ss", "Æ", "AE", "æ", "ae", "Œ", "OE", "œ", "oe",
	"Ø", "O", "ø", "o", "Đ", "D", "đ", "d", "Ł", "L", "ł", "l",
	"Þ", "Th", "þ", "th", "ı", "i",
)

var lower = cases.Lower(language.Und)

// ToLatin strips diacritics ("é" → "e") and folds a few non-decomposable
// latin letters. Non-latin scripts are left as they are.
func ToLatin(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return latinFolds.Replace(out)
}

// words splits latin-folded s on every rune that is not an ASCII letter or digit.
func words(s string) []string {
	return strings.FieldsFunc(ToLatin(s), func(r rune) bool {
		return !isASCIIAlnum(r)
	})
}

func isASCIIAlnum(r rune) bool {
	return r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

// Slugify turns s into a lowercase, hyphen separated, ASCII slug:
// "Été à Paris!" → "ete-a-paris".
func Slugify(s string) string {
	return lower.String(strings.Join(words(s), "-"))
}

// Variablize turns s into a camelCase identifier: "Hero image" → "heroImage".
// Existing inner capitals are kept, so "heroImage" is stable.
func Variablize(s string) string {
	ws := words(s)
	var b strings.Builder
	for i, w := range ws {
		if i == 0 {
			b.WriteString(lowerFirst(w))
			continue
		}
		b.WriteString(upperFirst(w))
	}
	return trimLeadingDigits(b.String())
}

// Classify turns s into a PascalCase identifier: "blog post" → "BlogPost".
func Classify(s string) string {
	var b strings.Builder
	for _, w := range words(s) {
		b.WriteString(upperFirst(w))
	}
	return upperFirst(trimLeadingDigits(b.String()))
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func trimLeadingDigits(s string) string {
	return strings.TrimLeftFunc(s, unicode.IsDigit)
}

// IsIdentifier reports whether s starts with an ASCII letter and contains
// only ASCII letters and digits.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if !isASCIIAlnum(r) {
			return false
		}
		if i == 0 && !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
