// SPDX-License-Identifier: MPL-2.0

package naming

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Preprocess strips the extension from filename, removes density markers
// ("@") and turns remaining dots into underscores: "icon@2x.v2.png" becomes
// "icon2x_v2".
func Preprocess(filename string) string {
	name := stripExt(filename)
	name = strings.ReplaceAll(name, "@", "")
	return strings.ReplaceAll(name, ".", "_")
}

// stripExt removes the last extension. A leading-dot name without another
// dot (".env") has no extension.
func stripExt(filename string) string {
	ext := filepath.Ext(filename)
	if ext == filename {
		return filename
	}
	return strings.TrimSuffix(filename, ext)
}

// split divides name on the policy pattern, trims every segment and drops
// empty ones. Characters that cannot appear in an identifier also separate
// words, so "my icon(1)" yields [my icon 1].
func (p Policy) split(name string) []string {
	var segments []string
	for _, part := range p.SplitPattern.Split(name, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		segments = append(segments, strings.FieldsFunc(part, notIdentRune)...)
	}
	return segments
}

func notIdentRune(r rune) bool {
	return !(r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'))
}

// dartReserved are the Dart reserved words, which cannot name a member.
var dartReserved = map[string]struct{}{
	"assert": {}, "break": {}, "case": {}, "catch": {}, "class": {},
	"const": {}, "continue": {}, "default": {}, "do": {}, "else": {},
	"enum": {}, "extends": {}, "false": {}, "final": {}, "finally": {},
	"for": {}, "if": {}, "in": {}, "is": {}, "new": {},
	"null": {}, "rethrow": {}, "return": {}, "super": {}, "switch": {},
	"this": {}, "throw": {}, "true": {}, "try": {}, "var": {},
	"void": {}, "while": {}, "with": {},
}

// identifier converts a preprocessed name into a candidate constant name.
func (p Policy) identifier(name string) string {
	return p.escapeReserved(guardLeadingDigit(p.cased(name)))
}

// cased joins the words of name in the policy style.
func (p Policy) cased(name string) string {
	segments := p.split(name)
	if len(segments) == 0 {
		if p.Style == StylePascal {
			return "Asset"
		}
		return "asset"
	}

	var b strings.Builder
	switch p.Style {
	case StyleSnake:
		for i, s := range segments {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteString(strings.ToLower(s))
		}
	case StylePascal:
		for _, s := range segments {
			b.WriteString(title(s))
		}
	default:
		for i, s := range segments {
			if i == 0 {
				b.WriteString(strings.ToLower(s))
				continue
			}
			b.WriteString(title(s))
		}
	}
	return b.String()
}

// escapeReserved appends "_" to reserved words and to the class name.
func (p Policy) escapeReserved(name string) string {
	if _, reserved := dartReserved[name]; reserved || (p.ClassName != "" && name == p.ClassName) {
		return name + "_"
	}
	return name
}

// title upper-cases the first rune and lower-cases the rest.
func title(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// guardLeadingDigit prefixes "n" to names starting with an ASCII digit.
func guardLeadingDigit(name string) string {
	if name != "" && name[0] >= '0' && name[0] <= '9' {
		return "n" + name
	}
	return name
}

// qualify joins directory segments and a preprocessed base name with "_",
// applying the same density/dot cleanup to the directory parts.
func qualify(dirs []string, base string) string {
	parts := make([]string, 0, len(dirs)+1)
	for _, d := range dirs {
		d = strings.ReplaceAll(d, "@", "")
		parts = append(parts, strings.ReplaceAll(d, ".", "_"))
	}
	return strings.Join(append(parts, base), "_")
}
