// SPDX-License-Identifier: MPL-2.0

package render

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	constantPattern = regexp.MustCompile(`static\s+const\s+String\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*=\s*'((?:[^'\\]|\\.)*)'\s*;`)

	dartUnescaper = strings.NewReplacer(`\\`, `\`, `\'`, `'`, `\$`, `$`)
)

// Lookup parses generated source and returns constant name to asset path.
func Lookup(source string) map[string]string {
	out := make(map[string]string)
	for _, m := range constantPattern.FindAllStringSubmatch(source, -1) {
		out[m[1]] = dartUnescaper.Replace(m[2])
	}
	return out
}

// LookupFile reads a generated file and parses it with Lookup.
func LookupFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read generated file: %w", err)
	}
	return Lookup(string(data)), nil
}
