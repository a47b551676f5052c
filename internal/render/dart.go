// SPDX-License-Identifier: MPL-2.0

package render

import (
	"strings"

	"github.com/assetgen/assetgen/internal/naming"
)

// Header is the first line of every generated file.
const Header = "// GENERATED CODE - DO NOT MODIFY BY HAND"

var dartEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `$`, `\$`)

// Dart renders assignments as a Dart class of string constants.
type Dart struct{}

// Render returns the source of class className holding one constant per
// assignment, in assignment order. The output depends only on its inputs.
func (Dart) Render(assignments []naming.Assignment, className string) string {
	var b strings.Builder

	b.WriteString(Header + "\n")
	b.WriteString("// Run `assetgen generate` to update.\n\n")
	b.WriteString("// ignore_for_file: type=lint\n\n")

	b.WriteString("class " + className + " {\n")
	b.WriteString("  " + className + "._();\n")

	if len(assignments) > 0 {
		b.WriteString("\n")
	}
	for _, a := range assignments {
		b.WriteString("  static const String ")
		b.WriteString(a.Name)
		b.WriteString(" = '")
		b.WriteString(dartEscaper.Replace(a.Value))
		b.WriteString("';\n")
	}

	b.WriteString("}\n")
	return b.String()
}
