// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"

	"github.com/charmbracelet/glamour"
)

type (
	// MarkdownMsg is Markdown text rendered for the user.
	MarkdownMsg string

	// HttpLink is a documentation URL.
	HttpLink string //nolint:revive // matches the Markdown link wording

	// Issue is the help card shown for one error Kind.
	Issue struct {
		kind     Kind
		mdMsg    MarkdownMsg
		docLinks []HttpLink
	}
)

// Kind returns the kind the card documents.
func (i *Issue) Kind() Kind {
	return i.kind
}

// MarkdownMsg returns the raw Markdown body.
func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// DocLinks returns a copy of the documentation links.
func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// Render renders the card with glamour. An empty stylePath selects the
// automatic dark/light style.
func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
	}
	if stylePath == "" {
		stylePath = "auto"
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	configMissingIssue = &Issue{
		kind: KindConfigMissing,
		mdMsg: `
# pubspec.yaml not found

assetgen reads the asset list from the project's ` + "`pubspec.yaml`" + `.

## Things you can try
- Run the command from the Flutter project root, or pass the directory:
~~~
$ assetgen generate path/to/app
~~~
- List the projects assetgen can see:
~~~
$ assetgen projects
~~~`,
		docLinks: []HttpLink{"https://dart.dev/tools/pub/pubspec"},
	}

	configInvalidIssue = &Issue{
		kind: KindConfigInvalid,
		mdMsg: `
# Invalid configuration

The manifest could not be parsed, or the ` + "`flutter_assets_generator`" + ` section
holds a value assetgen does not accept.

## Common issues
- YAML syntax errors (indentation, unquoted special characters)
- ` + "`naming_style`" + ` other than camelCase, snake_case or PascalCase
- ` + "`filename_split_pattern`" + ` that is not a valid regular expression

## Things you can try
~~~
$ assetgen config show
~~~`,
		docLinks: []HttpLink{"https://yaml.org/spec/1.2.2/"},
	}

	noAssetsIssue = &Issue{
		kind: KindNoAssets,
		mdMsg: `
# No assets configured

The manifest has no entries under ` + "`flutter.assets`" + `.

## Things you can try
- Declare a directory (trailing slash) or a single file:
~~~yaml
flutter:
  assets:
    - assets/images/
    - assets/data/config.json
~~~
- Or let assetgen add it:
~~~
$ assetgen add assets/images
~~~`,
		docLinks: []HttpLink{"https://docs.flutter.dev/ui/assets/assets-and-images"},
	}

	rootUnreadableIssue = &Issue{
		kind: KindRootUnreadable,
		mdMsg: `
# Asset path does not exist

A path declared under ` + "`flutter.assets`" + ` could not be read. It was skipped and
generation continued with the remaining paths.

## Things you can try
- Check the spelling of the declared path
- Make sure the directory is readable by the current user`,
	}

	outputWriteIssue = &Issue{
		kind: KindOutputWrite,
		mdMsg: `
# Failed to write generated file

The rendered constants could not be written to the output location.

## Things you can try
- Check write permissions for ` + "`lib/<output_dir>`" + `
- Change ` + "`output_dir`" + ` / ` + "`output_filename`" + ` in the ` + "`flutter_assets_generator`" + ` section`,
	}

	unknownIssue = &Issue{
		kind: KindUnknown,
		mdMsg: `
# Unexpected error

## Things you can try
- Re-run with ` + "`--verbose`" + ` to see the full error chain`,
	}

	issues = map[Kind]*Issue{
		configMissingIssue.Kind():  configMissingIssue,
		configInvalidIssue.Kind():  configInvalidIssue,
		noAssetsIssue.Kind():       noAssetsIssue,
		rootUnreadableIssue.Kind(): rootUnreadableIssue,
		outputWriteIssue.Kind():    outputWriteIssue,
		unknownIssue.Kind():        unknownIssue,
	}
)

// Get returns the help card for kind, or nil if there is none.
func Get(kind Kind) *Issue {
	return issues[kind]
}

// Values returns every help card in Kinds() order.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, k := range Kinds() {
		if i, ok := issues[k]; ok {
			out = append(out, i)
		}
	}
	return out
}
