// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

// Id identifies a catalogued issue.
type Id int

const (
	InputNotFoundId Id = iota + 1
	PermissionDeniedId
	OutputNotWritableId
	ConfigLoadFailedId
	ManifestInvalidId
	InvalidOptionsId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // zipkit documentation pages
	extLinks []HttpLink  // external references
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Markdown returns the issue text with a "See also" section appended when the
// issue has links.
func (i *Issue) Markdown() string {
	var b strings.Builder
	b.WriteString(string(i.mdMsg))
	links := append(i.DocLinks(), i.extLinks...)
	if len(links) > 0 {
		b.WriteString("\n\n## See also\n")
		for _, link := range links {
			b.WriteString("- <" + string(link) + ">\n")
		}
	}
	return b.String()
}

// Render renders the issue for a terminal using the given glamour style
// ("dark", "light", "notty", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	return render(i.Markdown(), stylePath)
}

var (
	render = glamour.Render

	zipSpecLink HttpLink = "https://pkware.cachefly.net/webdocs/casestudies/APPNOTE.TXT"

	inputNotFoundIssue = &Issue{
		id: InputNotFoundId,
		mdMsg: `
# Input file not found!

One of the files to archive does not exist. The archive written so far was
left in place and only contains the entries before the missing file.

## Things you can try:
- Check the path for typos; relative paths are resolved from the current
  directory (or from the manifest directory for ` + "`zipkit run`" + `)
- List the files you expect to add:
~~~
$ ls -l path/to/file
~~~

- Remove the partial archive and run the command again`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

zipkit was not allowed to read an input or write the archive.

## Common causes:
- The input file is not readable by your user
- The output directory is read-only or owned by another user

## Things you can try:
- Check file and directory permissions:
~~~
$ ls -ld path/to/dir
~~~

- Write the archive to a directory you own, for example with ` + "`-o ./out.zip`",
	}

	outputNotWritableIssue = &Issue{
		id: OutputNotWritableId,
		mdMsg: `
# Could not write the archive!

The destination could not be created or an error occurred while writing or
closing it.

## Things you can try:
- Make sure the parent directory exists
- Check that the disk is not full
- For blob destinations (` + "`file://`, `mem://`" + `) check the URL syntax:
~~~
$ zipkit create -o file:///tmp/archives/out.zip a.txt
~~~`,
		extLinks: []HttpLink{"https://gocloud.dev/howto/blob/"},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The zipkit configuration file could not be read or does not match the schema.

## Things you can try:
- Show where zipkit looks for the file:
~~~
$ zipkit config path
~~~

- Write a fresh default file:
~~~
$ zipkit config init
~~~

## Example config.cue:
~~~cue
buffer_size: 4096
storage_method: "deflated"
compression_level: 6
ui: verbose: false
~~~`,
	}

	manifestInvalidIssue = &Issue{
		id: ManifestInvalidId,
		mdMsg: `
# Invalid manifest!

The job manifest could not be parsed. The error above names the offending
field.

## Things you can try:
- Use a ` + "`.cue` or `.toml`" + ` extension
- Make sure ` + "`output`" + ` is set and every entry has a ` + "`name`" + `
- Base64 entries need ` + "`encoding: \"base64\"`" + ` and valid base64 content

## Example job.cue:
~~~cue
output: "build/bundle.zip"
prefix: "build/"
files: ["build/app", "build/README.md"]
entries: [{name: "state.json", content: "{}"}]
~~~`,
	}

	invalidOptionsIssue = &Issue{
		id: InvalidOptionsId,
		mdMsg: `
# Invalid archive options!

## Accepted values:
- buffer size: any positive number of bytes (default 2048)
- storage method: ` + "`deflated` or `stored`" + `
- prefix mode: ` + "`first` or `leading`" + `
- compression level: -1 (library default) to 9`,
		docLinks: []HttpLink{zipSpecLink},
	}

	issues = map[Id]*Issue{
		inputNotFoundIssue.Id():     inputNotFoundIssue,
		permissionDeniedIssue.Id():  permissionDeniedIssue,
		outputNotWritableIssue.Id(): outputNotWritableIssue,
		configLoadFailedIssue.Id():  configLoadFailedIssue,
		manifestInvalidIssue.Id():   manifestInvalidIssue,
		invalidOptionsIssue.Id():    invalidOptionsIssue,
	}
)

// Values returns every catalogued issue ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
