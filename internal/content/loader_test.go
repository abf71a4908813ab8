package content

import (
	"html/template"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upperExpander struct{ calls int }

func (u *upperExpander) Expand(_, src string, _ any) (string, error) {
	u.calls++
	return strings.ToUpper(src), nil
}

type countingConverter struct {
	calls int
	inner Converter
}

func (c *countingConverter) Convert(src []byte) (template.HTML, error) {
	c.calls++
	return c.inner.Convert(src)
}

func newTestLoader(t *testing.T, files map[string]string) (*Loader, *countingConverter) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for name, body := range files {
		require.NoError(t, afero.WriteFile(fsys, "content/"+name, []byte(body), 0o644))
	}
	conv := &countingConverter{inner: NewGoldmarkConverter("")}
	return NewLoader(fsys, "content", conv, nil), conv
}

func TestLoader_TOMLDocument(t *testing.T) {
	src := `+++
title = "Hello"
description = "First post"
date = 2020-03-05T10:00:00Z
tags = ["go", "web"]
template = "post"
+++
# Heading

Some *text*.
`
	l, conv := newTestLoader(t, map[string]string{"blog/hello.md": src})

	doc, err := l.Load("blog/hello.md")
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.Equal(t, "Hello", doc.Title)
	assert.Equal(t, "First post", doc.Description)
	assert.Equal(t, []string{"go", "web"}, doc.Tags)
	assert.Equal(t, "post", doc.Template)
	assert.False(t, doc.Draft)
	assert.Equal(t, "blog/hello.md", doc.SourcePath)
	assert.Equal(t, "Thu Mar 05 2020", doc.DateFull())
	assert.Equal(t, 1, doc.ReadingTime)
	assert.Contains(t, string(doc.Body), `<h1 id="heading">Heading</h1>`)
	assert.Contains(t, string(doc.Body), "<em>text</em>")
	assert.Equal(t, 1, conv.calls)
}

func TestLoader_LocalDate(t *testing.T) {
	l, _ := newTestLoader(t, map[string]string{"p.md": "+++\ntitle = \"x\"\ndate = 2021-01-01\n+++\nbody\n"})

	doc, err := l.Load("p.md")
	require.NoError(t, err)
	assert.Equal(t, "2021-01-01", doc.DateShort())
	assert.Equal(t, "2021", doc.Year())
	assert.Equal(t, time.UTC, doc.Date.Location())
}

func TestLoader_YAMLDocument(t *testing.T) {
	src := "---\ntitle: Yaml\ndate: 2022-01-02T03:04:05Z\ndraft: true\nrsslink: /blog/feed.xml\n---\nbody\n"
	l, _ := newTestLoader(t, map[string]string{"y.md": src})

	doc, err := l.Load("y.md")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "Yaml", doc.Title)
	assert.True(t, doc.Draft)
	assert.Equal(t, "blog/feed.xml", doc.FeedLinkOverride)
	assert.Equal(t, time.Date(2022, 1, 2, 3, 4, 5, 0, time.UTC), doc.Date.UTC())
}

func TestLoader_NotADocument(t *testing.T) {
	tests := map[string]string{
		"plain.md":    "# just markdown\n",
		"unclosed.md": "+++\ntitle = \"x\"\n",
		"empty.md":    "",
		"rule.md":     "# title\n\ntext\n---\nmore\n",
	}
	l, conv := newTestLoader(t, tests)
	for name := range tests {
		doc, err := l.Load(name)
		require.NoError(t, err, name)
		assert.Nil(t, doc, name)
	}
	assert.Zero(t, conv.calls)
}

func TestLoader_PreambleBeforeMetadataIsDiscarded(t *testing.T) {
	src := "intro text\nmore intro\n+++\ntitle = \"Pre\"\ndate = 2021-01-01\n+++\nbody\n"
	l, _ := newTestLoader(t, map[string]string{"pre.md": src})

	doc, err := l.Load("pre.md")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "Pre", doc.Title)
	assert.Contains(t, string(doc.Body), "<p>body</p>")
	assert.NotContains(t, string(doc.Body), "intro")
}

func TestStripPreamble(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "toml first", in: "+++\na\n+++\n", want: "+++\na\n+++\n"},
		{name: "yaml first", in: "---\na: 1\n---\n+++\n", want: "---\na: 1\n---\n+++\n"},
		{name: "yaml after blank lines", in: "\n\n---\na: 1\n---\n", want: "\n\n---\na: 1\n---\n"},
		{name: "preamble", in: "hello\n+++\na\n+++\n", want: "+++\na\n+++\n"},
		{name: "no delimiter", in: "hello\n---\nworld\n", want: "hello\n---\nworld\n"},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(stripPreamble([]byte(tt.in))))
		})
	}
}

func TestLoader_MetadataErrorsAreFatal(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
	}{
		{name: "bad toml", src: "+++\ntitle = \n+++\nbody", wantErr: ErrMetadata},
		{name: "bad date", src: "+++\ntitle = \"x\"\ndate = \"yesterday\"\n+++\nbody", wantErr: ErrMetadata},
		{name: "missing date", src: "+++\ntitle = \"x\"\n+++\nbody", wantErr: ErrMissingDate},
		{name: "missing title", src: "+++\ndate = 2021-01-01\n+++\nbody", wantErr: ErrMissingTitle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newTestLoader(t, map[string]string{"doc.md": tt.src})
			_, err := l.Load("doc.md")
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoader_DraftIsStillValidated(t *testing.T) {
	l, _ := newTestLoader(t, map[string]string{"d.md": "+++\ntitle = \"x\"\ndraft = true\n+++\nbody"})
	_, err := l.Load("d.md")
	require.ErrorIs(t, err, ErrMissingDate)
}

func TestLoader_ReadingTimeFromBody(t *testing.T) {
	body := strings.Repeat("lorem ", 400)
	l, _ := newTestLoader(t, map[string]string{"long.md": "+++\ntitle = \"x\"\ndate = 2021-01-01\n+++\n" + body})

	doc, err := l.Load("long.md")
	require.NoError(t, err)
	assert.Equal(t, 2, doc.ReadingTime)
}

func TestLoader_MacrosRunBeforeConversion(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "c/m.md", []byte("+++\ntitle = \"x\"\ndate = 2021-01-01\n+++\nshout\n"), 0o644))
	exp := &upperExpander{}
	l := NewLoader(fsys, "c", NewGoldmarkConverter(""), exp)

	doc, err := l.Load("m.md")
	require.NoError(t, err)
	assert.Equal(t, 1, exp.calls)
	assert.Contains(t, string(doc.Body), "SHOUT")
}

func TestLoader_MissingFile(t *testing.T) {
	l, _ := newTestLoader(t, nil)
	_, err := l.Load("nope.md")
	require.Error(t, err)
}
