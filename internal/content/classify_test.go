package content

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Bitlatte/tome/internal/model"
)

var knownKeys = []string{"blog", "blog/2020", "notes", model.SectionDefault, model.SectionPages, model.SectionRoot}

func TestSectionFor(t *testing.T) {
	tests := []struct {
		rel  string
		want string
	}{
		{rel: "about.md", want: model.SectionDefault},
		{rel: "blog/post.md", want: "blog"},
		{rel: "blog/2020/post.md", want: "blog/2020"},
		{rel: "blog/2021/post.md", want: "blog"},
		{rel: "blogger/post.md", want: model.SectionDefault},
		{rel: "unknown/post.md", want: model.SectionDefault},
		{rel: "notes/deep/er/x.md", want: "notes"},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			assert.Equal(t, tt.want, SectionFor(tt.rel, knownKeys))
		})
	}
}

func TestSectionFor_LongestMatchIndependentOfKeyOrder(t *testing.T) {
	a := SectionFor("blog/2020/x.md", []string{"blog", "blog/2020"})
	b := SectionFor("blog/2020/x.md", []string{"blog/2020", "blog"})
	assert.Equal(t, "blog/2020", a)
	assert.Equal(t, a, b)
}

func TestTemplateName(t *testing.T) {
	tests := []struct {
		section string
		base    string
		marker  bool
		want    string
	}{
		{section: model.SectionRoot, base: "page.html", marker: true, want: "index.html"},
		{section: model.SectionRoot, base: "page.html", marker: false, want: "index.html"},
		{section: model.SectionDefault, base: "page.html", marker: false, want: "page.html"},
		{section: model.SectionDefault, base: "about.html", marker: false, want: "about.html"},
		{section: "", base: "page.html", marker: false, want: "page.html"},
		{section: "blog", base: "page.html", marker: false, want: "blog_page.html"},
		{section: "blog", base: "post.html", marker: false, want: "blog_post.html"},
		{section: "blog", base: "post.html", marker: true, want: "blog_index.html"},
		{section: "blog/2020", base: "page.html", marker: false, want: "blog/2020_page.html"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TemplateName(tt.section, tt.base, tt.marker), "%+v", tt)
	}
}

func TestTemplateBase(t *testing.T) {
	assert.Equal(t, "page.html", TemplateBase(""))
	assert.Equal(t, "page.html", TemplateBase("  "))
	assert.Equal(t, "post.html", TemplateBase("post"))
	assert.Equal(t, "post.html", TemplateBase("post.html"))
	assert.Equal(t, "feed.xml", TemplateBase("feed.xml"))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		rel      string
		override string
		want     Classification
	}{
		{
			name: "root marker",
			rel:  "_index.md",
			want: Classification{Section: model.SectionRoot, Template: "index.html", OutputPath: "index.html", RootMarker: true},
		},
		{
			name: "section marker",
			rel:  "blog/_index.md",
			want: Classification{Section: "blog", Template: "blog_index.html", Link: "blog/", OutputPath: "blog/index.html", SectionMarker: true},
		},
		{
			name:     "section marker ignores override",
			rel:      "blog/_index.md",
			override: "custom",
			want:     Classification{Section: "blog", Template: "blog_index.html", Link: "blog/", OutputPath: "blog/index.html", SectionMarker: true},
		},
		{
			name: "section document",
			rel:  "blog/post1.md",
			want: Classification{Section: "blog", Template: "blog_page.html", Link: "blog/post1/", OutputPath: "blog/post1/index.html"},
		},
		{
			name:     "section document with override",
			rel:      "blog/post1.md",
			override: "post",
			want:     Classification{Section: "blog", Template: "blog_post.html", Link: "blog/post1/", OutputPath: "blog/post1/index.html"},
		},
		{
			name: "root document",
			rel:  "about.md",
			want: Classification{Section: model.SectionDefault, Template: "page.html", Link: "about/", OutputPath: "about/index.html"},
		},
		{
			name: "unrecognized directory",
			rel:  "misc/thing.md",
			want: Classification{Section: model.SectionDefault, Template: "page.html", Link: "misc/thing/", OutputPath: "misc/thing/index.html"},
		},
		{
			name: "file named index is not a marker",
			rel:  "blog/index.md",
			want: Classification{Section: "blog", Template: "blog_page.html", Link: "blog/index/", OutputPath: "blog/index/index.html"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.rel, tt.override, knownKeys))
		})
	}
}

func TestClassification_Apply(t *testing.T) {
	doc := &model.Document{Template: "post"}
	Classify("blog/_index.md", doc.Template, knownKeys).Apply(doc)

	assert.Equal(t, "blog", doc.Section)
	assert.Equal(t, "blog_index.html", doc.Template)
	assert.True(t, doc.IsSectionMarker)
	assert.False(t, doc.IsRootMarker)
	assert.False(t, doc.Rendered())
}

func TestIsDocument(t *testing.T) {
	assert.True(t, IsDocument("blog/post.md"))
	assert.True(t, IsDocument("blog/post.MD"))
	assert.True(t, IsDocument("blog/_index.markdown"))
	assert.False(t, IsDocument("blog/image.png"))
	assert.False(t, IsDocument("blog/md"))
}

func TestIsMarker(t *testing.T) {
	assert.True(t, IsMarker("_index.md"))
	assert.True(t, IsMarker("blog/_index.markdown"))
	assert.False(t, IsMarker("blog/index.md"))
	assert.False(t, IsMarker("blog/_index_old.md"))
}
