package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vango-dev/prerender/pkg/vdom"
)

func TestRenderText(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	html, err := renderer.RenderToString(vdom.Text("Hello, World!"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if html != "Hello, World!" {
		t.Errorf("got %q, want %q", html, "Hello, World!")
	}
}

func TestRenderTextEscaping(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	html, err := renderer.RenderToString(vdom.Text("<script>alert('xss')</script>"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Errorf("HTML should be escaped, got %q", html)
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Errorf("should contain escaped script tag, got %q", html)
	}
}

func TestRenderElement(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	node := vdom.Div(vdom.Class("container"),
		vdom.H1(vdom.Text("Title")),
		vdom.P(vdom.Text("Content")),
	)
	html, err := renderer.RenderToString(node)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `<div class="container"><h1>Title</h1><p>Content</p></div>`
	if html != want {
		t.Errorf("got %q, want %q", html, want)
	}
}

func TestRenderAttributes(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	tests := []struct {
		name string
		node *vdom.VNode
		want string
	}{
		{
			name: "sorted attributes",
			node: vdom.A(vdom.Href("/x"), vdom.ID("link"), vdom.Data("n", "1"), "go"),
			want: `<a data-n="1" href="/x" id="link">go</a>`,
		},
		{
			name: "boolean true",
			node: vdom.Button(vdom.Disabled(true), "b"),
			want: `<button disabled>b</button>`,
		},
		{
			name: "boolean false",
			node: vdom.Button(vdom.Disabled(false), "b"),
			want: `<button>b</button>`,
		},
		{
			name: "escaped value",
			node: vdom.Div(vdom.AttrOf("title", `a "b" <c>`)),
			want: `<div title="a &quot;b&quot; &lt;c&gt;"></div>`,
		},
		{
			name: "className alias",
			node: vdom.Span(vdom.AttrOf("className", "x")),
			want: `<span class="x"></span>`,
		},
		{
			name: "handlers and internal props skipped",
			node: vdom.Div(vdom.AttrOf("onclick", func() {}), vdom.AttrOf("_ref", 1), vdom.Key("k")),
			want: `<div></div>`,
		},
		{
			name: "numbers",
			node: vdom.Div(vdom.AttrOf("tabindex", 3), vdom.AttrOf("data-ratio", 0.5)),
			want: `<div data-ratio="0.5" tabindex="3"></div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := renderer.RenderToString(tt.node)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderVoidElements(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	html, err := renderer.RenderToString(vdom.Div(vdom.Img(vdom.Src("/a.png"), vdom.Alt("a")), vdom.Br()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `<div><img alt="a" src="/a.png"><br></div>`
	if html != want {
		t.Errorf("got %q, want %q", html, want)
	}
}

func TestRenderFragmentRawAndComponent(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	comp := vdom.Func(func() *vdom.VNode { return vdom.Span("from component") })
	node := vdom.Fragment(
		vdom.Raw("<b>raw</b>"),
		comp,
		vdom.Text("&"),
	)

	html, err := renderer.RenderToString(node)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `<b>raw</b><span>from component</span>&amp;`
	if html != want {
		t.Errorf("got %q, want %q", html, want)
	}
}

func TestRenderDangerouslySetInnerHTML(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	node := vdom.Div(vdom.AttrOf("dangerouslySetInnerHTML", `<i>x</i>`), "ignored")
	html, err := renderer.RenderToString(node)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if html != `<div><i>x</i></div>` {
		t.Errorf("got %q", html)
	}
}

func TestRenderPretty(t *testing.T) {
	renderer := NewRenderer(RendererConfig{Pretty: true})

	var buf bytes.Buffer
	err := renderer.RenderToWriter(&buf, vdom.Ul(vdom.Li("a"), vdom.Li(vdom.Span("b"))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "<ul>\n  <li>a</li>\n  <li>\n    <span>b</span>\n  </li>\n</ul>\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestRenderErrors(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	if _, err := renderer.RenderToString(&vdom.VNode{Kind: vdom.VKind(42)}); err == nil {
		t.Error("unknown kind should fail")
	}
	if _, err := renderer.RenderToString(&vdom.VNode{Kind: vdom.KindElement}); err == nil {
		t.Error("element without tag should fail")
	}
	if html, err := renderer.RenderToString(nil); err != nil || html != "" {
		t.Errorf("nil node = %q, %v", html, err)
	}
}
