package render

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/vango-dev/prerender/pkg/assets"
	"github.com/vango-dev/prerender/pkg/store"
)

// NonceHeader carries the Content-Security-Policy nonce applied to inline
// scripts.
const NonceHeader = "X-Nonce"

// ContentID is the id of the element the client renders into.
const ContentID = "content"

// Document describes the parts of the page that come from configuration.
type Document struct {
	Title string
	Lang  string
	Meta  map[string]string

	// LiveReload is the websocket path of the live-reload hub. Empty
	// disables the reload script.
	LiveReload string
}

// Assemble builds the page document. A nil markup yields the shell document
// with an empty content element that the client renders into.
func Assemble(doc Document, a assets.Assets, state store.State, headers http.Header, markup *string) (string, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("serialize state: %w", err)
	}
	if state == nil {
		data = []byte("{}")
	}

	nonce := ""
	if v := headers.Get(NonceHeader); v != "" {
		nonce = ` nonce="` + escapeAttr(v) + `"`
	}

	lang := doc.Lang
	if lang == "" {
		lang = "en"
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n")
	fmt.Fprintf(&b, "<html lang=\"%s\">\n", escapeAttr(lang))

	b.WriteString("<head>\n")
	b.WriteString("  <meta charset=\"utf-8\">\n")
	b.WriteString("  <meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	if doc.Title != "" {
		fmt.Fprintf(&b, "  <title>%s</title>\n", escapeText(doc.Title))
	}
	for _, name := range sortedKeys(doc.Meta) {
		fmt.Fprintf(&b, "  <meta name=\"%s\" content=\"%s\">\n", escapeAttr(name), escapeAttr(doc.Meta[name]))
	}
	for _, href := range a.Stylesheets() {
		fmt.Fprintf(&b, "  <link rel=\"stylesheet\" href=\"%s\" media=\"screen, projection\" charset=\"UTF-8\">\n", escapeAttr(href))
	}
	b.WriteString("</head>\n")

	b.WriteString("<body>\n")
	fmt.Fprintf(&b, "  <div id=\"%s\">", ContentID)
	if markup != nil {
		b.WriteString(*markup)
	}
	b.WriteString("</div>\n")

	// json.Marshal escapes <, > and & so the state cannot close the script.
	fmt.Fprintf(&b, "  <script%s>window.__data=%s;</script>\n", nonce, data)
	for _, src := range a.Scripts() {
		fmt.Fprintf(&b, "  <script src=\"%s\" charset=\"UTF-8\"></script>\n", escapeAttr(src))
	}
	if doc.LiveReload != "" {
		path, _ := json.Marshal(doc.LiveReload)
		fmt.Fprintf(&b, "  <script%s>%s</script>\n", nonce, fmt.Sprintf(liveReloadScript, path))
	}
	b.WriteString("</body>\n</html>\n")

	return b.String(), nil
}

const liveReloadScript = `(function(){var p=location.protocol==="https:"?"wss://":"ws://";` +
	`var ws=new WebSocket(p+location.host+%s);ws.onmessage=function(){location.reload()};})();`

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
