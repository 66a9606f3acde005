// Package assets resolves the client bundle files the page document links to.
//
// The client build writes a stats file listing its output chunks:
//
//	{
//	  "javascript": {"main": "/dist/main.3f2a.js"},
//	  "styles":     {"main": "/dist/main.9c1e.css"}
//	}
//
// Tools loads that file from a Source (local disk or S3) and keeps the last
// good copy. In development the file is re-read before every request since
// the client build rewrites it on each change.
package assets

import (
	"encoding/json"
	"sort"
	"strings"
)

// Assets is the decoded build stats.
type Assets struct {
	Javascript map[string]string `json:"javascript"`
	Styles     map[string]string `json:"styles"`
}

// Decode parses build stats and prefixes relative file names with publicPath.
func Decode(data []byte, publicPath string) (Assets, error) {
	var a Assets
	if err := json.Unmarshal(data, &a); err != nil {
		return Assets{}, err
	}
	a.Javascript = withPublicPath(a.Javascript, publicPath)
	a.Styles = withPublicPath(a.Styles, publicPath)
	return a, nil
}

func withPublicPath(files map[string]string, publicPath string) map[string]string {
	out := make(map[string]string, len(files))
	for name, file := range files {
		if file == "" {
			continue
		}
		if !isAbsolute(file) && publicPath != "" {
			file = strings.TrimSuffix(publicPath, "/") + "/" + file
		}
		out[name] = file
	}
	return out
}

func isAbsolute(file string) bool {
	return strings.HasPrefix(file, "/") ||
		strings.HasPrefix(file, "http://") ||
		strings.HasPrefix(file, "https://")
}

// Scripts returns the JavaScript files ordered by chunk name.
func (a Assets) Scripts() []string {
	return sortedValues(a.Javascript)
}

// Stylesheets returns the stylesheet files ordered by chunk name.
func (a Assets) Stylesheets() []string {
	return sortedValues(a.Styles)
}

// Empty reports whether no files are listed.
func (a Assets) Empty() bool {
	return len(a.Javascript) == 0 && len(a.Styles) == 0
}

func sortedValues(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make([]string, 0, len(keys))
	for _, k := range keys {
		values = append(values, m[k])
	}
	return values
}
