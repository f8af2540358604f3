// Package imageurl decodes heterogeneous image fields and resolves them to a
// usable image URL.
package imageurl

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
)

const Placeholder = "https://images.pexels.com/photos/1029896/pexels-photo-1029896.jpeg?auto=compress&cs=tinysrgb&w=400"

var (
	imageExt  = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp|svg)$`)
	imageHost = regexp.MustCompile(`(?i)(images\.|img\.|static\.|cdn\.|amazonaws\.com|cloudinary\.com|imgur\.com|pexels\.com|unsplash\.com|flipkart\.com|fkimg\.com)`)
)

// objectKeys is the probe order for keyed image objects.
var objectKeys = []string{"url", "src", "image_url", "thumbnail", "main_image", "0"}

type Kind int

const (
	KindRawURL Kind = iota
	KindURLList
	KindKeyedObject
)

// A Field is a native image field in one of its known shapes.
type Field struct {
	kind Kind
	raw  string
	list []string
	keys map[string]string
}

func RawURL(s string) Field {
	return Field{kind: KindRawURL, raw: s}
}

func URLList(urls ...string) Field {
	return Field{kind: KindURLList, list: urls}
}

func KeyedObject(m map[string]string) Field {
	return Field{kind: KindKeyedObject, keys: m}
}

func (f Field) Kind() Kind {
	return f.kind
}

// Decode inspects a raw column value. JSON arrays and objects become
// URL lists and keyed objects. Anything else is taken as a raw URL.
func Decode(raw string) Field {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return RawURL("")
	}

	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return RawURL(trimmed)
	}

	switch t := v.(type) {
	case string:
		return RawURL(t)
	case []any:
		urls := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				urls = append(urls, s)
			}
		}
		return URLList(urls...)
	case map[string]any:
		m := make(map[string]string, len(t))
		for k, e := range t {
			if s, ok := e.(string); ok {
				m[k] = s
			}
		}
		return KeyedObject(m)
	}
	return RawURL(trimmed)
}

func (f Field) candidates() []string {
	switch f.kind {
	case KindURLList:
		return f.list
	case KindKeyedObject:
		var cs []string
		for _, k := range objectKeys {
			if v, ok := f.keys[k]; ok {
				cs = append(cs, v)
			}
		}
		return cs
	}
	return []string{f.raw}
}

// Resolve returns the first valid candidate URL or [Placeholder].
func Resolve(f Field) string {
	for _, c := range f.candidates() {
		c = strings.TrimSpace(c)
		if Valid(c) {
			return c
		}
	}
	return Placeholder
}

// Valid reports whether s is an absolute http(s) URL that points to an
// image file or to a known image host.
func Valid(s string) bool {
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return false
	}
	return imageExt.MatchString(u.Path) || imageHost.MatchString(u.Host)
}
