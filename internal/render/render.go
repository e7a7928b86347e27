package render

import (
	"fmt"
	"strings"
	"sync"
)

// Renderer interpolates template strings against a nested mapping.
//
// Template syntax: literal text with {{ path.to.field }} placeholders.
// A placeholder may pipe its value through named filters, optionally with
// a quoted argument:
//
//	{{ created_at | date:"2006-01-02" }}
//	{{ query | uri_escape }}
//
// Compiled templates are cached by source string. Rendering is pure and
// safe for concurrent use.
type Renderer struct {
	mu      sync.RWMutex
	cache   map[string]*Template
	filters map[string]Filter
}

// Filter transforms a resolved value. arg is the optional quoted argument
// from the template ("" when none was given).
type Filter func(v interface{}, arg string) (interface{}, error)

// New creates a Renderer with the built-in filter set registered.
func New() *Renderer {
	r := &Renderer{
		cache:   make(map[string]*Template),
		filters: make(map[string]Filter),
	}
	registerBuiltins(r)
	return r
}

// RegisterFilter adds a named filter. Panics on duplicate name to surface
// misconfiguration early.
func (r *Renderer) RegisterFilter(name string, f Filter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.filters[name]; exists {
		panic(fmt.Sprintf("render: duplicate filter %q", name))
	}
	r.filters[name] = f
}

// Render compiles (or fetches from cache) and executes a template.
func (r *Renderer) Render(source string, scope map[string]interface{}) (string, error) {
	t, err := r.Compile(source)
	if err != nil {
		return "", err
	}
	return t.Render(scope)
}

// Compile parses a template and caches the result. Filter names are
// resolved at render time, not here: an unknown filter is a per-render
// error rather than a compile error.
func (r *Renderer) Compile(source string) (*Template, error) {
	r.mu.RLock()
	t, ok := r.cache[source]
	r.mu.RUnlock()
	if ok {
		return t, nil
	}

	segs, err := parse(source)
	if err != nil {
		return nil, fmt.Errorf("render: parse %q: %w", source, err)
	}
	t = &Template{source: source, segments: segs, renderer: r}

	r.mu.Lock()
	r.cache[source] = t
	r.mu.Unlock()
	return t, nil
}

func (r *Renderer) filter(name string) (Filter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.filters[name]
	return f, ok
}

// Template is a parsed template bound to its Renderer.
type Template struct {
	source   string
	segments []segment
	renderer *Renderer
}

// Source returns the original template string.
func (t *Template) Source() string { return t.source }

// Render executes the template against scope. A placeholder whose path is
// absent from the scope renders as the empty string; an unknown filter or
// a filter failure aborts with an error.
func (t *Template) Render(scope map[string]interface{}) (string, error) {
	var b strings.Builder
	for _, seg := range t.segments {
		if seg.literal != "" || len(seg.path) == 0 {
			b.WriteString(seg.literal)
			continue
		}
		v, _ := Resolve(scope, seg.path)
		for _, fc := range seg.filters {
			f, ok := t.renderer.filter(fc.name)
			if !ok {
				return "", fmt.Errorf("render: unknown filter %q in %q", fc.name, t.source)
			}
			out, err := f(v, fc.arg)
			if err != nil {
				return "", fmt.Errorf("render: filter %q in %q: %w", fc.name, t.source, err)
			}
			v = out
		}
		b.WriteString(Stringify(v))
	}
	return b.String(), nil
}

// Resolve walks a dot-separated path into nested string-keyed mappings.
func Resolve(scope map[string]interface{}, path []string) (interface{}, bool) {
	if len(path) == 0 {
		return nil, false
	}
	v, ok := scope[path[0]]
	if !ok {
		return nil, false
	}
	if len(path) == 1 {
		return v, true
	}
	switch sub := v.(type) {
	case map[string]interface{}:
		return Resolve(sub, path[1:])
	case map[string]string:
		m := make(map[string]interface{}, len(sub))
		for k, s := range sub {
			m[k] = s
		}
		return Resolve(m, path[1:])
	}
	return nil, false
}

// segment is either a literal run or one placeholder.
type segment struct {
	literal string
	path    []string
	filters []filterCall
}

type filterCall struct {
	name string
	arg  string
}

func parse(source string) ([]segment, error) {
	var segs []segment
	rest := source
	for {
		open := strings.Index(rest, "{{")
		if open < 0 {
			if rest != "" {
				segs = append(segs, segment{literal: rest})
			}
			return segs, nil
		}
		if open > 0 {
			segs = append(segs, segment{literal: rest[:open]})
		}
		end := strings.Index(rest[open:], "}}")
		if end < 0 {
			return nil, fmt.Errorf("unterminated placeholder")
		}
		inner := rest[open+2 : open+end]
		seg, err := parsePlaceholder(inner)
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg)
		rest = rest[open+end+2:]
	}
}

func parsePlaceholder(inner string) (segment, error) {
	parts := splitPipes(inner)
	pathExpr := strings.TrimSpace(parts[0])
	if pathExpr == "" {
		return segment{}, fmt.Errorf("empty placeholder")
	}
	seg := segment{path: strings.Split(pathExpr, ".")}
	for _, p := range parts[1:] {
		fc, err := parseFilter(strings.TrimSpace(p))
		if err != nil {
			return segment{}, err
		}
		seg.filters = append(seg.filters, fc)
	}
	return seg, nil
}

// splitPipes splits on '|' outside of quoted strings.
func splitPipes(s string) []string {
	var parts []string
	start := 0
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuote = !inQuote
		case '|':
			if !inQuote {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

func parseFilter(s string) (filterCall, error) {
	if s == "" {
		return filterCall{}, fmt.Errorf("empty filter")
	}
	colon := strings.IndexByte(s, ':')
	if colon < 0 {
		return filterCall{name: s}, nil
	}
	name := strings.TrimSpace(s[:colon])
	arg := strings.TrimSpace(s[colon+1:])
	if len(arg) < 2 || arg[0] != '"' || arg[len(arg)-1] != '"' {
		return filterCall{}, fmt.Errorf("filter %q: argument must be double-quoted", name)
	}
	return filterCall{name: name, arg: arg[1 : len(arg)-1]}, nil
}
