package matcher

import (
	"fmt"
	"regexp"

	"github.com/nikhilbhat/eventformatter/internal/metrics"
	"github.com/nikhilbhat/eventformatter/internal/render"
)

// Spec is one matcher as it appears in configuration.
type Spec struct {
	Regexp string `yaml:"regexp" json:"regexp"`
	Path   string `yaml:"path" json:"path"`
	To     string `yaml:"to,omitempty" json:"to,omitempty"`
}

// Matcher extracts regex captures from one field of a working event and
// injects them back into it. It is stateless once compiled and safe for
// concurrent use across events.
type Matcher struct {
	re   *regexp.Regexp
	path *render.Template
	to   string
}

// Compile builds a Matcher from its spec. The regexp must compile and the
// path template must parse; a Spec that passed validation never fails here.
func Compile(s Spec, r *render.Renderer) (*Matcher, error) {
	re, err := regexp.Compile(s.Regexp)
	if err != nil {
		return nil, fmt.Errorf("matcher: regexp %q: %w", s.Regexp, err)
	}
	path, err := r.Compile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("matcher: path %q: %w", s.Path, err)
	}
	return &Matcher{re: re, path: path, to: s.To}, nil
}

// Captures holds the result of one successful regex application: the
// positional groups in order (index 0 is the whole match) and the named
// groups. It is flattened into the generic event mapping only at the
// injection boundary.
type Captures struct {
	Groups []string
	Named  map[string]string
}

// Flatten produces the template-addressable form: numeric-string keys for
// every positional group plus one key per named group.
func (c Captures) Flatten() map[string]interface{} {
	out := make(map[string]interface{}, len(c.Groups)+len(c.Named))
	for i, g := range c.Groups {
		out[fmt.Sprintf("%d", i)] = g
	}
	for name, g := range c.Named {
		out[name] = g
	}
	return out
}

// Apply runs the matcher against the working event and mutates it in place.
// It never fails: an unmatched regex or a path that does not resolve to
// usable text degrades to a no-op so one misconfigured matcher cannot
// abort the event. The second return reports whether captures were injected.
func (m *Matcher) Apply(ev map[string]interface{}) (map[string]interface{}, bool) {
	resolved, err := m.path.Render(ev)
	if err != nil {
		return ev, false
	}
	caps, ok := m.match(resolved)
	if !ok {
		return ev, false
	}
	m.inject(ev, caps.Flatten())
	return ev, true
}

func (m *Matcher) match(s string) (Captures, bool) {
	groups := m.re.FindStringSubmatch(s)
	if groups == nil {
		return Captures{}, false
	}
	caps := Captures{Groups: groups, Named: make(map[string]string)}
	for i, name := range m.re.SubexpNames() {
		if name != "" && i < len(groups) {
			caps.Named[name] = groups[i]
		}
	}
	return caps, true
}

// inject merges flat capture keys into the event. With a target field the
// captures merge into an existing sub-mapping (capture keys win) or replace
// the field wholesale; without one they merge at top level.
func (m *Matcher) inject(ev, flat map[string]interface{}) {
	if m.to == "" {
		for k, v := range flat {
			ev[k] = v
		}
		return
	}
	if existing, ok := ev[m.to].(map[string]interface{}); ok {
		for k, v := range flat {
			existing[k] = v
		}
		return
	}
	ev[m.to] = flat
}

// Chain is an ordered sequence of matchers applied as a left fold: each
// matcher sees the cumulative output of the ones before it. The empty
// chain is the identity.
type Chain []*Matcher

// CompileChain compiles all specs in configured order.
func CompileChain(specs []Spec, r *render.Renderer) (Chain, error) {
	chain := make(Chain, 0, len(specs))
	for i, s := range specs {
		m, err := Compile(s, r)
		if err != nil {
			return nil, fmt.Errorf("matchers[%d]: %w", i, err)
		}
		chain = append(chain, m)
	}
	return chain, nil
}

// Run folds the chain over the working event, mutating it in place, and
// returns the accumulated result.
func (c Chain) Run(ev map[string]interface{}) map[string]interface{} {
	for _, m := range c {
		var matched bool
		ev, matched = m.Apply(ev)
		if matched {
			metrics.MatcherSteps.WithLabelValues("matched").Inc()
		} else {
			metrics.MatcherSteps.WithLabelValues("skipped").Inc()
		}
	}
	return ev
}
