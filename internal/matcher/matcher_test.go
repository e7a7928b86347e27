package matcher_test

import (
	"reflect"
	"testing"

	"github.com/nikhilbhat/eventformatter/internal/matcher"
	"github.com/nikhilbhat/eventformatter/internal/render"
)

func compile(t *testing.T, spec matcher.Spec) *matcher.Matcher {
	t.Helper()
	m, err := matcher.Compile(spec, render.New())
	if err != nil {
		t.Fatalf("Compile(%+v): %v", spec, err)
	}
	return m
}

func TestApplyNumericAndNamedCaptures(t *testing.T) {
	m := compile(t, matcher.Spec{
		Regexp: `^(?P<time>\d\d:\d\d [AP]M) (?P<zone>[A-Z]+)`,
		Path:   "{{date.pretty}}",
		To:     "parsed",
	})

	ev := map[string]interface{}{
		"date": map[string]interface{}{"pretty": "10:00 PM EST on January 11, 2013"},
	}
	ev, matched := m.Apply(ev)
	if !matched {
		t.Fatal("expected a match")
	}

	got, ok := ev["parsed"].(map[string]interface{})
	if !ok {
		t.Fatalf("parsed = %#v, want a mapping", ev["parsed"])
	}
	want := map[string]interface{}{
		"0":    "10:00 PM EST",
		"1":    "10:00 PM",
		"2":    "EST",
		"time": "10:00 PM",
		"zone": "EST",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("captures = %#v, want %#v", got, want)
	}
}

func TestApplyPrettyDateExample(t *testing.T) {
	m := compile(t, matcher.Spec{
		Regexp: `^(\d\d:\d\d [AP]M [A-Z]+)`,
		Path:   "{{date.pretty}}",
		To:     "pretty_date",
	})

	ev := map[string]interface{}{
		"date": map[string]interface{}{"pretty": "10:00 PM EST on January 11, 2013"},
	}
	ev, _ = m.Apply(ev)

	want := map[string]interface{}{"0": "10:00 PM EST", "1": "10:00 PM EST"}
	if !reflect.DeepEqual(ev["pretty_date"], want) {
		t.Errorf("pretty_date = %#v, want %#v", ev["pretty_date"], want)
	}
}

func TestApplyTopLevelMerge(t *testing.T) {
	// Without a target field, captures merge at top level and win on conflict.
	m := compile(t, matcher.Spec{
		Regexp: `(?P<word>\w+)`,
		Path:   "{{text}}",
	})

	ev := map[string]interface{}{
		"text":  "hello world",
		"word":  "stale",
		"other": "kept",
	}
	ev, _ = m.Apply(ev)

	if ev["word"] != "hello" {
		t.Errorf("word = %v, want captured value to overwrite", ev["word"])
	}
	if ev["0"] != "hello" {
		t.Errorf("key 0 = %v, want full match", ev["0"])
	}
	if ev["other"] != "kept" {
		t.Errorf("other = %v, unrelated keys must be preserved", ev["other"])
	}
}

func TestApplyTargetField(t *testing.T) {
	tests := []struct {
		name     string
		existing interface{}
		want     map[string]interface{}
	}{
		{
			name:     "merges into existing mapping, captures win",
			existing: map[string]interface{}{"0": "stale", "note": "kept"},
			want:     map[string]interface{}{"0": "abc", "1": "abc", "note": "kept"},
		},
		{
			name:     "replaces non-mapping wholesale",
			existing: "just a string",
			want:     map[string]interface{}{"0": "abc", "1": "abc"},
		},
		{
			name:     "creates missing field",
			existing: nil,
			want:     map[string]interface{}{"0": "abc", "1": "abc"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := compile(t, matcher.Spec{Regexp: `(abc)`, Path: "{{text}}", To: "out"})
			ev := map[string]interface{}{"text": "xx abc yy"}
			if tt.existing != nil {
				ev["out"] = tt.existing
			}
			ev, _ = m.Apply(ev)
			if !reflect.DeepEqual(ev["out"], tt.want) {
				t.Errorf("out = %#v, want %#v", ev["out"], tt.want)
			}
		})
	}
}

func TestApplyNoOp(t *testing.T) {
	tests := []struct {
		name string
		spec matcher.Spec
		ev   map[string]interface{}
	}{
		{
			name: "regex does not match",
			spec: matcher.Spec{Regexp: `\d{10}`, Path: "{{text}}", To: "out"},
			ev:   map[string]interface{}{"text": "no digits here"},
		},
		{
			name: "path field absent",
			spec: matcher.Spec{Regexp: `\d+`, Path: "{{missing.field}}", To: "out"},
			ev:   map[string]interface{}{"text": "42"},
		},
		{
			name: "path resolves to a mapping",
			spec: matcher.Spec{Regexp: `\d+`, Path: "{{nested}}", To: "out"},
			ev:   map[string]interface{}{"nested": map[string]interface{}{"a": 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := compile(t, tt.spec)
			before := len(tt.ev)
			ev, matched := m.Apply(tt.ev)
			if matched {
				t.Fatal("expected no match")
			}
			if _, ok := ev["out"]; ok {
				t.Error("no-op matcher must not inject")
			}
			if len(ev) != before {
				t.Errorf("event size changed %d → %d", before, len(ev))
			}
		})
	}
}

func TestCompileRejectsBadRegexp(t *testing.T) {
	_, err := matcher.Compile(matcher.Spec{Regexp: `(unclosed`, Path: "{{x}}"}, render.New())
	if err == nil {
		t.Fatal("expected compile error")
	}
}

func TestChainOrderMatters(t *testing.T) {
	r := render.New()
	a := matcher.Spec{Regexp: `(first)`, Path: "{{text}}", To: "result"}
	b := matcher.Spec{Regexp: `(?P<extra>second)`, Path: "{{text}}", To: "result"}

	run := func(specs []matcher.Spec) map[string]interface{} {
		chain, err := matcher.CompileChain(specs, r)
		if err != nil {
			t.Fatalf("CompileChain: %v", err)
		}
		return chain.Run(map[string]interface{}{"text": "first second"})
	}

	ab := run([]matcher.Spec{a, b})["result"].(map[string]interface{})
	ba := run([]matcher.Spec{b, a})["result"].(map[string]interface{})

	// Both orders matched; the later matcher's "0" must win.
	if ab["0"] != "second" {
		t.Errorf("a,b: key 0 = %v, want second matcher's match", ab["0"])
	}
	if ba["0"] != "first" {
		t.Errorf("b,a: key 0 = %v, want later matcher's match", ba["0"])
	}
	if reflect.DeepEqual(ab, ba) {
		t.Error("swapping matcher order must change the result")
	}
}

func TestChainLaterSeesEarlierInjections(t *testing.T) {
	r := render.New()
	chain, err := matcher.CompileChain([]matcher.Spec{
		{Regexp: `(?P<city>\w+)$`, Path: "{{address}}"},
		{Regexp: `^(?P<initial>\w)`, Path: "{{city}}", To: "derived"},
	}, r)
	if err != nil {
		t.Fatalf("CompileChain: %v", err)
	}

	ev := chain.Run(map[string]interface{}{"address": "12 Main St Springfield"})
	derived, ok := ev["derived"].(map[string]interface{})
	if !ok {
		t.Fatalf("derived = %#v, want a mapping", ev["derived"])
	}
	if derived["initial"] != "S" {
		t.Errorf("initial = %v, want S (second matcher reads first matcher's output)", derived["initial"])
	}
}

func TestEmptyChainIsIdentity(t *testing.T) {
	ev := map[string]interface{}{"a": 1.0, "b": "two"}
	got := matcher.Chain(nil).Run(ev)
	if !reflect.DeepEqual(got, map[string]interface{}{"a": 1.0, "b": "two"}) {
		t.Errorf("empty chain changed the event: %#v", got)
	}
}
