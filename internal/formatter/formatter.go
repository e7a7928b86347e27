package formatter

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/nikhilbhat/eventformatter/internal/event"
	"github.com/nikhilbhat/eventformatter/internal/matcher"
	"github.com/nikhilbhat/eventformatter/internal/render"
)

// Mode is the output composition policy.
type Mode string

const (
	// ModeClean emits only the rendered instructions.
	ModeClean Mode = "clean"
	// ModeMerge overlays the rendered instructions onto a copy of the
	// original payload; instruction keys win on conflict.
	ModeMerge Mode = "merge"
)

// Validate checks a formatter options mapping and returns every violation
// found (empty slice = valid). It runs at configuration time; options that
// fail here must never reach Process.
func Validate(opts map[string]interface{}) []string {
	var errs []string

	instructions, ok := opts["instructions"].(map[string]interface{})
	if !ok || len(instructions) == 0 {
		errs = append(errs, "instructions is required and must be a non-empty mapping")
	} else {
		for key, v := range instructions {
			if _, isStr := v.(string); !isStr {
				errs = append(errs, fmt.Sprintf("instructions.%s: template must be a string", key))
			}
		}
	}

	mode, _ := opts["mode"].(string)
	switch Mode(mode) {
	case ModeClean, ModeMerge:
	case "":
		errs = append(errs, "mode is required")
	default:
		errs = append(errs, fmt.Sprintf("mode must be %q or %q, got %q", ModeClean, ModeMerge, mode))
	}

	raw, present := opts["matchers"]
	if !present {
		return errs
	}
	list, ok := raw.([]interface{})
	if !ok {
		return append(errs, "matchers must be a list")
	}
	for i, elem := range list {
		rec, ok := elem.(map[string]interface{})
		if !ok {
			errs = append(errs, fmt.Sprintf("matchers[%d]: must be a mapping", i))
			continue
		}
		if re, _ := rec["regexp"].(string); re == "" {
			errs = append(errs, fmt.Sprintf("matchers[%d]: regexp is required", i))
		} else if _, err := regexp.Compile(re); err != nil {
			errs = append(errs, fmt.Sprintf("matchers[%d]: regexp does not compile: %s", i, err))
		}
		if path, _ := rec["path"].(string); path == "" {
			errs = append(errs, fmt.Sprintf("matchers[%d]: path is required", i))
		}
		if to, present := rec["to"]; present {
			if _, isStr := to.(string); !isStr {
				errs = append(errs, fmt.Sprintf("matchers[%d]: to must be a string", i))
			}
		}
	}
	return errs
}

// Formatter turns incoming events into formatted output events. It is
// immutable once built: the compiled matcher chain and parsed instruction
// templates are read-only, so one Formatter serves concurrent events.
type Formatter struct {
	mode         Mode
	instructions map[string]*render.Template
	chain        matcher.Chain
}

// New compiles a Formatter from a validated options mapping.
func New(opts map[string]interface{}, r *render.Renderer) (*Formatter, error) {
	if errs := Validate(opts); len(errs) > 0 {
		return nil, fmt.Errorf("formatter options invalid:\n  - %s", strings.Join(errs, "\n  - "))
	}

	rawInstructions := opts["instructions"].(map[string]interface{})
	instructions := make(map[string]*render.Template, len(rawInstructions))
	for key, v := range rawInstructions {
		t, err := r.Compile(v.(string))
		if err != nil {
			return nil, fmt.Errorf("instructions.%s: %w", key, err)
		}
		instructions[key] = t
	}

	var specs []matcher.Spec
	if list, ok := opts["matchers"].([]interface{}); ok {
		for _, elem := range list {
			rec := elem.(map[string]interface{})
			s := matcher.Spec{}
			s.Regexp, _ = rec["regexp"].(string)
			s.Path, _ = rec["path"].(string)
			s.To, _ = rec["to"].(string)
			specs = append(specs, s)
		}
	}
	chain, err := matcher.CompileChain(specs, r)
	if err != nil {
		return nil, err
	}

	return &Formatter{
		mode:         Mode(opts["mode"].(string)),
		instructions: instructions,
		chain:        chain,
	}, nil
}

// Mode returns the output composition policy.
func (f *Formatter) Mode() Mode { return f.mode }

// Process formats one event. It builds the interpolation context (payload
// fields plus the reserved created_at and agent keys), folds the matcher
// chain over it, renders every instruction against the enriched context and
// composes the output per mode. A render failure on any instruction fails
// the whole event: zero or one output, never partial.
func (f *Formatter) Process(ev *event.Event) (event.Output, error) {
	scope := make(map[string]interface{}, len(ev.Payload)+2)
	for k, v := range ev.Payload {
		scope[k] = v
	}
	scope["created_at"] = ev.CreatedAt
	scope["agent"] = ev.Agent.Fields()

	f.chain.Run(scope)

	rendered := make(map[string]interface{}, len(f.instructions))
	for key, tmpl := range f.instructions {
		s, err := tmpl.Render(scope)
		if err != nil {
			return nil, fmt.Errorf("instructions.%s: %w", key, err)
		}
		rendered[key] = s
	}

	var out event.Output
	if f.mode == ModeMerge {
		out = make(event.Output, len(ev.Payload)+len(rendered))
		for k, v := range ev.Payload {
			out[k] = v
		}
	} else {
		out = make(event.Output, len(rendered))
	}
	for k, v := range rendered {
		out[k] = v
	}
	return out, nil
}

// Fields returns the output field names in sorted order.
func (f *Formatter) Fields() []string {
	fields := make([]string, 0, len(f.instructions))
	for key := range f.instructions {
		fields = append(fields, key)
	}
	sort.Strings(fields)
	return fields
}

// Describe produces a human-readable declaration of the output shape,
// derived only from the instruction keys and mode. Used for UI and
// documentation, never for processing.
func (f *Formatter) Describe() string {
	fields := strings.Join(f.Fields(), ", ")
	if f.mode == ModeMerge {
		return fmt.Sprintf("Formatted events will contain the original payload with these fields overlaid: %s.", fields)
	}
	return fmt.Sprintf("Formatted events will contain exactly these fields: %s.", fields)
}
