package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "formatter.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validYAML = `
version: v1
sink:
  type: stdout
formatter:
  mode: merge
  instructions:
    message: "{{conditions}}"
  matchers:
    - regexp: '^(\d\d:\d\d [AP]M [A-Z]+)'
      path: "{{date.pretty}}"
      to: pretty_date
`

func TestLoaderDefaults(t *testing.T) {
	l, err := NewLoader(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	cfg := l.Config()
	if cfg.Engine.Workers != 16 || cfg.Engine.QueueDepth != 4096 || cfg.Engine.EventTimeoutMs != 5000 {
		t.Errorf("defaults not applied: %+v", cfg.Engine)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestLoaderRejectsMissingFile(t *testing.T) {
	if _, err := NewLoader(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoaderReload(t *testing.T) {
	path := writeConfig(t, validYAML)
	l, err := NewLoader(path)
	if err != nil {
		t.Fatal(err)
	}

	var seen *Config
	l.OnChange(func(c *Config) { seen = c })

	updated := strings.Replace(validYAML, "version: v1", "version: v2", 1)
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := l.Reload()
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if cfg.Version != "v2" {
		t.Errorf("version = %q, want v2", cfg.Version)
	}
	if seen == nil || seen.Version != "v2" {
		t.Error("OnChange callback not invoked with new config")
	}
}

func TestProblems(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want []string
	}{
		{
			name: "missing everything",
			cfg:  Config{},
			want: []string{"version is required", "formatter section is required"},
		},
		{
			name: "formatter errors surfaced",
			cfg: Config{
				Version:   "v1",
				Formatter: map[string]interface{}{"mode": "clean"},
			},
			want: []string{"formatter: instructions is required"},
		},
		{
			name: "redis sink needs addr",
			cfg: Config{
				Version: "v1",
				Sink:    SinkConf{Type: "redis"},
				Formatter: map[string]interface{}{
					"mode":         "clean",
					"instructions": map[string]interface{}{"m": "{{x}}"},
				},
			},
			want: []string{"redis sink requires an addr"},
		},
		{
			name: "unknown sink type",
			cfg: Config{
				Version: "v1",
				Sink:    SinkConf{Type: "kafka"},
				Formatter: map[string]interface{}{
					"mode":         "clean",
					"instructions": map[string]interface{}{"m": "{{x}}"},
				},
			},
			want: []string{`unknown type "kafka"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Problems(&tt.cfg)
			if len(errs) != len(tt.want) {
				t.Fatalf("got %d problems %q, want %d", len(errs), errs, len(tt.want))
			}
			for _, want := range tt.want {
				found := false
				for _, e := range errs {
					if strings.Contains(e, want) {
						found = true
					}
				}
				if !found {
					t.Errorf("missing problem containing %q in %q", want, errs)
				}
			}
		})
	}
}
