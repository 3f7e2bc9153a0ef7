package lintgate

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func boolPtr(b bool) *bool    { return &b }
func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

func TestNewAppConfig_Defaults(t *testing.T) {
	config := NewAppConfig()

	if *config.Target != "." {
		t.Errorf("Target = %q, want .", *config.Target)
	}
	if *config.VenvPath != "venv" {
		t.Errorf("VenvPath = %q, want venv", *config.VenvPath)
	}
	if len(config.Gate) != 1 || config.Gate[0] != "flake8" {
		t.Errorf("Gate = %v, want [flake8]", config.Gate)
	}
}

func TestAppConfig_Merge(t *testing.T) {
	base := NewAppConfig()
	base.Checkers["flake8"] = CheckerConfig{Enabled: boolPtr(true)}

	overlay := &AppConfig{
		Target:   strPtr("/srv/backend"),
		VenvPath: strPtr(".venv"),
		Gate:     []string{"flake8", "docs"},
		Timeout:  &Duration{Duration: 2 * time.Minute},
		Parallel: &ParallelConfig{MaxWorkers: intPtr(3)},
		Checkers: map[string]CheckerConfig{
			"flake8": {Config: json.RawMessage(`{"maxLineLength": 100}`)},
			"docs":   {Enabled: boolPtr(false)},
		},
	}

	base.Merge(overlay)

	if *base.Target != "/srv/backend" {
		t.Errorf("Target = %q, want /srv/backend", *base.Target)
	}
	if *base.VenvPath != ".venv" {
		t.Errorf("VenvPath = %q, want .venv", *base.VenvPath)
	}
	if len(base.Gate) != 2 {
		t.Errorf("Gate = %v, want two checkers", base.Gate)
	}
	if base.Timeout.Duration != 2*time.Minute {
		t.Errorf("Timeout = %v, want 2m", base.Timeout.Duration)
	}
	if *base.Parallel.MaxWorkers != 3 {
		t.Errorf("MaxWorkers = %d, want 3", *base.Parallel.MaxWorkers)
	}

	// Enabled flag from base survives a config-only overlay.
	flake8Config := base.Checkers["flake8"]
	if flake8Config.Enabled == nil || !*flake8Config.Enabled {
		t.Error("flake8 Enabled lost during merge")
	}
	if flake8Config.Config == nil {
		t.Error("flake8 Config not merged")
	}
}

func TestAppConfig_MergeNil(t *testing.T) {
	config := NewAppConfig()
	config.Merge(nil) // must not panic
	if *config.Target != "." {
		t.Error("Merge(nil) changed the config")
	}
}

func TestAppConfig_IsCheckerEnabled(t *testing.T) {
	config := NewAppConfig()
	config.Checkers["ruff"] = CheckerConfig{Enabled: boolPtr(false)}
	config.Checkers["docs"] = CheckerConfig{Enabled: boolPtr(true)}
	config.Checkers["flake8"] = CheckerConfig{}

	tests := []struct {
		name string
		want bool
	}{
		{"ruff", false},
		{"docs", true},
		{"flake8", true},
		{"unknown", true},
	}

	for _, tt := range tests {
		if got := config.IsCheckerEnabled(tt.name); got != tt.want {
			t.Errorf("IsCheckerEnabled(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestAppConfig_GetCheckerConfig(t *testing.T) {
	config := NewAppConfig()
	config.Checkers["flake8"] = CheckerConfig{Config: json.RawMessage(`{"args": ["-q"]}`)}

	raw, ok := config.GetCheckerConfig("flake8")
	if !ok || raw == nil {
		t.Fatal("GetCheckerConfig(flake8) found nothing")
	}
	if _, ok := config.GetCheckerConfig("missing"); ok {
		t.Error("GetCheckerConfig(missing) = ok, want !ok")
	}
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"duration string", `"90s"`, 90 * time.Second, false},
		{"composite string", `"1m30s"`, 90 * time.Second, false},
		{"nanosecond number", `1000000000`, time.Second, false},
		{"bad string", `"ninety"`, 0, true},
		{"bad type", `[1]`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Unmarshal succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if d.Duration != tt.want {
				t.Errorf("Duration = %v, want %v", d.Duration, tt.want)
			}
		})
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	d := Duration{Duration: 90 * time.Second}
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `"1m30s"` {
		t.Errorf("Marshal = %s, want \"1m30s\"", data)
	}
}
