package core

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestGatewayConfigComplete(t *testing.T) {
	tests := []struct {
		name string
		cfg  GatewayConfig
		want bool
	}{
		{"all fields set", GatewayConfig{BaseURL: "gw.example.com", APIKey: "k", InstanceName: "clinic"}, true},
		{"missing base url", GatewayConfig{APIKey: "k", InstanceName: "clinic"}, false},
		{"missing api key", GatewayConfig{BaseURL: "gw.example.com", InstanceName: "clinic"}, false},
		{"missing instance", GatewayConfig{BaseURL: "gw.example.com", APIKey: "k"}, false},
		{"whitespace only", GatewayConfig{BaseURL: "  ", APIKey: "k", InstanceName: "clinic"}, false},
		{"empty", GatewayConfig{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Complete(); got != tt.want {
				t.Errorf("Complete() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGatewayConfigValidate(t *testing.T) {
	if err := (GatewayConfig{}).Validate(); !errors.Is(err, ErrIncompleteConfig) {
		t.Errorf("Validate on empty config = %v, want ErrIncompleteConfig", err)
	}
	cfg := GatewayConfig{BaseURL: "gw.example.com", APIKey: "k", InstanceName: "clinic"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate on complete config = %v, want nil", err)
	}
}

func TestCategoryForMime(t *testing.T) {
	tests := []struct {
		mime string
		want MediaCategory
	}{
		{"image/jpeg", MediaImage},
		{"image/png", MediaImage},
		{"video/mp4", MediaVideo},
		{"audio/wav", MediaAudio},
		{"audio/ogg", MediaAudio},
		{"application/pdf", MediaDocument},
		{"text/plain", MediaDocument},
		{"", MediaDocument},
	}
	for _, tt := range tests {
		if got := CategoryForMime(tt.mime); got != tt.want {
			t.Errorf("CategoryForMime(%q) = %q, want %q", tt.mime, got, tt.want)
		}
	}
}

func TestLoadPreferencesMissingFile(t *testing.T) {
	prefs, err := LoadPreferences(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if prefs != DefaultPreferences() {
		t.Errorf("prefs = %+v, want defaults", prefs)
	}
}

func TestLoadPreferencesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "logRetentionDays: 30\nmaxImageEdge: 800\nrequestTimeoutSeconds: 15\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	prefs, err := LoadPreferences(path)
	if err != nil {
		t.Fatalf("LoadPreferences returned error: %v", err)
	}
	if prefs.LogRetentionDays != 30 || prefs.MaxImageEdge != 800 || prefs.RequestTimeoutSeconds != 15 {
		t.Errorf("prefs = %+v", prefs)
	}
}

func TestLoadPreferencesClampsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "logRetentionDays: -5\nmaxImageEdge: 0\nrequestTimeoutSeconds: -1\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	prefs, err := LoadPreferences(path)
	if err != nil {
		t.Fatalf("LoadPreferences returned error: %v", err)
	}
	if prefs.LogRetentionDays != 0 {
		t.Errorf("LogRetentionDays = %d, want 0", prefs.LogRetentionDays)
	}
	if prefs.MaxImageEdge != DefaultPreferences().MaxImageEdge {
		t.Errorf("MaxImageEdge = %d, want default", prefs.MaxImageEdge)
	}
	if prefs.RequestTimeoutSeconds != 0 {
		t.Errorf("RequestTimeoutSeconds = %d, want 0", prefs.RequestTimeoutSeconds)
	}
}

func TestLoadPreferencesMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{not yaml: ["), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	prefs, err := LoadPreferences(path)
	if err == nil {
		t.Fatal("malformed file should error")
	}
	if prefs != DefaultPreferences() {
		t.Errorf("prefs on parse error = %+v, want defaults", prefs)
	}
}
