package vks

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseAppConfig(t *testing.T) {
	cfg, err := ParseAppConfig([]byte(`
name: demo
engine_name: vks
version:
  major: 1
  minor: 2
  patch: 3
layers:
  - VK_LAYER_KHRONOS_validation
extensions:
  - VK_KHR_swapchain
debug: true
`))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Name != "demo" || cfg.EngineName != "vks" {
		t.Errorf("unexpected names %q %q", cfg.Name, cfg.EngineName)
	}
	if cfg.Version.Major != 1 || cfg.Version.Minor != 2 || cfg.Version.Patch != 3 {
		t.Errorf("unexpected version %+v", cfg.Version)
	}

	app := cfg.App()
	if app.Name != "demo" {
		t.Errorf("app name %q", app.Name)
	}
	if len(app.EnabledLayers) == 0 {
		t.Error("config layers not carried into app")
	}
	if len(app.EnabledExtensions) == 0 {
		t.Error("config extensions not carried into app")
	}
}

func TestParseAppConfigRequiresName(t *testing.T) {
	if _, err := ParseAppConfig([]byte("debug: true\n")); err == nil {
		t.Error("config without a name should be rejected")
	}
}

func TestParseAppConfigRejectsBadYAML(t *testing.T) {
	if _, err := ParseAppConfig([]byte("name: [unclosed")); err == nil {
		t.Error("malformed yaml should be rejected")
	}
}

func TestLoadAppConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	if err := os.WriteFile(path, []byte("name: ondisk\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "ondisk" {
		t.Errorf("unexpected name %q", cfg.Name)
	}

	if _, err := LoadAppConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should be an error")
	}
}
