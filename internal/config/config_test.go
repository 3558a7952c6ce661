package config_test

import (
	"testing"

	"github.com/ginjaninja78/sales-aggregator/internal/config"
	"github.com/spf13/afero"
)

func writeConfig(t *testing.T, fs afero.Fs, content string) string {
	t.Helper()
	path := "/etc/salesagg.yaml"
	if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := config.Default()

	if cfg.Delimiter != "," {
		t.Errorf("delimiter = %q", cfg.Delimiter)
	}
	if cfg.MaxTotalDigits != 10 {
		t.Errorf("max digits = %d", cfg.MaxTotalDigits)
	}
	if cfg.RecordLineCount() != 3 {
		t.Errorf("record line count = %d, want 3", cfg.RecordLineCount())
	}

	dims := cfg.DimensionList()
	if len(dims) != 2 || dims[0].Name != "branch" || dims[1].Name != "commodity" {
		t.Fatalf("unexpected dimensions %+v", dims)
	}
	if !dims[0].CodePattern.MatchString("001") || dims[0].CodePattern.MatchString("0001") {
		t.Error("branch code pattern does not match exactly three digits")
	}
	if !dims[1].CodePattern.MatchString("SFT00001") || dims[1].CodePattern.MatchString("SFT-0001") {
		t.Error("commodity code pattern does not match eight alphanumerics")
	}

	re := cfg.RecordRegexp()
	for name, want := range map[string]bool{
		"00000001.rcd":  true,
		"0000001.rcd":   false,
		"00000001.rcdx": false,
		"00000001.RCD":  false,
		"abcdefgh.rcd":  false,
	} {
		if got := re.MatchString(name); got != want {
			t.Errorf("record pattern on %q = %v, want %v", name, got, want)
		}
	}
}

func TestDimensionListReturnsCopy(t *testing.T) {
	cfg := config.Default()
	dims := cfg.DimensionList()
	dims[0].Name = "changed"

	if cfg.DimensionList()[0].Name != "branch" {
		t.Error("DimensionList exposed internal slice")
	}
}

func TestLoadMainConfigBranchOnly(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := writeConfig(t, fs, `
max_total_digits: 12
log_level: debug
dimensions:
  - name: branch
    definition_file: branch.lst
    code_pattern: "[0-9]{3}"
    summary_file: branch.out
`)

	cfg, err := config.LoadMainConfig(fs, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.RecordLineCount() != 2 {
		t.Errorf("record line count = %d, want 2", cfg.RecordLineCount())
	}
	if cfg.MaxTotalDigits != 12 || cfg.LogLevel != "debug" {
		t.Errorf("unexpected values %+v", cfg)
	}
	if cfg.Delimiter != "," || cfg.LogMode != "development" {
		t.Errorf("defaults not applied: %+v", cfg)
	}

	dim := cfg.DimensionList()[0]
	if dim.Label != "branch" {
		t.Errorf("label default = %q, want branch", dim.Label)
	}
	if dim.CodePattern.MatchString("0012") {
		t.Error("unanchored code pattern was not anchored")
	}
}

func TestLoadMainConfigInvalid(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{"bad yaml", "dimensions: [\n"},
		{"bad record pattern", "record_pattern: \"[0-9\"\n"},
		{"bad log level", "log_level: verbose\n"},
		{"too many digits", "max_total_digits: 31\n"},
		{
			name: "duplicate dimension",
			content: `
dimensions:
  - {name: branch, definition_file: a.lst, code_pattern: "[0-9]{3}", summary_file: a.out}
  - {name: branch, definition_file: b.lst, code_pattern: "[0-9]{3}", summary_file: b.out}
`,
		},
		{
			name: "shared file",
			content: `
dimensions:
  - {name: branch, definition_file: a.lst, code_pattern: "[0-9]{3}", summary_file: a.out}
  - {name: commodity, definition_file: b.lst, code_pattern: "[0-9]{3}", summary_file: a.out}
`,
		},
		{
			name: "summary matches record pattern",
			content: `
dimensions:
  - {name: branch, definition_file: a.lst, code_pattern: "[0-9]{3}", summary_file: 00000001.rcd}
`,
		},
		{
			name: "bad code pattern",
			content: `
dimensions:
  - {name: branch, definition_file: a.lst, code_pattern: "[0-9", summary_file: a.out}
`,
		},
		{
			name: "missing definition file",
			content: `
dimensions:
  - {name: branch, code_pattern: "[0-9]{3}", summary_file: a.out}
`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			path := writeConfig(t, fs, tc.content)
			if _, err := config.LoadMainConfig(fs, path); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	fs := afero.NewMemMapFs()

	cfg, err := config.LoadOrDefault(fs, "/missing.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RecordLineCount() != 3 {
		t.Errorf("expected built-in defaults, got %d dimensions", cfg.RecordLineCount()-1)
	}

	if _, err := config.LoadMainConfig(fs, "/missing.yaml"); err == nil {
		t.Error("LoadMainConfig should fail on a missing file")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	env := map[string]string{
		config.EnvLogMode:  "production",
		config.EnvLogLevel: "warn",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	cfg := config.Default()
	if err := config.ApplyEnvOverrides(cfg, lookup); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.LogMode != "production" || cfg.LogLevel != "warn" {
		t.Errorf("overrides not applied: mode=%q level=%q", cfg.LogMode, cfg.LogLevel)
	}

	env[config.EnvLogLevel] = "loud"
	if err := config.ApplyEnvOverrides(config.Default(), lookup); err == nil {
		t.Error("expected error for invalid level override")
	}
}

func TestApplyEnvOverridesEmptyIgnored(t *testing.T) {
	cfg := config.Default()
	lookup := func(string) (string, bool) { return "", true }

	if err := config.ApplyEnvOverrides(cfg, lookup); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.LogMode != "development" || cfg.LogLevel != "info" {
		t.Errorf("empty overrides changed config: %+v", cfg)
	}
}
