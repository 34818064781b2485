package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    func(c *Config)
		wantErr bool
	}{
		{"empty document keeps defaults", "", func(*Config) {}, false},
		{
			"overrides",
			"load_base: 0\nmax_line: 120\nbytes_per_row: 8\nmax_symbols: 500\n",
			func(c *Config) {
				c.LoadBase = 0
				c.MaxLine = 120
				c.BytesPerRow = 8
				c.MaxSymbols = 500
			},
			false,
		},
		{"suffixes", "source_suffix: .s\nobject_suffix: .obj\n", func(c *Config) {
			c.SourceSuffix = ".s"
			c.ObjectSuffix = ".obj"
		}, false},
		{"bad yaml", "load_base: [", nil, true},
		{"zero line", "max_line: 0\n", nil, true},
		{"negative base", "load_base: -4\n", nil, true},
		{"zero row", "bytes_per_row: 0\n", nil, true},
		{"negative limit", "max_image_bytes: -1\n", nil, true},
		{"empty suffix", "source_suffix: \"\"\n", nil, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse([]byte(tc.yaml))
			if (err != nil) != tc.wantErr {
				t.Fatalf("Parse error = %v, wantErr %v", err, tc.wantErr)
			}
			if tc.wantErr {
				return
			}
			want := Default()
			tc.want(&want)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Parse mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "masm.yaml")
	if err := os.WriteFile(path, []byte("max_label: 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxLabel != 8 || cfg.LoadBase != 100 {
		t.Errorf("Load = %+v", cfg)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("Load of a missing file succeeded")
	}
}
