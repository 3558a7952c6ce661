package utils_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"testing"

	"github.com/ginjaninja78/sales-aggregator/pkg/utils"
	"github.com/spf13/afero"
)

func writeFiles(t *testing.T, fs afero.Fs, files map[string]string) {
	t.Helper()
	for path, content := range files {
		if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir %s: %v", path, err)
		}
		if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

func TestDiscoverFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{
		"/sales/00000002.rcd":   "",
		"/sales/00000001.rcd":   "",
		"/sales/00000003.RCD":   "",
		"/sales/0000004.rcd":    "",
		"/sales/00000005.rcd.x": "",
		"/sales/branch.lst":     "",
	})
	if err := fs.MkdirAll("/sales/00000006.rcd", 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	fm := utils.NewFileManager(fs)
	got, err := fm.DiscoverFiles("/sales", regexp.MustCompile(`^[0-9]{8}\.rcd$`))
	if err != nil {
		t.Fatalf("discover: %v", err)
	}

	want := []string{"00000001.rcd", "00000002.rcd"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("discovered %v, want %v", got, want)
	}
}

func TestDiscoverFilesMissingDir(t *testing.T) {
	fm := utils.NewFileManager(afero.NewMemMapFs())
	if _, err := fm.DiscoverFiles("/nowhere", regexp.MustCompile(`.*`)); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestReadLines(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		want    []string
	}{
		{"lf", "001\n1000\n", []string{"001", "1000"}},
		{"no final newline", "001\n1000", []string{"001", "1000"}},
		{"crlf", "001\r\n1000\r\n", []string{"001", "1000"}},
		{"blank trailing line", "001\n1000\n\n", []string{"001", "1000", ""}},
		{"empty", "", nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			writeFiles(t, fs, map[string]string{"/f.rcd": tc.content})

			got, err := utils.NewFileManager(fs).ReadLines("/f.rcd")
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("lines = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestReadLinesMissing(t *testing.T) {
	_, err := utils.NewFileManager(afero.NewMemMapFs()).ReadLines("/missing")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestFileExists(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{"/sales/branch.lst": "x"})
	fm := utils.NewFileManager(fs)

	for path, want := range map[string]bool{
		"/sales/branch.lst":    true,
		"/sales/commodity.lst": false,
		"/sales":               false,
	} {
		got, err := fm.FileExists(path)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		if got != want {
			t.Errorf("FileExists(%s) = %v, want %v", path, got, want)
		}
	}
}

func TestWriteAllStaged(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, map[string]string{"/sales/branch.out": "stale\n"})
	fm := utils.NewFileManager(fs)

	err := fm.WriteAllStaged([]utils.StagedFile{
		{Path: "/sales/branch.out", Data: []byte("001,Sapporo,1000\n")},
		{Path: "/sales/commodity.out", Data: []byte("SFT00001,Software,1000\n")},
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	for path, want := range map[string]string{
		"/sales/branch.out":    "001,Sapporo,1000\n",
		"/sales/commodity.out": "SFT00001,Software,1000\n",
	} {
		got, err := afero.ReadFile(fs, path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		if string(got) != want {
			t.Errorf("%s = %q, want %q", path, got, want)
		}
	}

	assertNoTempFiles(t, fs, "/sales")
}

func TestWriteAllStagedFailureLeavesNothing(t *testing.T) {
	base := afero.NewMemMapFs()
	if err := base.MkdirAll("/sales", 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	fm := utils.NewFileManager(afero.NewReadOnlyFs(base))

	err := fm.WriteAllStaged([]utils.StagedFile{
		{Path: "/sales/branch.out", Data: []byte("001,Sapporo,1000\n")},
	})
	if err == nil {
		t.Fatal("expected error on read-only filesystem")
	}

	if exists, _ := afero.Exists(base, "/sales/branch.out"); exists {
		t.Error("summary written despite failure")
	}
	assertNoTempFiles(t, base, "/sales")
}

func assertNoTempFiles(t *testing.T, fs afero.Fs, dir string) {
	t.Helper()
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
}
