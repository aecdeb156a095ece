package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// UpdateEnv names the environment variable that rewrites golden files.
const UpdateEnv = "GOLDEN_UPDATE"

// Golden compares output against testdata/<name>.golden.
// If UpdateEnv is set, the golden file is rewritten instead.
func Golden(t *testing.T, name string, got []byte) {
	t.Helper()

	path := filepath.Join("testdata", name+".golden")

	if os.Getenv(UpdateEnv) != "" {
		if err := os.MkdirAll("testdata", 0755); err != nil {
			t.Fatalf("failed to create testdata dir: %v", err)
		}
		if err := os.WriteFile(path, got, 0644); err != nil {
			t.Fatalf("failed to update golden file: %v", err)
		}
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read golden file %s: %v\nGot:\n%s", path, err, got)
	}

	if bytes.Equal(got, want) {
		return
	}
	line, w, g := firstDiff(want, got)
	t.Errorf("output mismatch for %s at line %d\nwant: %q\ngot:  %q\n\nFull output:\n%s", name, line, w, g, got)
}

// GoldenString is like Golden but takes a string.
func GoldenString(t *testing.T, name string, got string) {
	t.Helper()
	Golden(t, name, []byte(got))
}

// firstDiff returns the 1-based number of the first differing line and the
// two versions of it. A missing line is reported as empty.
func firstDiff(want, got []byte) (int, string, string) {
	wl := bytes.Split(want, []byte("\n"))
	gl := bytes.Split(got, []byte("\n"))
	for i := 0; i < len(wl) || i < len(gl); i++ {
		var w, g []byte
		if i < len(wl) {
			w = wl[i]
		}
		if i < len(gl) {
			g = gl[i]
		}
		if !bytes.Equal(w, g) {
			return i + 1, string(w), string(g)
		}
	}
	return 0, "", ""
}
