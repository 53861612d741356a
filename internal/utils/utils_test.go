package utils_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/healthscope/internal/utils"
)

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		limit int
		want  string
	}{
		{"short", 10, "short"},
		{strings.Repeat("a", 100), 80, strings.Repeat("a", 77) + "..."},
		{"héllo wörld", 8, "héllo..."},
		{"abc", 0, ""},
		{"abcdef", 2, "ab"},
	}
	for _, c := range cases {
		if got := utils.Truncate(c.in, c.limit); got != c.want {
			t.Errorf("Truncate(%q,%d) = %q, want %q", c.in, c.limit, got, c.want)
		}
	}
}

func TestSafeWriteFileCreatesDir(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "fig.json")
	b, err := utils.PrettyJSON(map[string]int{"a": 1})
	if err != nil {
		t.Fatalf("PrettyJSON: %v", err)
	}
	if err := utils.SafeWriteFile(p, b); err != nil {
		t.Fatalf("SafeWriteFile: %v", err)
	}
	got, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "{\n  \"a\": 1\n}" {
		t.Fatalf("content = %q", got)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}
