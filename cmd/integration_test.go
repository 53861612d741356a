package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags clears values and Changed state that persist across invocations.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command with args and returns stdout.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

func execCmd(args ...string) (string, error) {
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("LOG_LEVEL", "error")
	return home
}

func writeHealthCSV(t *testing.T, dir string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("country,year,numeric_col\n")
	for i := 19; i >= 0; i-- {
		country := "Chad"
		if i%2 == 1 {
			country = "Peru"
		}
		fmt.Fprintf(&b, "%s,%d,%.1f\n", country, 2000+i, float64(i)+0.5)
	}
	p := filepath.Join(dir, "world_health_data.csv")
	if err := os.WriteFile(p, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return p
}

func TestCLI_ExploreRendersPage(t *testing.T) {
	home := isolateHome(t)
	path := writeHealthCSV(t, home)

	out := runCmd(t, "explore", path)
	for _, want := range []string{
		"# 🌍 Global Health Explorer",
		"### ✅ Loaded 20 rows × 3 columns",
		"## 🔍 Preview: First 10 Rows",
		"### Filtering and plotting on: `numeric_col`",
		"🎚️ Minimum `numeric_col` Filter: **10.0**",
		"### Filtered View: numeric_col > 10.0",
		"📈 Numeric Col Over Time",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCLI_ExploreThresholdChange(t *testing.T) {
	home := isolateHome(t)
	path := writeHealthCSV(t, home)

	out := runCmd(t, "explore", path, "--threshold", "15")
	first := strings.Index(out, "### Filtered View: numeric_col > 10.0")
	second := strings.Index(out, "### Filtered View: numeric_col > 15.0")
	if first < 0 || second < first {
		t.Fatalf("expected initial view then threshold view:\n%s", out)
	}
}

func TestCLI_ExploreMissingFileIsDisplayed(t *testing.T) {
	home := isolateHome(t)

	out := runCmd(t, "explore", filepath.Join(home, "nope.csv"))
	if !strings.Contains(out, "### ❌ Error loading or processing CSV") {
		t.Fatalf("expected error heading:\n%s", out)
	}
	if strings.Contains(out, "Filtered View") {
		t.Fatalf("no filtered view expected after a load error:\n%s", out)
	}
}

func TestCLI_ExploreWritesOutputAndFigures(t *testing.T) {
	home := isolateHome(t)
	path := writeHealthCSV(t, home)
	outPath := filepath.Join(home, "out", "page.md")
	plotDir := filepath.Join(home, "plots")

	out := runCmd(t, "explore", path, "--output", outPath, "--plot-dir", plotDir)
	if !strings.Contains(out, "✓ Wrote page to "+outPath) {
		t.Fatalf("missing confirmation:\n%s", out)
	}
	page, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	if !strings.Contains(string(page), "### Filtered View: numeric_col > 10.0") {
		t.Fatalf("page file incomplete:\n%s", page)
	}
	b, err := os.ReadFile(filepath.Join(plotDir, "figure-01.json"))
	if err != nil {
		t.Fatalf("read figure: %v", err)
	}
	var fig struct {
		Data []struct {
			Name string `json:"name"`
			Mode string `json:"mode"`
		} `json:"data"`
	}
	if err := json.Unmarshal(b, &fig); err != nil {
		t.Fatalf("figure json: %v", err)
	}
	if len(fig.Data) != 2 || fig.Data[0].Mode != "markers" {
		t.Fatalf("unexpected figure: %+v", fig)
	}
}

func TestCLI_ExploreCustomColumns(t *testing.T) {
	home := isolateHome(t)
	path := filepath.Join(home, "data.csv")
	if err := os.WriteFile(path, []byte("region;period;rate\nA;1;1,5\nB;2;2,5\nA;3;3,5\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := runCmd(t, "explore", path, "--delimiter", ";", "--decimal", "comma", "--x", "period", "--color", "region")
	if !strings.Contains(out, "### Filtering and plotting on: `rate`") {
		t.Fatalf("expected rate to be selected:\n%s", out)
	}
	if !strings.Contains(out, "### Filtered View: rate > 2.5") || !strings.Contains(out, "📈 Rate Over Time") {
		t.Fatalf("expected plot for rate:\n%s", out)
	}
}

func TestCLI_ExploreRejectsBadDelimiter(t *testing.T) {
	home := isolateHome(t)
	path := writeHealthCSV(t, home)
	if _, err := execCmd("explore", path, "--delimiter", "#"); err == nil {
		t.Fatalf("expected error for unsupported delimiter")
	}
}

func TestCLI_DescribeOnly(t *testing.T) {
	home := isolateHome(t)
	path := writeHealthCSV(t, home)

	out := runCmd(t, "describe", path, "--preview-rows", "3")
	if !strings.Contains(out, "## 🔍 Preview: First 3 Rows") || !strings.Contains(out, "| numeric_col | float64 |") {
		t.Fatalf("unexpected describe output:\n%s", out)
	}
	if strings.Contains(out, "Filtering and plotting") {
		t.Fatalf("describe should not select a column:\n%s", out)
	}
	if _, err := execCmd("describe", filepath.Join(home, "missing.csv")); err == nil {
		t.Fatalf("expected load error from describe")
	}
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	home := isolateHome(t)

	runCmd(t, "config", "set", "preview_rows", "5")
	runCmd(t, "config", "set", "color_column", "region")
	if _, err := os.Stat(filepath.Join(home, ".healthscope", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	out := runCmd(t, "config", "show")
	if !strings.Contains(out, "preview_rows: 5") || !strings.Contains(out, "color_column: region") {
		t.Fatalf("unexpected config show:\n%s", out)
	}
	if _, err := execCmd("config", "set", "preview_rows", "zero"); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := execCmd("config", "set", "api_key", "x"); err == nil {
		t.Fatalf("expected unknown key error")
	}
}
