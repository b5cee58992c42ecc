package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reach/internal/api"
	"reach/internal/config"
	"reach/internal/persist"
	"reach/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithRetailTaxonomy())
	homeDir := filepath.Join(testsupport.BaseDir(cfg), "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	configPath := filepath.Join(homeDir, ".config", "reach", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nstate_dir = %q\nlog_dir = %q\ntaxonomy_file = %q\n\n[store]\nwatch_interval_ms = 20\n\n[api]\nbind = %q\n\n[logging]\nlevel = \"error\"\n",
		cfg.Paths.StateDir,
		cfg.Paths.LogDir,
		cfg.Paths.TaxonomyFile,
		cfg.API.Bind,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func mustRunCLI(t *testing.T, env *cliTestEnv, args ...string) string {
	t.Helper()
	out, _, err := runCLI(t, args, env.configPath)
	if err != nil {
		t.Fatalf("reach %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestTaxonomyListings(t *testing.T) {
	env := setupCLITestEnv(t)

	out := mustRunCLI(t, env, "categories")
	requireContains(t, out, "retail")
	requireContains(t, out, "travel")

	out = mustRunCLI(t, env, "subcategories", "retail")
	requireContains(t, out, "gift cards")
	requireContains(t, out, "10,000")

	out = mustRunCLI(t, env, "leaves", "travel", "air_travel")
	requireContains(t, out, "business class")
	requireContains(t, out, "premium")

	out = mustRunCLI(t, env, "leaves", "travel", "nowhere")
	requireContains(t, out, "(none)")

	out = mustRunCLI(t, env, "categories", "--json")
	var list api.OptionList
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		t.Fatalf("decode categories: %v", err)
	}
	if len(list.Options) != 2 {
		t.Fatalf("unexpected categories: %#v", list)
	}
}

func TestSelectionPersistsAcrossInvocations(t *testing.T) {
	env := setupCLITestEnv(t)

	out := mustRunCLI(t, env, "select", "retail")
	requireContains(t, out, "nothing counted yet")

	out = mustRunCLI(t, env, "toggle", "sub", "grocery")
	requireContains(t, out, "dairy")
	requireContains(t, out, "10,000")

	mustRunCLI(t, env, "title", "Dairy", "push")

	out = mustRunCLI(t, env, "show", "--json")
	var sel api.Selection
	if err := json.Unmarshal([]byte(out), &sel); err != nil {
		t.Fatalf("decode show: %v", err)
	}
	if sel.CampaignTitle != "Dairy push" || sel.Count != 10000 || !sel.HasSelections {
		t.Fatalf("unexpected persisted selection: %#v", sel)
	}

	out = mustRunCLI(t, env, "draft")
	var doc map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode draft: %v", err)
	}
	if doc["level1"] != "retail" || doc["capacity"] != 10000.0 {
		t.Fatalf("unexpected draft: %#v", doc)
	}

	out = mustRunCLI(t, env, "toggle", "sub", "gift_cards")
	requireContains(t, out, "10,005")

	out = mustRunCLI(t, env, "toggle", "sub", "grocery")
	requireContains(t, out, "voucher")
	requireContains(t, out, "5 (below threshold)")

	mustRunCLI(t, env, "clear")
	out = mustRunCLI(t, env, "show")
	requireContains(t, out, "nothing counted yet")
	requireContains(t, out, "Ready to submit:")
}

func TestMutationsRefuseWhileLocked(t *testing.T) {
	env := setupCLITestEnv(t)

	lock := persist.NewWriterLock(env.cfg.WriterLockPath())
	if err := os.MkdirAll(env.cfg.Paths.StateDir, 0o755); err != nil {
		t.Fatalf("mkdir state: %v", err)
	}
	if err := lock.Acquire(); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer lock.Release()

	_, _, err := runCLI(t, []string{"select", "retail"}, env.configPath)
	if err == nil {
		t.Fatal("expected select to fail while the writer lock is held")
	}
	requireContains(t, err.Error(), "reach serve")

	// Readers do not need the lock.
	mustRunCLI(t, env, "show")
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out := mustRunCLI(t, env, "config", "validate")
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.configPath)
	requireContains(t, out, "2 categories, 6 sub-categories, 9 leaves, 13,705 reachable")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, env.configPath)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, env.configPath); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}

	args := []string{"config", "init", "--path", target, "--overwrite", "--taxonomy", env.cfg.Paths.TaxonomyFile}
	if _, _, err := runCLI(t, args, env.configPath); err != nil {
		t.Fatalf("config init --taxonomy: %v", err)
	}
	written, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read written config: %v", err)
	}
	requireContains(t, string(written), fmt.Sprintf("taxonomy_file = %q", env.cfg.Paths.TaxonomyFile))
}

func TestConfigValidateReportsBrokenTaxonomy(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteTaxonomyFile(t, env.cfg.Paths.TaxonomyFile, "{not json")

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err == nil {
		t.Fatal("expected validate to fail on an unreadable taxonomy")
	}
	requireContains(t, err.Error(), "taxonomy")
	requireContains(t, out, "[ERROR]")
}

func TestDoctor(t *testing.T) {
	env := setupCLITestEnv(t)
	out := mustRunCLI(t, env, "doctor")
	requireContains(t, out, "State directory")
	requireContains(t, out, "Taxonomy file")
	requireContains(t, out, "Writer lock")
	requireContains(t, out, "Console server")
}

func TestLogsPrintsTrailingLines(t *testing.T) {
	env := setupCLITestEnv(t)
	path := filepath.Join(env.cfg.Paths.LogDir, "reach.log")
	if err := os.MkdirAll(env.cfg.Paths.LogDir, 0o755); err != nil {
		t.Fatalf("mkdir logs: %v", err)
	}
	if err := os.WriteFile(path, []byte("first\nsecond\nthird\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out := mustRunCLI(t, env, "logs", "--lines", "2")
	if strings.Contains(out, "first") {
		t.Fatalf("expected only the last two lines, got %q", out)
	}
	requireContains(t, out, "second\nthird\n")
}
