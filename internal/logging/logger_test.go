package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func resetState() {
	CloseAll()
	loggers = make(map[Category]*Logger)
	logsDir = ""
	workspace = ""
	config = loggingConfig{}
	configLoaded = false
}

// TestAllCategoriesLog tests that all categories create log files when
// debug_mode is true.
func TestAllCategoriesLog(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "logging_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configContent := `
logging:
  debug_mode: true
  level: debug
  categories:
    boot: true
    registry: true
    graph: true
    resolve: true
    engine: true
    watch: true
    export: true
`
	if err := os.WriteFile(filepath.Join(tempDir, "shaderscope.yaml"), []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	resetState()
	defer resetState()

	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}

	if !IsDebugMode() {
		t.Fatal("Expected debug mode to be enabled")
	}

	categories := []Category{
		CategoryBoot, CategoryRegistry, CategoryGraph, CategoryResolve,
		CategoryEngine, CategoryWatch, CategoryExport,
	}

	for _, cat := range categories {
		Get(cat).Info("test message for %s", cat)
	}

	entries, err := os.ReadDir(filepath.Join(tempDir, ".shaderscope", "logs"))
	if err != nil {
		t.Fatalf("Failed to read logs dir: %v", err)
	}

	found := make(map[string]bool)
	for _, e := range entries {
		for _, cat := range categories {
			if strings.HasSuffix(e.Name(), string(cat)+".log") {
				found[string(cat)] = true
			}
		}
	}

	for _, cat := range categories {
		if !found[string(cat)] {
			t.Errorf("No log file created for category %s", cat)
		}
	}
}

// TestNoLogsInProductionMode verifies nothing is written without debug_mode.
func TestNoLogsInProductionMode(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "logging_prod_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	resetState()
	defer resetState()

	// No shaderscope.yaml at all -> production mode.
	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}

	if IsDebugMode() {
		t.Error("Debug mode should be off without config")
	}

	Engine("this should go nowhere")
	GraphWarn("and so should this")

	if _, err := os.Stat(filepath.Join(tempDir, ".shaderscope", "logs")); !os.IsNotExist(err) {
		t.Error("Logs directory should not be created in production mode")
	}
}

// TestCategoryFilter verifies disabled categories stay silent.
func TestCategoryFilter(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "logging_filter_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configContent := `
logging:
  debug_mode: true
  level: debug
  categories:
    graph: true
    watch: false
`
	if err := os.WriteFile(filepath.Join(tempDir, "shaderscope.yaml"), []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	resetState()
	defer resetState()

	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}

	if !IsCategoryEnabled(CategoryGraph) {
		t.Error("graph category should be enabled")
	}
	if IsCategoryEnabled(CategoryWatch) {
		t.Error("watch category should be disabled")
	}
	// Unlisted categories default to enabled in debug mode.
	if !IsCategoryEnabled(CategoryExport) {
		t.Error("unlisted categories should default to enabled")
	}
}

func TestInitializeRequiresWorkspace(t *testing.T) {
	resetState()
	defer resetState()
	if err := Initialize(""); err == nil {
		t.Error("Initialize with empty workspace should fail")
	}
}
