package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nikolliervin/code-unc/internal/config"
	"github.com/nikolliervin/code-unc/internal/diff"
	"github.com/nikolliervin/code-unc/internal/model"
)

const cliTestDiff = `diff --git a/main.go b/main.go
index 1111111..2222222 100644
--- a/main.go
+++ b/main.go
@@ -1,1 +1,2 @@
 package main
+var x = 1
diff --git a/server.pem b/server.pem
index 3333333..4444444 100644
--- a/server.pem
+++ b/server.pem
@@ -1,1 +1,2 @@
 cert
+more cert
`

func TestReviewCommandAlias(t *testing.T) {
	if !reviewCmd.HasAlias("run-review") {
		t.Error("review should be reachable as run-review")
	}
}

func TestFocusFlagIsRepeatable(t *testing.T) {
	f := reviewCmd.Flags().Lookup("focus")
	if f == nil {
		t.Fatal("missing --focus")
	}
	if f.Value.Type() != "stringSlice" {
		t.Errorf("--focus type = %q, want stringSlice", f.Value.Type())
	}
}

func TestBuildRequestFirstFocusWins(t *testing.T) {
	if err := reviewCmd.Flags().Set("focus", "security"); err != nil {
		t.Fatal(err)
	}
	if err := reviewCmd.Flags().Set("focus", "performance"); err != nil {
		t.Fatal(err)
	}

	req, err := buildRequest(reviewCmd, config.Default())
	if err != nil {
		t.Fatal(err)
	}
	if req.Focus != model.FocusSecurity {
		t.Errorf("focus = %q, want the first value", req.Focus)
	}
}

func TestDropSensitive(t *testing.T) {
	ds, err := diff.Parse(cliTestDiff)
	if err != nil {
		t.Fatal(err)
	}
	if len(ds.Files) != 2 {
		t.Fatalf("files = %d, want 2", len(ds.Files))
	}

	dropSensitive(ds, config.Default().Review.SensitivePatterns)

	if len(ds.Files) != 1 || ds.Files[0].Name() != "main.go" {
		t.Errorf("files after drop = %+v", ds.Paths())
	}
}

func TestDropSensitiveNoPatterns(t *testing.T) {
	ds, err := diff.Parse(cliTestDiff)
	if err != nil {
		t.Fatal(err)
	}
	dropSensitive(ds, nil)
	if len(ds.Files) != 2 {
		t.Errorf("files = %d, want all kept", len(ds.Files))
	}
}

func TestWriteReportIntoDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := reviewCmd.Flags().Set("format", "json"); err != nil {
		t.Fatal(err)
	}
	if err := reviewCmd.Flags().Set("output", dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		reviewCmd.Flags().Set("format", "")
		reviewCmd.Flags().Set("output", "")
	})

	res := &model.ReviewResult{ID: "11112222-3333-4444-5555-666677778888", Status: model.StatusCompleted}
	res.ComputeMetrics()

	if err := writeReport(reviewCmd, config.Default(), res); err != nil {
		t.Fatal(err)
	}

	want := filepath.Join(dir, "review-11112222.json")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("report file not written: %v", err)
	}
}
