package diff

import "testing"

const testDiff = `diff --git a/main.go b/main.go
index abc1234..def5678 100644
--- a/main.go
+++ b/main.go
@@ -1,5 +1,6 @@
 package main

 func main() {
-	println("hello")
+	println("hello world")
+	println("goodbye")
 }
diff --git a/util.go b/util.go
new file mode 100644
--- /dev/null
+++ b/util.go
@@ -0,0 +1,5 @@
+package main
+
+func add(a, b int) int {
+	return a + b
+}
diff --git a/docs/readme.md b/docs/readme.md
index 1111111..2222222 100644
--- a/docs/readme.md
+++ b/docs/readme.md
@@ -1,2 +1,3 @@
 # readme
+more docs
 end
`

func TestParse(t *testing.T) {
	ds, err := Parse(testDiff)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if len(ds.Files) != 3 {
		t.Fatalf("expected 3 files, got %d", len(ds.Files))
	}

	files, added, deleted := ds.Stats()
	if files != 3 {
		t.Errorf("files = %d, want 3", files)
	}
	if added != 8 {
		t.Errorf("added = %d, want 8", added)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	if ds.Files[0].Path() != "main.go" {
		t.Errorf("first file = %q, want main.go", ds.Files[0].Path())
	}
	if !ds.Files[1].IsNew {
		t.Error("util.go should be marked new")
	}
	if ds.Raw != testDiff {
		t.Error("Raw should preserve the input diff verbatim")
	}
}

func TestParseEmpty(t *testing.T) {
	ds, err := Parse("")
	if err != nil {
		t.Fatalf("Parse(empty): %v", err)
	}
	if len(ds.Files) != 0 {
		t.Errorf("expected no files, got %d", len(ds.Files))
	}
}

func TestHasPath(t *testing.T) {
	ds, err := Parse(testDiff)
	if err != nil {
		t.Fatal(err)
	}
	if !ds.HasPath("main.go") {
		t.Error("HasPath(main.go) = false")
	}
	if !ds.HasPath("docs/readme.md") {
		t.Error("HasPath(docs/readme.md) = false")
	}
	if ds.HasPath("missing.go") {
		t.Error("HasPath(missing.go) = true")
	}
}

func TestChangedRanges(t *testing.T) {
	ds, err := Parse(testDiff)
	if err != nil {
		t.Fatal(err)
	}

	// util.go is all new: lines 1-5.
	util := ds.Files[1]
	if len(util.ChangedRanges) != 1 {
		t.Fatalf("expected 1 changed range, got %d", len(util.ChangedRanges))
	}
	if util.ChangedRanges[0].Start != 1 || util.ChangedRanges[0].End != 5 {
		t.Errorf("range = %d-%d, want 1-5", util.ChangedRanges[0].Start, util.ChangedRanges[0].End)
	}
}

func TestFilter(t *testing.T) {
	ds, err := Parse(testDiff)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("include go files", func(t *testing.T) {
		got := Filter(ds, []string{"*.go"}, nil, 0)
		if len(got.Files) != 2 {
			t.Errorf("expected 2 files, got %d", len(got.Files))
		}
	})

	t.Run("exclude markdown", func(t *testing.T) {
		got := Filter(ds, nil, []string{"*.md"}, 0)
		if len(got.Files) != 2 {
			t.Errorf("expected 2 files, got %d", len(got.Files))
		}
		for _, f := range got.Files {
			if f.Path() == "docs/readme.md" {
				t.Error("readme.md should have been excluded")
			}
		}
	})

	t.Run("exclude by directory pattern", func(t *testing.T) {
		got := Filter(ds, nil, []string{"docs/*"}, 0)
		if len(got.Files) != 2 {
			t.Errorf("expected 2 files, got %d", len(got.Files))
		}
	})

	t.Run("max files", func(t *testing.T) {
		got := Filter(ds, nil, nil, 1)
		if len(got.Files) != 1 {
			t.Errorf("expected 1 file, got %d", len(got.Files))
		}
		if got.Files[0].Path() != "main.go" {
			t.Errorf("first file should survive the cap, got %s", got.Files[0].Path())
		}
	})

	t.Run("no filters is identity", func(t *testing.T) {
		got := Filter(ds, nil, nil, 0)
		if len(got.Files) != 3 {
			t.Errorf("expected 3 files, got %d", len(got.Files))
		}
	})
}

func TestFileName(t *testing.T) {
	f := &File{OldPath: "a.go", NewPath: "b.go", IsRenamed: true}
	if f.Name() != "a.go -> b.go" {
		t.Errorf("Name() = %q", f.Name())
	}
	if f.Basename() != "b.go" {
		t.Errorf("Basename() = %q", f.Basename())
	}
}
