package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kilianc/tidos/internal/tidos/compile"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestCollectPaths(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.tidos":                  "",
		"a.go":                     "",
		"views/b.tidos":            "",
		"views/deep/c.tidos":       "",
		"vendor/x/d.tidos":         "",
		".hidden/e.tidos":          "",
		"views/testdata/f.tidos":   "",
		"node_modules/pkg/g.tidos": "",
	})
	rel := func(paths []string) []string {
		var out []string
		for _, p := range paths {
			r, err := filepath.Rel(root, p)
			if err != nil {
				t.Fatal(err)
			}
			out = append(out, filepath.ToSlash(r))
		}
		return out
	}

	cases := []struct {
		patterns []string
		want     []string
	}{
		{patterns: []string{"./..."}, want: []string{"a.tidos", "views/b.tidos", "views/deep/c.tidos"}},
		{patterns: []string{"./views"}, want: []string{"views/b.tidos"}},
		{patterns: []string{"./views/..."}, want: []string{"views/b.tidos", "views/deep/c.tidos"}},
		{patterns: []string{"./a.tidos", "./a.tidos"}, want: []string{"a.tidos"}},
	}
	for _, tc := range cases {
		t.Run(strings.Join(tc.patterns, " "), func(t *testing.T) {
			got, err := collectPaths(root, tc.patterns)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.want, rel(got)); diff != "" {
				t.Errorf("collectPaths mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := collectPaths(root, []string{"./a.go"}); err == nil {
		t.Errorf("expected an error for a non-template file")
	}
}

func TestGenerateFile(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"go.mod":       "module example.com/site\n",
		"page.tidos":   "package site\n\nfunc Hello(name string) string {\n\treturn view!{<p>Hello, {name}!</p>}\n}\n",
		"broken.tidos": "package site\n\nvar s = view!{<p>}\n",
	})
	g := &generator{
		compiler: &compile.Compiler{Root: root},
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	if err := g.generateFile(filepath.Join(root, "page.tidos")); err != nil {
		t.Fatalf("generateFile: %v", err)
	}
	out, err := os.ReadFile(filepath.Join(root, "page.tidos.go"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "tidos.Escape(name)") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if g.written != 1 || g.bytes != uint64(len(out)) {
		t.Errorf("written=%d bytes=%d", g.written, g.bytes)
	}

	// A second run leaves the unchanged file alone.
	if err := g.generateFile(filepath.Join(root, "page.tidos")); err != nil {
		t.Fatal(err)
	}
	if g.written != 1 {
		t.Errorf("unchanged output was rewritten")
	}

	if err := g.generateFile(filepath.Join(root, "broken.tidos")); err == nil {
		t.Errorf("expected an error for a broken template")
	}
	if _, err := os.Stat(filepath.Join(root, "broken.tidos.go")); !os.IsNotExist(err) {
		t.Errorf("broken template produced output")
	}

	found, err := findModuleRoot(filepath.Join(root))
	if err != nil || found != root {
		t.Errorf("findModuleRoot = %q, %v", found, err)
	}
}
