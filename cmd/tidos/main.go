package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/kilianc/tidos/internal/tidos/compile"
	"github.com/kilianc/tidos/internal/tidos/outfile"
	"github.com/kilianc/tidos/internal/tidos/source"
)

const ext = ".tidos"

func main() {
	flag.Usage = func() {
		_, _ = fmt.Fprintln(os.Stderr, "Usage: tidos [flags] [paths...]")
		_, _ = fmt.Fprintln(os.Stderr, "")
		_, _ = fmt.Fprintln(os.Stderr, "Generates one *.tidos.go file next to each *.tidos source.")
		_, _ = fmt.Fprintln(os.Stderr, "")
		_, _ = fmt.Fprintln(os.Stderr, "Paths behave like Go patterns:")
		_, _ = fmt.Fprintln(os.Stderr, "  - ./...        recurse from cwd")
		_, _ = fmt.Fprintln(os.Stderr, "  - ./dir        only that directory (non-recursive)")
		_, _ = fmt.Fprintln(os.Stderr, "  - ./dir/...    recurse from that directory")
		_, _ = fmt.Fprintln(os.Stderr, "  - ./file.tidos only that file")
		flag.PrintDefaults()
	}
	rootFlag := flag.String("root", "", "module root (defaults to auto-detected go.mod parent from cwd)")
	dirFlag := flag.String("dir", "", "if set, only generate for this directory (non-recursive). Useful with go:generate.")
	runtimeFlag := flag.String("runtime", compile.DefaultRuntime, "import path of the runtime package generated code calls into")
	verbose := flag.Bool("v", false, "log every generated file")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cwd, err := os.Getwd()
	if err != nil {
		fatal(err)
	}
	root := *rootFlag
	if root == "" {
		root, err = findModuleRoot(cwd)
		if err != nil {
			fatal(err)
		}
	}
	root, err = filepath.Abs(root)
	if err != nil {
		fatal(err)
	}

	g := &generator{
		compiler: &compile.Compiler{Runtime: *runtimeFlag, Root: root},
		log:      log,
		color:    source.ColorTerminal(os.Stderr),
	}

	if strings.TrimSpace(*dirFlag) != "" && flag.NArg() != 0 {
		fatal(fmt.Errorf("tidos: cannot use -dir with positional paths"))
	}

	var paths []string
	if strings.TrimSpace(*dirFlag) != "" {
		dir := *dirFlag
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(cwd, dir)
		}
		paths, err = collectPaths(cwd, []string{dir})
	} else {
		patterns := flag.Args()
		if len(patterns) == 0 {
			patterns = []string{"./..."}
		}
		paths, err = collectPaths(cwd, patterns)
	}
	if err != nil {
		fatal(err)
	}
	if len(paths) == 0 {
		log.Debug("no template sources found", "cwd", cwd)
		return
	}

	sort.Strings(paths)
	var allErr error
	for _, pth := range paths {
		if err := g.generateFile(pth); err != nil {
			allErr = errors.Join(allErr, err)
		}
	}
	log.Info("done",
		"files", len(paths),
		"written", g.written,
		"bytes", humanize.Bytes(g.bytes),
	)
	if allErr != nil {
		os.Exit(1)
	}
}

func fatal(err error) {
	_, _ = fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

type generator struct {
	compiler *compile.Compiler
	log      *slog.Logger
	color    bool

	written int
	bytes   uint64
}

// generateFile compiles pth and writes its .tidos.go sibling. Template
// errors are printed with the offending line and a caret under it.
func (g *generator) generateFile(pth string) error {
	b, err := os.ReadFile(pth)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return err
	}
	src, err := g.compiler.CompileFile(pth, b)
	if err != nil {
		var se *source.Error
		if errors.As(err, &se) {
			_, _ = fmt.Fprint(os.Stderr, source.Caret(b, se, g.color))
		} else {
			_, _ = fmt.Fprintln(os.Stderr, err)
		}
		return err
	}
	outPath := outfile.OutputPath(pth)
	changed, err := outfile.WriteGeneratedFile(outPath, src)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return err
	}
	g.bytes += uint64(len(src))
	if changed {
		g.written++
	}
	g.log.Debug("generated", "out", outPath, "size", humanize.Bytes(uint64(len(src))), "changed", changed)
	return nil
}

func findModuleRoot(start string) (string, error) {
	d := start
	for {
		if _, err := os.Stat(filepath.Join(d, "go.mod")); err == nil {
			return d, nil
		}
		parent := filepath.Dir(d)
		if parent == d {
			return "", fmt.Errorf("could not find go.mod above %s", start)
		}
		d = parent
	}
}

func collectPaths(cwd string, patterns []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string

	add := func(p string) error {
		abs := p
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(cwd, abs)
		}
		abs, err := filepath.Abs(abs)
		if err != nil {
			return err
		}
		if !seen[abs] {
			seen[abs] = true
			out = append(out, abs)
		}
		return nil
	}

	for _, raw := range patterns {
		pat := strings.TrimSpace(raw)
		if pat == "" {
			continue
		}

		// Recursive pattern: <dir>/...
		if strings.HasSuffix(pat, "/...") || pat == "..." {
			base := strings.TrimSuffix(strings.TrimSuffix(pat, "..."), "/")
			if base == "" {
				base = "."
			}
			if !filepath.IsAbs(base) {
				base = filepath.Join(cwd, base)
			}
			if err := walkSources(base, add); err != nil {
				return nil, err
			}
			continue
		}

		target := pat
		if !filepath.IsAbs(target) {
			target = filepath.Join(cwd, target)
		}
		st, err := os.Stat(target)
		if err != nil {
			return nil, err
		}
		if st.IsDir() {
			entries, err := os.ReadDir(target)
			if err != nil {
				return nil, err
			}
			for _, e := range entries {
				if !e.IsDir() && strings.HasSuffix(e.Name(), ext) {
					if err := add(filepath.Join(target, e.Name())); err != nil {
						return nil, err
					}
				}
			}
			continue
		}
		if !strings.HasSuffix(target, ext) {
			return nil, fmt.Errorf("tidos: not a %s file: %s", ext, target)
		}
		if err := add(target); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func walkSources(root string, add func(string) error) error {
	return filepath.WalkDir(root, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if de.IsDir() {
			name := de.Name()
			if path != root && (name == "vendor" || name == "node_modules" || name == "testdata" || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(de.Name(), ext) {
			return add(path)
		}
		return nil
	})
}
