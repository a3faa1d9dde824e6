package main

import (
	"crypto/sha256"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/kilianc/tidos/internal/tidos/compile"
	"github.com/kilianc/tidos/internal/tidos/outfile"
	"github.com/kilianc/tidos/internal/tidos/source"
)

func main() {
	flag.Usage = func() {
		_, _ = fmt.Fprintln(os.Stderr, "Usage: playground [flags]")
		_, _ = fmt.Fprintln(os.Stderr, "")
		_, _ = fmt.Fprintln(os.Stderr, "Watches ./playground/*.tidos and regenerates the *.tidos.go files on changes.")
		flag.PrintDefaults()
	}
	interval := flag.Duration("interval", 300*time.Millisecond, "watch polling interval")
	flag.Parse()

	if flag.NArg() != 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := watchAndGenerate(*interval); err != nil {
		fatal(err)
	}
}

type watcher struct {
	compiler *compile.Compiler
	log      *slog.Logger
	color    bool
	seen     map[string][32]byte
}

func watchAndGenerate(interval time.Duration) error {
	root, err := findModuleRoot(".")
	if err != nil {
		return err
	}
	w := &watcher{
		compiler: &compile.Compiler{Root: root},
		log:      slog.New(slog.NewTextHandler(os.Stderr, nil)),
		color:    source.ColorTerminal(os.Stderr),
		seen:     map[string][32]byte{},
	}
	dir := filepath.Join(root, "playground")
	for {
		if err := w.poll(dir); err != nil {
			w.log.Error("poll", "dir", dir, "err", err)
		}
		time.Sleep(interval)
	}
}

// poll regenerates every source in dir whose content changed since the
// last poll.
func (w *watcher) poll(dir string) error {
	paths, err := filepath.Glob(filepath.Join(dir, "*.tidos"))
	if err != nil {
		return err
	}
	sort.Strings(paths)
	for _, pth := range paths {
		b, err := os.ReadFile(pth)
		if err != nil {
			w.log.Warn("read", "path", pth, "err", err)
			continue
		}
		h := sha256.Sum256(b)
		if prev, ok := w.seen[pth]; ok && prev == h {
			continue
		}
		w.seen[pth] = h
		w.generate(pth, b)
	}
	return nil
}

func (w *watcher) generate(pth string, b []byte) {
	start := time.Now()
	src, err := w.compiler.CompileFile(pth, b)
	if err != nil {
		var se *source.Error
		if errors.As(err, &se) {
			_, _ = fmt.Fprint(os.Stderr, source.Caret(b, se, w.color))
			return
		}
		w.log.Error("compile", "path", pth, "err", err)
		return
	}
	out := outfile.OutputPath(pth)
	if _, err := outfile.WriteGeneratedFile(out, src); err != nil {
		w.log.Error("write", "path", out, "err", err)
		return
	}
	w.log.Info("generated", "out", filepath.Base(out), "size", humanize.Bytes(uint64(len(src))), "took", time.Since(start).Round(time.Microsecond))
}

func findModuleRoot(start string) (string, error) {
	d, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
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

func fatal(err error) {
	_, _ = fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
