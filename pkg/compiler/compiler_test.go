package compiler

import (
	"strings"
	"testing"
)

func TestCompileFile(t *testing.T) {
	src := []byte("package a\n\nfunc Hi(name string) string {\n\treturn view!{<p>{name}</p>}\n}\n")

	out, err := CompileFile("a.tidos", src)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `import tidos "github.com/kilianc/tidos/pkg/tidos"`) {
		t.Errorf("default runtime not imported:\n%s", out)
	}

	out, err = CompileFileWith("a.tidos", src, Options{Runtime: "example.com/rt"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `import tidos "example.com/rt"`) {
		t.Errorf("custom runtime not imported:\n%s", out)
	}
}
