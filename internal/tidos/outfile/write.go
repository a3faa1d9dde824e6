package outfile

import (
	"bytes"
	"os"

	"github.com/natefinch/atomic"
)

// WriteGeneratedFile replaces outPath with src in one rename, so a build
// running alongside the generator never sees a half-written file. It
// reports whether the file changed; identical content is left untouched.
func WriteGeneratedFile(outPath string, src []byte) (bool, error) {
	if old, err := os.ReadFile(outPath); err == nil && bytes.Equal(old, src) {
		return false, nil
	}
	if err := atomic.WriteFile(outPath, bytes.NewReader(src)); err != nil {
		return false, err
	}
	return true, nil
}

// OutputPath is the generated file for a template source: x.tidos becomes
// x.tidos.go.
func OutputPath(srcPath string) string {
	return srcPath + ".go"
}
