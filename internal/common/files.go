package common

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"strings"
)

func Sha256OfFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()
	stat, _ := f.Stat()
	h := sha256.New()
	_, err = io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), stat.Size(), nil
}

// SanitizeName makes a channel or group name safe for use as a file name:
// spaces become underscores, path separators and other hostile runes are
// dropped.
func SanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r == ' ':
			b.WriteRune('_')
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' ||
			r == '"' || r == '<' || r == '>' || r == '|':
		case r < ' ':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}
