package utils

import (
	"fmt"
	"os"
	"strings"
)

// FileExists returns true if a file referenced by filename exists.
func FileExists(filename string) bool {
	f, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return !f.IsDir()
}

// ReadLines reads a device configuration file into its lines. Lines are kept
// verbatim (comments and blanks included); only line terminators are
// stripped. A trailing empty line, a file-ending artifact, is dropped.
func ReadLines(file string) ([]string, error) {
	if !FileExists(file) {
		return nil, fmt.Errorf("file %s does not exist", file)
	}

	b, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.ReplaceAll(string(b), "\r\n", "\n"), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines, nil
}
