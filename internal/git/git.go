package git

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// ListFiles returns the files git tracks under root, plus untracked files
// that are not ignored. Paths are relative to root and slash separated.
func ListFiles(root string) ([]string, error) {
	cmd := exec.Command("git", "-C", root, "ls-files", "-z", "--cached", "--others", "--exclude-standard")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("git ls-files failed: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("git ls-files failed: %w", err)
	}

	return parseFileList(output), nil
}

// parseFileList splits NUL separated ls-files output. A path reported twice
// (tracked and modified in the worktree) is kept once.
func parseFileList(output []byte) []string {
	var files []string
	seen := make(map[string]bool)
	for _, p := range bytes.Split(output, []byte{0}) {
		if len(p) == 0 {
			continue
		}
		path := string(p)
		if seen[path] {
			continue
		}
		seen[path] = true
		files = append(files, path)
	}
	return files
}
