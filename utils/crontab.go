package utils

import (
	"os/exec"
	"strings"
)

// MergeCronEntry appends entry to an existing crontab listing unless an
// identical line is already present. The rest of the table is preserved
// untouched.
func MergeCronEntry(current, entry string) string {
	entry = strings.TrimSpace(entry)

	lines := []string{}
	for _, line := range strings.Split(current, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.TrimSpace(line) == entry {
			// already scheduled
			return current
		}
		lines = append(lines, line)
	}

	lines = append(lines, entry)
	return strings.Join(lines, "\n") + "\n"
}

// EnsureCronEntry registers entry in the current user's crontab. A missing
// crontab (crontab -l exits non-zero on an empty table) is treated as
// empty.
func EnsureCronEntry(entry string) error {
	current := ""
	if output, err := exec.Command("crontab", "-l").Output(); err == nil {
		current = string(output)
	}

	merged := MergeCronEntry(current, entry)
	if merged == current {
		return nil
	}

	cmd := exec.Command("crontab", "-")
	cmd.Stdin = strings.NewReader(merged)
	return cmd.Run()
}
