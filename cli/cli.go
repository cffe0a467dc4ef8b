// ABOUTME: Shared plumbing for the feedback CLI commands
// ABOUTME: Output and input streams plus small argument helpers
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Commands write to stdout and read confirmations from stdin; tests swap them.
var (
	stdout io.Writer = os.Stdout
	stdin  io.Reader = os.Stdin
)

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", what, s)
	}
	return id, nil
}

// confirm asks a yes/no question on stdin. Anything but y/yes is a no.
func confirm(prompt string) bool {
	_, _ = fmt.Fprintf(stdout, "%s [y/N]: ", prompt)
	line, _ := bufio.NewReader(stdin).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// clip shortens s to n runes on a single line for table output.
func clip(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
