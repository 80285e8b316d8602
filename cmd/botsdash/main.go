package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"botsdash/internal/cli"
)

// isAppID reports whether s looks like a server app id (decimal digits).
func isAppID(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// rewriteDirectAppLookupArgs makes `botsdash <app-id>` work like
// `botsdash apps show <app-id>`. Cobra treats the first non-flag token as a
// subcommand, so argv is rewritten before parsing.
func rewriteDirectAppLookupArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	// Flags that take a separate value. Unknown flags are skipped without
	// consuming a value so an app id is never swallowed.
	valueFlags := map[string]bool{
		"--server":    true,
		"--config":    true,
		"--format":    true,
		"--log-file":  true,
		"--log-level": true,
		"--timeout":   true,
	}

	rewrite := func(at int) []string {
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:at]...)
		out = append(out, "apps", "show")
		return append(out, argv[at:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		switch {
		case a == "":
			continue
		case a == "--":
			if i+1 < len(argv) && isAppID(argv[i+1]) {
				return rewrite(i + 1)
			}
			return argv
		case strings.HasPrefix(a, "-"):
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		case isAppID(a):
			return rewrite(i)
		default:
			return argv
		}
	}
	return argv
}

func main() {
	os.Args = rewriteDirectAppLookupArgs(os.Args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := cli.NewRootCmd()
	cmd.SetArgs(os.Args[1:])
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
