// Package version provides build version information and runtime metadata.
package version

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Project is the name reported by Info.
const Project = "reader-usage-dashboard"

const gitTimeout = 2 * time.Second

var (
	// These are set via ldflags at build time
	Version = ""
	Commit  = ""
	Date    = ""

	once sync.Once

	execCommand = exec.CommandContext
)

func ensureInitialized() {
	once.Do(func() {
		if Date == "" {
			Date = time.Now().Format("2006-01-02")
		}
		if Commit == "" {
			Commit = gitOutput("unknown", "describe", "--always", "--dirty")
		}
		if Version == "" {
			Version = gitOutput("dev", "describe", "--tags", "--abbrev=0")
		}
	})
}

// gitOutput runs git with args and returns its trimmed output, or fallback
// when git fails or prints nothing.
func gitOutput(fallback string, args ...string) string {
	ctx, cancel := context.WithTimeout(context.Background(), gitTimeout)
	defer cancel()

	cmd := execCommand(ctx, "git", args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return fallback
	}
	if v := strings.TrimSpace(out.String()); v != "" {
		return v
	}
	return fallback
}

// Reset clears values resolved at runtime so they are detected again.
func Reset() {
	Version, Commit, Date = "", "", ""
	once = sync.Once{}
}

// GetVersion returns the release tag, or "dev" outside a tagged checkout.
func GetVersion() string {
	ensureInitialized()
	return Version
}

// GetCommit returns the abbreviated commit hash.
func GetCommit() string {
	ensureInitialized()
	return Commit
}

// GetDate returns the build date.
func GetDate() string {
	ensureInitialized()
	return Date
}

// Info returns a one-line description of the running binary.
func Info() string {
	ensureInitialized()
	return fmt.Sprintf("%s %s (commit: %s, built: %s, %s, %s/%s)",
		Project, Version, Commit, Date, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
