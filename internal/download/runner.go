// Package download executes reproduction commands for resolved sources.
// Downloads are strictly optional: a failure here never touches the entries
// already assembled.
package download

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pharaohanjay-gif/dado-stream/internal/scrape"
)

// Runner implements scrape.CommandRunner by executing the invocation as a
// child process with a bounded wall-clock budget. The argument list is
// passed straight to exec; no shell is involved.
type Runner struct {
	outputDir string
	timeout   time.Duration
	logger    *zap.Logger
}

// NewRunner builds a Runner saving into outputDir.
func NewRunner(outputDir string, timeout time.Duration, logger *zap.Logger) *Runner {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &Runner{outputDir: outputDir, timeout: timeout, logger: logger}
}

// Run executes inv with its output path rebased into the runner's output
// directory.
func (r *Runner) Run(ctx context.Context, inv scrape.Invocation) error {
	if inv.Program == "" {
		return fmt.Errorf("empty invocation")
	}
	if r.outputDir != "" {
		if err := os.MkdirAll(r.outputDir, 0o750); err != nil {
			return fmt.Errorf("create download dir %s: %w", r.outputDir, err)
		}
	}
	args := rebaseOutputArgs(inv, r.outputDir)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, inv.Program, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	r.logger.Info("running download command",
		zap.String("program", inv.Program),
		zap.Strings("args", args),
	)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w: %s", inv.Program, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// rebaseOutputArgs prefixes the invocation's output target with outputDir.
// ffmpeg carries the target as its final argument; yt-dlp as the value
// following -o.
func rebaseOutputArgs(inv scrape.Invocation, outputDir string) []string {
	args := append([]string(nil), inv.Args...)
	if outputDir == "" {
		return args
	}
	switch inv.Program {
	case "ffmpeg":
		if n := len(args); n > 0 {
			args[n-1] = filepath.Join(outputDir, args[n-1])
		}
	case "yt-dlp":
		for i := 0; i < len(args)-1; i++ {
			if args[i] == "-o" {
				args[i+1] = filepath.Join(outputDir, args[i+1])
				break
			}
		}
	}
	return args
}
