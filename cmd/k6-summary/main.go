package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/shiimaxx/k6-summary/internal/processor"
	"github.com/shiimaxx/k6-summary/internal/report"
	"github.com/shiimaxx/k6-summary/pkg/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command and maps its outcome to a process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if args == nil {
		// cobra falls back to os.Args when given nil
		args = []string{}
	}

	cmd := newRootCmd(config.Load(), stdout)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintln(stderr, usage)
		return 1
	case errors.Is(err, errThresholdsFailed):
		return 1
	case errors.Is(err, processor.ErrPublish):
		// the report was already written
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	default:
		fmt.Fprint(stderr, report.RenderError(err))
		return 1
	}
}
