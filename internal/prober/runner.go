package prober

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/vikash-mehta62/radiology-final-09-sub003/internal/domain/repository"
	"golang.org/x/sync/errgroup"
)

// DefaultNextSteps is printed after every target passed.
var DefaultNextSteps = []string{
	"Start the detection service",
	"Upload a test image through the detection API to verify end-to-end analysis",
	"Run `visionprobe watch` to keep monitoring the services",
}

// Runner prints the operator-facing report for one or more probers.
type Runner struct {
	Out       io.Writer
	Title     string
	NextSteps []string
}

// Run checks every prober once and returns their outcomes with the process exit code.
// An empty prober list is a failure.
// A single prober is checked inline; several are checked concurrently and reported in order.
func (r *Runner) Run(ctx context.Context, probers ...*Prober) ([]Outcome, int) {
	title := r.Title
	if title == "" {
		title = "Testing AI Vision Service Connection"
	}
	fmt.Fprintf(r.Out, "🧪 %s...\n\n", title)

	if len(probers) == 0 {
		fmt.Fprintln(r.Out, "❌ No services configured to check.")
		return nil, 1
	}

	outcomes := make([]Outcome, len(probers))
	if len(probers) == 1 {
		outcomes[0] = probers[0].Check(ctx)
	} else {
		var g errgroup.Group
		for i, p := range probers {
			g.Go(func() error {
				outcomes[i] = p.Check(ctx)
				return nil
			})
		}
		_ = g.Wait()
	}

	code := 0
	for i, o := range outcomes {
		fmt.Fprintf(r.Out, "Test %d: %s connectivity\n", i+1, probers[i].Name())
		printOutcome(r.Out, o)
		fmt.Fprintln(r.Out)
		if o.ExitCode() != 0 {
			code = 1
		}
	}

	if code != 0 {
		fmt.Fprintln(r.Out, "❌ Connectivity check failed. Verify your API credentials and network access.")
		return outcomes, code
	}

	fmt.Fprintln(r.Out, "🎉 All connectivity checks passed!")
	steps := r.NextSteps
	if steps == nil {
		steps = DefaultNextSteps
	}
	if len(steps) > 0 {
		fmt.Fprintln(r.Out)
		fmt.Fprintln(r.Out, "Next steps:")
		for i, s := range steps {
			fmt.Fprintf(r.Out, "  %d. %s\n", i+1, s)
		}
	}
	return outcomes, 0
}

func printOutcome(w io.Writer, o Outcome) {
	switch o.Kind {
	case repository.KindSuccess:
		fmt.Fprintln(w, "✅ Connection successful!")
		fmt.Fprintf(w, "   Model: %s\n", o.Message())
		fmt.Fprintf(w, "   Latency: %s\n", o.Latency.Round(time.Millisecond))
	case repository.KindReported:
		fmt.Fprintf(w, "❌ Connection failed: %s\n", o.Message())
	case repository.KindSkipped:
		fmt.Fprintf(w, "⏸️  Skipped: %s\n", o.Message())
	default:
		fmt.Fprintf(w, "❌ Test failed with error: %s\n", o.Message())
	}
}
