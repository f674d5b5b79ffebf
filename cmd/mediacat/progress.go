package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"mediacat/internal/report"
)

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// newRunReporter returns the reporter for an interactive or headless run and
// a stop function that drains remaining events. Interactive runs render a
// spinner on stderr; headless runs discard progress and rely on logs.
func newRunReporter(out io.Writer, interactive bool) (report.Reporter, func()) {
	if !interactive {
		return report.Nop{}, func() {}
	}

	ch := report.NewChannel(256)
	bar := progressbar.NewOptions64(-1,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("scanning"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetElapsedTime(true),
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		phase := ""
		for event := range ch.Events() {
			if event.Phase != phase {
				phase = event.Phase
				bar.Describe(phase)
			}
			_ = bar.Add(1)
		}
	}()

	stop := func() {
		ch.Close()
		<-done
		_ = bar.Finish()
		fmt.Fprintln(out)
	}
	return ch, stop
}
