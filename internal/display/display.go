// Package display renders miner progress and log lines to the terminal: a
// progress bar over a known total, colorized warn/error lines, humanized
// byte counts.
package display

import (
	"fmt"
	"log"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	progressbar "github.com/schollz/progressbar/v3"
)

// Displayer is everything the scanner and control loop need to report
// progress without depending on a concrete terminal implementation.
type Displayer interface {
	ShowDirectoryCapacity(dir string, numPlots int, nonces uint64)
	ShowTotalCapacity(nonces uint64)

	ShowNewBlock(height uint64, scoop uint32)
	ShowRoundProgress(total int)
	AdvanceRound(completed int)
	FinishRound(elapsed time.Duration)
	ShowWakeup()
	ShowDeadlineFound(nonce, deadlineScaled uint64)

	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Terminal is the default Displayer, writing a progress bar during a
// round and colorized log lines for everything else.
type Terminal struct {
	bar     *progressbar.ProgressBar
	verbose bool
}

// New returns a Terminal displayer. verbose enables Info-level logging.
func New(verbose bool) *Terminal {
	return &Terminal{verbose: verbose}
}

var _ Displayer = (*Terminal)(nil)

func noncesToBytes(nonces uint64) uint64 {
	const nonceSize = 64 * 4096
	return nonces * nonceSize
}

func (t *Terminal) ShowDirectoryCapacity(dir string, numPlots int, nonces uint64) {
	log.Printf("path=%s, files=%d, size=%s", dir, numPlots, humanize.IBytes(noncesToBytes(nonces)))
}

func (t *Terminal) ShowTotalCapacity(nonces uint64) {
	log.Printf("plot files loaded: total capacity=%s", humanize.IBytes(noncesToBytes(nonces)))
}

func (t *Terminal) ShowNewBlock(height uint64, scoop uint32) {
	log.Printf("new block: height=%d, scoop=%d", height, scoop)
}

func (t *Terminal) ShowRoundProgress(total int) {
	fmt.Println()
	t.bar = progressbar.NewOptions(total,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetDescription("[cyan][bold]Scanning plots...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func (t *Terminal) AdvanceRound(completed int) {
	if t.bar == nil {
		return
	}
	_ = t.bar.Set(completed)
}

func (t *Terminal) FinishRound(elapsed time.Duration) {
	if t.bar != nil {
		_ = t.bar.Finish()
	}
	log.Printf("round finished: roundtime=%s", elapsed)
}

func (t *Terminal) ShowWakeup() {
	log.Printf("HDD, wakeup!")
}

func (t *Terminal) ShowDeadlineFound(nonce, deadlineScaled uint64) {
	log.Printf("deadline found: nonce=%d, deadline=%d", nonce, deadlineScaled)
}

func (t *Terminal) Info(format string, args ...any) {
	if !t.verbose {
		return
	}
	log.Printf(format, args...)
}

func (t *Terminal) Warn(format string, args ...any) {
	warn := color.New(color.FgYellow).SprintFunc()
	log.Printf("%s %s", warn("warn:"), fmt.Sprintf(format, args...))
}

func (t *Terminal) Error(format string, args ...any) {
	errColor := color.New(color.FgRed).SprintFunc()
	log.Printf("%s %s", errColor("error:"), fmt.Sprintf(format, args...))
}
