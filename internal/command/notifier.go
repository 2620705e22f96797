package command

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fatih/color"

	"github.com/hammamikhairi/recipedesk/internal/domain"
	"github.com/hammamikhairi/recipedesk/internal/logger"
)

var _ domain.Notifier = (*CLINotifier)(nil)

// PrintFunc matches fmt.Printf and display.UI.Printf.
type PrintFunc func(format string, a ...any)

// CLINotifier reports background confirmations in the terminal. They land
// after the command that caused them, so each line carries the time it
// arrived. Failures are counted for the status bar.
type CLINotifier struct {
	log      *logger.Logger
	print    PrintFunc
	now      func() time.Time
	failures atomic.Int64

	stamp  *color.Color
	normal *color.Color
	urgent *color.Color
}

// NewCLINotifier creates a terminal notifier. A nil printFn prints to
// stdout.
func NewCLINotifier(log *logger.Logger, printFn PrintFunc) *CLINotifier {
	if printFn == nil {
		printFn = func(format string, a ...any) { fmt.Printf(format+"\n", a...) }
	}
	return &CLINotifier{
		log:    log,
		print:  printFn,
		now:    time.Now,
		stamp:  color.New(color.FgHiBlack),
		normal: color.New(color.FgCyan),
		urgent: color.New(color.FgRed, color.Bold),
	}
}

func (n *CLINotifier) Notify(ctx context.Context, message string) error {
	n.log.Debug("notify: %s", message)
	n.emit(n.normal, "  ", message)
	return nil
}

func (n *CLINotifier) NotifyUrgent(ctx context.Context, message string) error {
	n.failures.Add(1)
	n.log.Debug("notify-urgent: %s", message)
	n.emit(n.urgent, "! ", message)
	return nil
}

// Failures is the number of urgent notices so far.
func (n *CLINotifier) Failures() int { return int(n.failures.Load()) }

// emit prints message under a time stamp. Continuation lines are indented
// to the message column.
func (n *CLINotifier) emit(c *color.Color, mark, message string) {
	stamp := n.now().Format("15:04:05")
	lines := strings.Split(strings.TrimRight(message, "\n"), "\n")
	pad := strings.Repeat(" ", len(stamp)+1+len(mark))
	for i := 1; i < len(lines); i++ {
		lines[i] = pad + lines[i]
	}
	n.print("%s %s", n.stamp.Sprint(stamp), c.Sprint(mark+strings.Join(lines, "\n")))
}
