// Package notify delivers mutation outcomes to the operator.
package notify

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// ANSI color codes
const (
	colorReset = "\033[0m"
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
)

// Console prints one ✓/✗ line per notification
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
}

// NewConsole writes notifications to out, colored when color is true
func NewConsole(out io.Writer, color bool) *Console {
	return &Console{out: out, color: color}
}

func (c *Console) Success(message string) {
	c.print(colorGreen, "✓", message)
}

func (c *Console) Error(message string) {
	c.print(colorRed, "✗", message)
}

func (c *Console) print(color, mark, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.color {
		fmt.Fprintf(c.out, "%s%s%s %s\n", color, mark, colorReset, message)
		return
	}
	fmt.Fprintf(c.out, "%s %s\n", mark, message)
}

// Log records notifications in the structured log
type Log struct {
	logger *zap.Logger
}

func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Success(message string) {
	l.logger.Info("Mutation succeeded", zap.String("message", message))
}

func (l *Log) Error(message string) {
	l.logger.Warn("Mutation failed", zap.String("message", message))
}

// Notifier matches optimistic.Notifier
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Multi fans each notification out to every notifier in order
type Multi []Notifier

func (m Multi) Success(message string) {
	for _, n := range m {
		n.Success(message)
	}
}

func (m Multi) Error(message string) {
	for _, n := range m {
		n.Error(message)
	}
}
