package common

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ducminhle1904/strategy-backtester/internal/logger"
)

// Console prints progress messages of CLI applications
type Console struct {
	out        io.Writer
	ShowEmojis bool
	SilentMode bool
	Verbose    bool
}

// NewConsole creates a console writing to stdout
func NewConsole() *Console {
	return NewConsoleTo(os.Stdout)
}

// NewConsoleTo creates a console writing to w
func NewConsoleTo(w io.Writer) *Console {
	return &Console{out: w, ShowEmojis: true}
}

func (c *Console) print(emoji, tag, format string, args ...interface{}) {
	prefix := emoji
	if !c.ShowEmojis {
		prefix = tag
	}
	fmt.Fprintf(c.out, "%s %s\n", prefix, fmt.Sprintf(format, args...))
}

// Header prints a formatted header
func (c *Console) Header(title string) {
	if c.SilentMode {
		return
	}
	prefix := "🎯"
	if !c.ShowEmojis {
		prefix = "***"
	}
	fmt.Fprintf(c.out, "\n%s %s\n", prefix, strings.ToUpper(title))
	fmt.Fprintln(c.out, strings.Repeat("=", len(title)+5))
}

// Info prints an info message
func (c *Console) Info(format string, args ...interface{}) {
	if c.SilentMode {
		return
	}
	c.print("ℹ️ ", "[INFO]", format, args...)
}

// Success prints a success message
func (c *Console) Success(format string, args ...interface{}) {
	if c.SilentMode {
		return
	}
	c.print("✅", "[SUCCESS]", format, args...)
}

// Progress prints a progress message
func (c *Console) Progress(format string, args ...interface{}) {
	if c.SilentMode {
		return
	}
	c.print("🔄", "[PROGRESS]", format, args...)
}

// Warn prints a warning message, even in silent mode
func (c *Console) Warn(format string, args ...interface{}) {
	c.print("⚠️ ", "[WARN]", format, args...)
}

// Error prints an error message, even in silent mode
func (c *Console) Error(format string, args ...interface{}) {
	c.print("❌", "[ERROR]", format, args...)
}

// Emit implements logger.Sink. Warnings and errors of the pipeline are
// always shown; debug and info events only in verbose mode.
func (c *Console) Emit(e logger.Event) {
	switch e.Severity {
	case logger.SeverityError:
		c.Error("[%s] %s", e.Stage, e.Message)
	case logger.SeverityWarn:
		c.Warn("[%s] %s", e.Stage, e.Message)
	default:
		if c.Verbose && !c.SilentMode {
			c.print("🔍", "["+string(e.Severity)+"]", "[%s] %s", e.Stage, e.Message)
		}
	}
}
