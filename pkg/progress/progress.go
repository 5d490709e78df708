// Package progress provides timestamped logging to file and stdout with color support.
package progress

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"golang.org/x/term"
)

// Phase represents execution phase for color coding.
type Phase string

// Phase constants for preparation stages.
const (
	PhaseParse   Phase = "parse"   // config parsing phase (cyan)
	PhaseFixture Phase = "fixture" // dataset/weights fixture phase (green)
	PhaseInstall Phase = "install" // dependency installation phase (magenta)
)

var (
	parseColor     = color.New(color.FgCyan)
	fixtureColor   = color.New(color.FgGreen)
	installColor   = color.New(color.FgMagenta)
	warnColor      = color.New(color.FgYellow)
	errorColor     = color.New(color.FgRed)
	timestampColor = color.New(color.FgWhite)
)

// phaseColors maps phases to their color functions.
var phaseColors = map[Phase]*color.Color{
	PhaseParse:   parseColor,
	PhaseFixture: fixtureColor,
	PhaseInstall: installColor,
}

// Logger writes timestamped output to both a progress file and stdout.
type Logger struct {
	file      *os.File
	stdout    io.Writer
	startTime time.Time
	phase     Phase
}

// Config holds logger configuration.
type Config struct {
	Path       string // progress file path, empty disables the file copy
	ConfigFile string // TIPC config file being prepared (header only)
	Mode       string // preparation mode (header only)
	NoColor    bool   // disable color output (sets color.NoColor globally)
}

// NewLogger creates a logger writing to a progress file and stdout.
// With an empty Path only stdout output is produced.
func NewLogger(cfg Config) (*Logger, error) {
	if cfg.NoColor {
		color.NoColor = true
	}

	l := &Logger{
		stdout:    os.Stdout,
		startTime: time.Now(),
		phase:     PhaseParse,
	}

	if cfg.Path != "" {
		f, err := os.Create(cfg.Path) //nolint:gosec // path comes from tool config
		if err != nil {
			return nil, fmt.Errorf("create progress file: %w", err)
		}
		l.file = f

		l.writeFile("# Fixprep Progress Log\n")
		l.writeFile("Config: %s\n", cfg.ConfigFile)
		l.writeFile("Mode: %s\n", cfg.Mode)
		l.writeFile("Started: %s\n", time.Now().Format("2006-01-02 15:04:05"))
		l.writeFile("%s\n\n", strings.Repeat("-", 60))
	}

	return l, nil
}

// Path returns the progress file path, empty when file output is disabled.
func (l *Logger) Path() string {
	if l.file == nil {
		return ""
	}
	return l.file.Name()
}

// SetPhase sets the current execution phase for color coding.
func (l *Logger) SetPhase(phase Phase) {
	l.phase = phase
}

// timestampFormat is the format for timestamps: YY-MM-DD HH:MM:SS
const timestampFormat = "06-01-02 15:04:05"

// Print writes a timestamped message to both file and stdout.
func (l *Logger) Print(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format(timestampFormat)

	// file copy carries no color
	l.writeFile("[%s] %s\n", timestamp, msg)

	phaseColor := phaseColors[l.phase]
	tsStr := timestampColor.Sprintf("[%s]", timestamp)
	msgStr := phaseColor.Sprint(msg)
	l.writeStdout("%s %s\n", tsStr, msgStr)
}

// PrintRaw writes without timestamp (for streaming subprocess output).
func (l *Logger) PrintRaw(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.writeFile("%s", msg)
	l.writeStdout("%s", msg)
}

// PrintAligned writes text with a timestamp on the first line and an
// aligned indent on continuation lines, wrapping to the terminal width.
func (l *Logger) PrintAligned(text string) {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return
	}

	timestamp := time.Now().Format(timestampFormat)
	phaseColor := phaseColors[l.phase]
	tsPrefix := timestampColor.Sprintf("[%s]", timestamp)
	indent := strings.Repeat(" ", 20) // aligns with "[YY-MM-DD HH:MM:SS] "

	width := getTerminalWidth()

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if len(line) > width {
			for _, wrapped := range strings.Split(wrapText(line, width), "\n") {
				lines = append(lines, wrapped)
			}
		} else {
			lines = append(lines, line)
		}
	}

	for i, line := range lines {
		if line == "" {
			l.writeFile("\n")
			l.writeStdout("\n")
			continue
		}
		if i == 0 {
			l.writeFile("[%s] %s\n", timestamp, line)
			l.writeStdout("%s %s\n", tsPrefix, phaseColor.Sprint(line))
			continue
		}
		l.writeFile("%s%s\n", indent, line)
		l.writeStdout("%s%s\n", indent, phaseColor.Sprint(line))
	}
}

// Error writes an error message in red.
func (l *Logger) Error(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format(timestampFormat)

	l.writeFile("[%s] ERROR: %s\n", timestamp, msg)

	tsStr := timestampColor.Sprintf("[%s]", timestamp)
	errStr := errorColor.Sprintf("ERROR: %s", msg)
	l.writeStdout("%s %s\n", tsStr, errStr)
}

// Warn writes a warning message in yellow.
func (l *Logger) Warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format(timestampFormat)

	l.writeFile("[%s] WARN: %s\n", timestamp, msg)

	tsStr := timestampColor.Sprintf("[%s]", timestamp)
	warnStr := warnColor.Sprintf("WARN: %s", msg)
	l.writeStdout("%s %s\n", tsStr, warnStr)
}

// Elapsed returns formatted elapsed time since start.
func (l *Logger) Elapsed() string {
	return humanize.RelTime(l.startTime, time.Now(), "", "")
}

// Close writes footer and closes the progress file.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}

	l.writeFile("\n%s\n", strings.Repeat("-", 60))
	l.writeFile("Completed: %s (%s)\n", time.Now().Format("2006-01-02 15:04:05"), l.Elapsed())

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("close progress file: %w", err)
	}
	return nil
}

func (l *Logger) writeFile(format string, args ...any) {
	if l.file != nil {
		fmt.Fprintf(l.file, format, args...)
	}
}

func (l *Logger) writeStdout(format string, args ...any) {
	fmt.Fprintf(l.stdout, format, args...)
}

// getTerminalWidth returns content width (total minus timestamp prefix),
// using COLUMNS env var or the terminal syscall, defaulting to 80 columns.
func getTerminalWidth() int {
	const minWidth = 40

	if cols := os.Getenv("COLUMNS"); cols != "" {
		if w, err := strconv.Atoi(cols); err == nil && w > 0 {
			if contentWidth := w - 20; contentWidth >= minWidth {
				return contentWidth
			}
			return minWidth
		}
	}

	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		if contentWidth := w - 20; contentWidth >= minWidth {
			return contentWidth
		}
		return minWidth
	}

	return 80 - 20
}

// wrapText wraps text to specified width, breaking on word boundaries.
func wrapText(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var result strings.Builder
	lineLen := 0

	for i, word := range strings.Fields(text) {
		wordLen := len(word)

		if i == 0 {
			result.WriteString(word)
			lineLen = wordLen
			continue
		}

		if lineLen+1+wordLen <= width {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wordLen
			continue
		}

		result.WriteString("\n")
		result.WriteString(word)
		lineLen = wordLen
	}

	return result.String()
}
