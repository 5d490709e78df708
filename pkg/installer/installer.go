// Package installer runs the fixed pip dependency-installation sequence
// required before a training benchmark.
package installer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// CommandRunner abstracts command execution for testing. dir is the
// working directory for the command, empty means the current one.
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) (stdout io.Reader, wait func() error, err error)
}

// execCommandRunner is the default command runner using os/exec.
type execCommandRunner struct{}

func (r *execCommandRunner) Run(ctx context.Context, dir, name string, args ...string) (io.Reader, func() error, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("create stdout pipe: %w", err)
	}
	// merge stderr into stdout so pip diagnostics land in the progress log
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("start command: %w", err)
	}
	return stdout, cmd.Wait, nil
}

// logger interface for dependency injection.
type logger interface {
	Print(format string, args ...any)
	PrintRaw(format string, args ...any)
}

// step is one installation command with a description for logging.
type step struct {
	desc string
	dir  string // working directory, empty uses Installer.WorkDir
	args []string
}

// Installer runs the dependency-installation sequence: pip upgrade, one
// named package, a requirements file, a fixed package set, an editable
// install of the enclosing project, then a package listing. Any non-zero
// exit aborts immediately, no retry.
type Installer struct {
	Python     string // python interpreter command, defaults to "python"
	WorkDir    string // directory requirements.txt is resolved from
	ProjectDir string // enclosing project root for the editable install
	DryRun     bool   // log planned commands without running them
	runner     CommandRunner
	log        logger
}

// New creates an Installer logging through the given logger.
func New(python, workDir, projectDir string, log logger) *Installer {
	if python == "" {
		python = "python"
	}
	return &Installer{
		Python:     python,
		WorkDir:    workDir,
		ProjectDir: projectDir,
		log:        log,
	}
}

// SetRunner sets the command runner for testing purposes.
func (i *Installer) SetRunner(r CommandRunner) { i.runner = r }

// benchmarkPackages is the fixed set installed for benchmark training.
var benchmarkPackages = []string{"einops", "ftfy", "regex", "visualdl"}

// Install runs the full sequence. The editable install runs with its
// working directory set to ProjectDir instead of mutating the process
// CWD, so the caller's directory is untouched on every exit path.
func (i *Installer) Install(ctx context.Context) error {
	steps := []step{
		{desc: "upgrade pip", args: []string{"-m", "pip", "install", "--upgrade", "pip"}},
		{desc: "install paddlenlp", args: []string{"-m", "pip", "install", "paddlenlp"}},
		{desc: "install requirements", args: []string{"-m", "pip", "install", "-r", "requirements.txt"}},
		{desc: "install benchmark packages", args: append([]string{"-m", "pip", "install"}, benchmarkPackages...)},
		{desc: "editable install of project", dir: i.ProjectDir, args: []string{"-m", "pip", "install", "-e", "."}},
		{desc: "list installed packages", args: []string{"-m", "pip", "list"}},
	}

	for _, s := range steps {
		if err := i.runStep(ctx, s); err != nil {
			return fmt.Errorf("%s: %w", s.desc, err)
		}
	}
	return nil
}

func (i *Installer) runStep(ctx context.Context, s step) error {
	dir := s.dir
	if dir == "" {
		dir = i.WorkDir
	}

	i.log.Print("%s: %s %s", s.desc, i.Python, strings.Join(s.args, " "))
	if i.DryRun {
		return nil
	}

	runner := i.runner
	if runner == nil {
		runner = &execCommandRunner{}
	}

	stdout, wait, err := runner.Run(ctx, dir, i.Python, s.args...)
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(stdout)
	// pip can emit long resolver lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)
	for scanner.Scan() {
		i.log.PrintRaw("%s\n", scanner.Text())
	}
	if scanErr := scanner.Err(); scanErr != nil {
		return fmt.Errorf("read output: %w", scanErr)
	}

	if waitErr := wait(); waitErr != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("context error: %w", ctx.Err())
		}
		return fmt.Errorf("command failed: %w", waitErr)
	}
	return nil
}
