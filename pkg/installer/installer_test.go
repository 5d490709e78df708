package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger collects log lines for assertions.
type testLogger struct {
	lines []string
	raw   []string
}

func (l *testLogger) Print(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *testLogger) PrintRaw(format string, args ...any) {
	l.raw = append(l.raw, fmt.Sprintf(format, args...))
}

// call records one command invocation.
type call struct {
	dir  string
	name string
	args []string
}

// mockRunner implements CommandRunner, recording calls and returning
// canned output. failOn makes the call with that description index fail.
type mockRunner struct {
	calls  []call
	output string
	failOn int // 0-based call index, -1 never fails
}

func (m *mockRunner) Run(_ context.Context, dir, name string, args ...string) (io.Reader, func() error, error) {
	idx := len(m.calls)
	m.calls = append(m.calls, call{dir: dir, name: name, args: args})
	wait := func() error { return nil }
	if m.failOn == idx {
		wait = func() error { return errors.New("exit status 1") }
	}
	return strings.NewReader(m.output), wait, nil
}

func newTestInstaller(log *testLogger, runner CommandRunner) *Installer {
	i := New("python3.10", "/work/test_tipc", "/work", log)
	i.SetRunner(runner)
	return i
}

func TestInstaller_Install_Sequence(t *testing.T) {
	runner := &mockRunner{failOn: -1, output: "Successfully installed\n"}
	log := &testLogger{}
	i := newTestInstaller(log, runner)

	require.NoError(t, i.Install(context.Background()))
	require.Len(t, runner.calls, 6)

	joined := make([]string, len(runner.calls))
	for n, c := range runner.calls {
		joined[n] = strings.Join(c.args, " ")
		assert.Equal(t, "python3.10", c.name)
	}

	assert.Equal(t, "-m pip install --upgrade pip", joined[0])
	assert.Equal(t, "-m pip install paddlenlp", joined[1])
	assert.Equal(t, "-m pip install -r requirements.txt", joined[2])
	assert.Equal(t, "-m pip install einops ftfy regex visualdl", joined[3])
	assert.Equal(t, "-m pip install -e .", joined[4])
	assert.Equal(t, "-m pip list", joined[5])
}

func TestInstaller_Install_WorkingDirectories(t *testing.T) {
	runner := &mockRunner{failOn: -1}
	i := newTestInstaller(&testLogger{}, runner)

	require.NoError(t, i.Install(context.Background()))
	require.Len(t, runner.calls, 6)

	// only the editable install runs from the project root
	for n, c := range runner.calls {
		if n == 4 {
			assert.Equal(t, "/work", c.dir, "editable install must run from the project root")
			continue
		}
		assert.Equal(t, "/work/test_tipc", c.dir)
	}
}

func TestInstaller_Install_StreamsOutput(t *testing.T) {
	runner := &mockRunner{failOn: -1, output: "Collecting pip\nInstalling collected packages\n"}
	log := &testLogger{}
	i := newTestInstaller(log, runner)

	require.NoError(t, i.Install(context.Background()))
	assert.Contains(t, log.raw, "Collecting pip\n")
	assert.Contains(t, log.raw, "Installing collected packages\n")
}

func TestInstaller_Install_FailureAborts(t *testing.T) {
	runner := &mockRunner{failOn: 2} // requirements install fails
	i := newTestInstaller(&testLogger{}, runner)

	err := i.Install(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "install requirements")
	assert.Contains(t, err.Error(), "exit status 1")
	assert.Len(t, runner.calls, 3, "no step runs after the first failure")
}

func TestInstaller_Install_DryRun(t *testing.T) {
	runner := &mockRunner{failOn: -1}
	log := &testLogger{}
	i := newTestInstaller(log, runner)
	i.DryRun = true

	require.NoError(t, i.Install(context.Background()))
	assert.Empty(t, runner.calls, "dry-run runs no commands")
	assert.Len(t, log.lines, 6, "every step is still logged")
}

func TestInstaller_Install_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := &mockRunner{failOn: 0}
	i := newTestInstaller(&testLogger{}, runner)
	cancel()

	err := i.Install(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_Defaults(t *testing.T) {
	i := New("", ".", "..", &testLogger{})
	assert.Equal(t, "python", i.Python)
}
