package notify

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("no terminal") }

type countingNotifier struct{ n int }

func (c *countingNotifier) Notify(context.Context) { c.n++ }

func TestBell(t *testing.T) {
	var buf bytes.Buffer
	Bell{Out: &buf}.Notify(context.Background())
	assert.Equal(t, "\a", buf.String())
}

func TestBell_FailureIsSilent(t *testing.T) {
	assert.NotPanics(t, func() {
		Bell{Out: failingWriter{}}.Notify(context.Background())
	})
	assert.NotPanics(t, func() {
		Bell{}.Notify(context.Background()) // nil writer
	})
}

func TestCommand_RunsAndWaits(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses touch")
	}
	marker := filepath.Join(t.TempDir(), "played")

	cmd := NewCommand("touch "+marker, time.Second)
	require.NotNil(t, cmd)
	cmd.Notify(context.Background())

	_, err := os.Stat(marker)
	assert.NoError(t, err, "Notify must return only after the command has finished")
}

func TestCommand_MissingBinaryIsSilent(t *testing.T) {
	cmd := NewCommand("blockwatch-no-such-player --play tada.wav", time.Second)
	require.NotNil(t, cmd)
	assert.NotPanics(t, func() { cmd.Notify(context.Background()) })
}

func TestCommand_Timeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sleep")
	}
	cmd := NewCommand("sleep 5", 100*time.Millisecond)

	start := time.Now()
	cmd.Notify(context.Background())
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNewCommand_Empty(t *testing.T) {
	assert.Nil(t, NewCommand("   ", time.Second))
}

func TestMulti(t *testing.T) {
	a, b := &countingNotifier{}, &countingNotifier{}
	Multi{a, b}.Notify(context.Background())
	assert.Equal(t, 1, a.n)
	assert.Equal(t, 1, b.n)
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer

	assert.IsType(t, Nop{}, New(Options{Enabled: false, Bell: true, Terminal: &buf}))
	assert.IsType(t, Nop{}, New(Options{Enabled: true}))
	assert.IsType(t, Bell{}, New(Options{Enabled: true, Bell: true, Terminal: &buf}))
	assert.IsType(t, &Command{}, New(Options{Enabled: true, Command: "paplay x.oga"}))
	assert.IsType(t, Multi{}, New(Options{Enabled: true, Bell: true, Terminal: &buf, Command: "paplay x.oga"}))
}

func TestTerminal_FallsBackToStderr(t *testing.T) {
	orig := ttyPath
	ttyPath = filepath.Join(t.TempDir(), "no-such-tty")
	t.Cleanup(func() { ttyPath = orig })

	w, closeFn := Terminal()
	defer closeFn()
	assert.Same(t, os.Stderr, w)
}

func TestTerminal_NeverStdout(t *testing.T) {
	w, closeFn := Terminal()
	defer closeFn()
	assert.NotSame(t, os.Stdout, w)
}
