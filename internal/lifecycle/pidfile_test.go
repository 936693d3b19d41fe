package lifecycle

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIDFile_AcquireRelease(t *testing.T) {
	p := New(filepath.Join(t.TempDir(), "run", "trader.pid"))

	pid, err := p.Read()
	require.NoError(t, err)
	assert.Zero(t, pid)

	require.NoError(t, p.Acquire())
	pid, err = p.Read()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	require.NoError(t, p.Release())
	_, err = os.Stat(p.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestPIDFile_StaleFileReplaced(t *testing.T) {
	p := New(filepath.Join(t.TempDir(), "trader.pid"))

	cmd := exec.Command("true")
	require.NoError(t, cmd.Run())
	require.NoError(t, os.WriteFile(p.Path, []byte(strconv.Itoa(cmd.Process.Pid)), 0o644))

	require.NoError(t, p.Acquire())
	pid, _ := p.Read()
	assert.Equal(t, os.Getpid(), pid)
}

func TestPIDFile_AlreadyRunningAndTerminate(t *testing.T) {
	p := New(filepath.Join(t.TempDir(), "trader.pid"))

	cmd := exec.Command("sleep", "30")
	require.NoError(t, cmd.Start())
	done := make(chan struct{})
	go func() {
		cmd.Wait()
		close(done)
	}()
	t.Cleanup(func() { cmd.Process.Kill() })

	require.NoError(t, os.WriteFile(p.Path, []byte(strconv.Itoa(cmd.Process.Pid)), 0o644))
	assert.ErrorIs(t, p.Acquire(), ErrAlreadyRunning)

	pid, err := p.TerminateRunning(5 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, cmd.Process.Pid, pid)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("process not terminated")
	}
}

func TestPIDFile_SignalWaitsForExit(t *testing.T) {
	p := New(filepath.Join(t.TempDir(), "trader.pid"))

	cmd := exec.Command("sleep", "30")
	require.NoError(t, cmd.Start())
	go cmd.Wait()
	t.Cleanup(func() { cmd.Process.Kill() })
	require.NoError(t, os.WriteFile(p.Path, []byte(strconv.Itoa(cmd.Process.Pid)), 0o644))

	// sleep has no SIGUSR1 handler, so the default action ends it
	pid, err := p.Signal(syscall.SIGUSR1, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, cmd.Process.Pid, pid)
}

func TestPIDFile_TerminateNothing(t *testing.T) {
	p := New(filepath.Join(t.TempDir(), "trader.pid"))
	pid, err := p.TerminateRunning(time.Second)
	assert.NoError(t, err)
	assert.Zero(t, pid)
}

func TestPIDFile_Garbage(t *testing.T) {
	p := New(filepath.Join(t.TempDir(), "trader.pid"))
	require.NoError(t, os.WriteFile(p.Path, []byte("not a pid"), 0o644))
	_, err := p.Read()
	assert.Error(t, err)
}
