//go:build e2e && unix

package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// exited reports whether the app ends within timeout
func (tf *TUITestFramework) exited(done <-chan error, timeout time.Duration) bool {
	select {
	case err := <-done:
		tf.t.Logf("app exited: %v", err)
		return true
	case <-time.After(timeout):
		return false
	}
}

func (tf *TUITestFramework) watchExit() <-chan error {
	done := make(chan error, 1)
	cmd := tf.cmd
	go func() { done <- cmd.Wait() }()
	return done
}

func TestQuitKeyExits(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	require.NoError(t, tf.StartApp())
	require.True(t, tf.Ready(), "Should receive ready signal")
	require.True(t, tf.SeePlain("nearshare"), "Should show the title")

	done := tf.watchExit()
	require.NoError(t, tf.Quit())
	if tf.exited(done, 1500*time.Millisecond) {
		return
	}

	tf.DumpTailOnFail(t, "quit-failure", 4096)
	require.NoError(t, tf.SendCtrlC())
	require.True(t, tf.exited(done, 750*time.Millisecond), "app ignored both q and ctrl+c")
	t.Error("q did not quit, ctrl+c did")
}

func TestCtrlCExits(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	require.NoError(t, tf.StartApp())
	require.True(t, tf.Ready(), "Should receive ready signal")

	done := tf.watchExit()
	require.NoError(t, tf.SendCtrlC())
	require.True(t, tf.exited(done, 2*time.Second), "app did not exit on ctrl+c")
	require.FileExists(t, filepath.Join(tf.workspace, "history.db"), "history database should be created on start")
}
