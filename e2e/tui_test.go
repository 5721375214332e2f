//go:build e2e && unix

package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmptyShareScreen(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	require.NoError(t, tf.StartApp())
	require.True(t, tf.Ready(), "Should receive ready signal")

	require.True(t, tf.SeePlain("Devices (0)"), "Device pane should be empty")
	require.True(t, tf.SeePlain("Looking for devices..."), "Discovery should be running")
	require.True(t, tf.SeePlain("No files. Press a to add one."), "File pane should be empty")
}

func TestPreloadedFilesAreSelected(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	_, err := tf.CreateTestWorkspace()
	require.NoError(t, err)
	report, err := tf.CreateFile("report.pdf", "%PDF")
	require.NoError(t, err)
	notes, err := tf.CreateFile("notes.txt", "hello")
	require.NoError(t, err)

	require.NoError(t, tf.StartApp(report, notes))
	require.True(t, tf.Ready(), "Should receive ready signal")

	require.True(t, tf.SeePlain("report.pdf"))
	require.True(t, tf.SeePlain("notes.txt"))
	require.True(t, tf.SeePlain("Files (2/2 selected)"))

	// Deselect the first file from the file pane
	require.NoError(t, tf.SwitchPane())
	require.NoError(t, tf.Select())
	if !tf.SeePlain("Files (1/2 selected)") {
		tf.DumpTailOnFail(t, "preloaded-files", 4096)
		t.Fatal("space should deselect the file under the cursor")
	}
}

func TestAddFileFromPrompt(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	_, err := tf.CreateTestWorkspace()
	require.NoError(t, err)
	path, err := tf.CreateFile("photos/beach.jpg", "jpeg")
	require.NoError(t, err)

	require.NoError(t, tf.StartApp())
	require.True(t, tf.Ready(), "Should receive ready signal")

	require.NoError(t, tf.SendKeys(KeyAdd))
	require.NoError(t, tf.Type(path))
	require.True(t, tf.SeePlain("beach.jpg"), "Added file should be listed")
	require.True(t, tf.SeePlain("Files (1/1 selected)"))
}

func TestSendWithoutDeviceComplains(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	_, err := tf.CreateTestWorkspace()
	require.NoError(t, err)
	path, err := tf.CreateFile("a.txt", "alpha")
	require.NoError(t, err)

	require.NoError(t, tf.StartApp(path))
	require.True(t, tf.Ready(), "Should receive ready signal")

	require.NoError(t, tf.SendKeys("s"))
	require.True(t, tf.SeePlain("Select a device"), "Sending without a device should ask for one")
}

func TestHistoryPager(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	require.NoError(t, tf.StartApp())
	require.True(t, tf.Ready(), "Should receive ready signal")

	require.NoError(t, tf.SendKeys(KeyHistory))
	if !tf.SeePlain("TRANSFERS") {
		tf.DumpTailOnFail(t, "history-pager", 4096)
		t.Fatal("history pager should show the transfer table")
	}

	// q leaves the pager, the next q quits
	require.NoError(t, tf.Quit())
	require.True(t, tf.SeePlain("Devices ("), "Leaving the pager should return to the panes")
}

func TestPreloadedURIWaitsForDevice(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	require.NoError(t, tf.StartApp("--uri", "https://example.com/slides"))
	require.True(t, tf.Ready(), "Should receive ready signal")
	require.True(t, tf.SeePlain("Select a device and press u"), "Preloaded URI should be announced")

	require.NoError(t, tf.SendKeys(KeyURI))
	require.True(t, tf.SeePlain("Send URI: https://example.com/slides"), "Prompt should be prefilled")

	require.NoError(t, tf.SendKeys(KeyEsc))
	require.NoError(t, tf.Down())
	require.True(t, tf.SeePlain("Devices (0)"))
}
