//go:build e2e && unix

package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
)

const scrollback = 1 << 20    // bytes of output kept per app
var binPath = "nearshare_e2e" // built by TestMain

const (
	KeyEnter   = "\r"
	KeyEsc     = "\x1b"
	KeyCtrlC   = "\x03"
	KeySpace   = " "
	KeyTab     = "\t"
	KeyDown    = "j"
	KeyQuit    = "q"
	KeyHelp    = "?"
	KeyHistory = "H"
	KeyAdd     = "a"
	KeyURI     = "u"
)

// ansiRe matches CSI, OSC, charset and keypad sequences plus carriage returns
var ansiRe = regexp.MustCompile(
	`(?:\x1b\[[0-9;?]*[ -/]*[@-~])|` +
		`(?:\x1b\][^\x07]*\x07)|` +
		`(?:\x1b[\(\)][A-Za-z])|` +
		`(?:\x1b=|\x1b>)|` +
		`\r`,
)

// screen keeps the most recent output of the app
type screen struct {
	mu   sync.Mutex
	buf  []byte
	head int
	full bool
}

func (s *screen) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range p {
		s.buf[s.head] = b
		s.head = (s.head + 1) % len(s.buf)
		if s.head == 0 {
			s.full = true
		}
	}
	return len(p), nil
}

func (s *screen) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.full {
		return string(s.buf[:s.head])
	}
	return string(s.buf[s.head:]) + string(s.buf[:s.head])
}

// TUITestFramework runs one nearshare process in a PTY
type TUITestFramework struct {
	t         *testing.T
	pty       *os.File
	tty       *os.File
	cmd       *exec.Cmd
	workspace string
	out       *screen
}

func NewTUITest(t *testing.T) *TUITestFramework {
	return &TUITestFramework{t: t, out: &screen{buf: make([]byte, scrollback)}}
}

// StartApp launches nearshare with args in a 120x40 PTY.
// Config, log and history live in the workspace, discovery on a free port.
func (tf *TUITestFramework) StartApp(args ...string) error {
	if tf.workspace == "" {
		if _, err := tf.CreateTestWorkspace(); err != nil {
			return err
		}
	}
	port, err := freeUDPPort()
	if err != nil {
		return err
	}

	tf.cmd = exec.Command(binPath, args...)
	tf.cmd.Dir = tf.workspace
	tf.cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"LC_ALL=C",
		"LANG=C",
		"HOME="+tf.workspace,
		"XDG_CONFIG_HOME="+filepath.Join(tf.workspace, ".config"),
		"NEARSHARE_LOG_FILE="+filepath.Join(tf.workspace, "nearshare.log"),
		"NEARSHARE_HISTORY_DB="+filepath.Join(tf.workspace, "history.db"),
		fmt.Sprintf("NEARSHARE_PORT=%d", port),
		"NEARSHARE_NAME=e2e",
		"NEARSHARE_E2E_TEST=1",
	)

	ptmx, tty, err := pty.Open()
	if err != nil {
		return fmt.Errorf("failed to open pty: %w", err)
	}
	if err := pty.Setsize(ptmx, &pty.Winsize{Rows: 40, Cols: 120}); err != nil {
		ptmx.Close()
		tty.Close()
		return fmt.Errorf("failed to size pty: %w", err)
	}
	tf.pty, tf.tty = ptmx, tty
	tf.cmd.Stdin, tf.cmd.Stdout, tf.cmd.Stderr = tty, tty, tty

	if err := tf.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start command: %w", err)
	}
	go func() { _, _ = io.Copy(tf.out, ptmx) }()
	return nil
}

// SendKeys writes raw keystrokes to the app
func (tf *TUITestFramework) SendKeys(keys string) error {
	tf.t.Helper()
	_, err := tf.pty.Write([]byte(keys))
	return err
}

func (tf *TUITestFramework) SendEnter() error { return tf.SendKeys(KeyEnter) }
func (tf *TUITestFramework) SendCtrlC() error { return tf.SendKeys(KeyCtrlC) }
func (tf *TUITestFramework) Quit() error      { return tf.SendKeys(KeyQuit) }
func (tf *TUITestFramework) Select() error    { return tf.SendKeys(KeySpace) }
func (tf *TUITestFramework) Down() error      { return tf.SendKeys(KeyDown) }

// SwitchPane moves focus between the device and file panes
func (tf *TUITestFramework) SwitchPane() error { return tf.SendKeys(KeyTab) }

// Type answers a prompt
func (tf *TUITestFramework) Type(text string) error {
	tf.t.Helper()
	if err := tf.SendKeys(text); err != nil {
		return err
	}
	return tf.SendEnter()
}

// Ready waits for the marker the app prints under NEARSHARE_E2E_TEST
func (tf *TUITestFramework) Ready() bool {
	tf.t.Helper()
	return tf.WaitFor(func(s string) bool { return strings.Contains(s, "__READY__") }, 5*time.Second)
}

// SeePlain waits for text to show up with escape sequences removed
func (tf *TUITestFramework) SeePlain(text string) bool {
	tf.t.Helper()
	return tf.WaitFor(func(s string) bool {
		return strings.Contains(ansiRe.ReplaceAllString(s, ""), text)
	}, 3*time.Second)
}

// WaitFor polls the output until pred holds or timeout passes
func (tf *TUITestFramework) WaitFor(pred func(string) bool, timeout time.Duration) bool {
	tf.t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		if pred(tf.out.String()) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(25 * time.Millisecond)
	}
}

// SnapshotPlain returns the output so far without escape sequences
func (tf *TUITestFramework) SnapshotPlain() string {
	return ansiRe.ReplaceAllString(tf.out.String(), "")
}

// DumpTailOnFail saves the last n bytes of plain output for debugging
func (tf *TUITestFramework) DumpTailOnFail(t *testing.T, name string, n int) {
	s := tf.SnapshotPlain()
	if len(s) > n {
		s = s[len(s)-n:]
	}
	p := filepath.Join(t.TempDir(), name+".txt")
	_ = os.WriteFile(p, []byte(s), 0644)
	t.Logf("Saved tail to %s", p)
}

// Cleanup closes the PTY, which hangs up the app, and reaps it
func (tf *TUITestFramework) Cleanup() {
	if tf.pty != nil {
		_ = tf.pty.Close()
		tf.pty = nil
	}
	if tf.tty != nil {
		_ = tf.tty.Close()
		tf.tty = nil
	}
	if tf.cmd != nil && tf.cmd.Process != nil {
		_ = tf.cmd.Process.Kill()
		_, _ = tf.cmd.Process.Wait()
		tf.cmd = nil
	}
}
