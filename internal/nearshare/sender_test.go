package nearshare

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nearshare/internal/domain"
	"nearshare/internal/eventbus"
)

var self = domain.Device{ID: "me", DisplayName: "My Laptop", Owner: "sam"}

func peerAt(srv *httptest.Server) domain.Device {
	return domain.Device{
		ID:           "peer",
		DisplayName:  "Peer",
		Address:      strings.TrimPrefix(srv.URL, "http://"),
		Status:       domain.StatusAvailable,
		Capabilities: []string{domain.CapabilityNearShare},
	}
}

func memFs(t *testing.T, contents map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, body := range contents {
		require.NoError(t, afero.WriteFile(fs, path, []byte(body), 0644))
	}
	return fs
}

func TestSendURI(t *testing.T) {
	var got URIRequest
	var who Identity
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathURI, r.URL.Path)
		who = IdentityFrom(r.Header)
		assert.NotEmpty(t, r.Header.Get(HeaderTransferID))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := NewHTTPSender(nil, Options{Self: self})
	op := s.SendURI(context.Background(), peerAt(srv), "https://example.com/a?b=c")

	status, err := op.Wait()
	require.NoError(t, err)
	assert.Equal(t, domain.TransferCompleted, status)
	assert.Equal(t, "https://example.com/a?b=c", got.URI)
	assert.Equal(t, Identity{ID: "me", Name: "My Laptop", Owner: "sam"}, who)
	assert.Equal(t, domain.TransferURI, op.Transfer().Kind)
}

func TestSendRejectsUnsupportedDevices(t *testing.T) {
	s := NewHTTPSender(nil, Options{Self: self})

	busy := domain.Device{ID: "x", Address: "127.0.0.1:1", Status: domain.StatusUnavailable, Capabilities: []string{domain.CapabilityNearShare}}
	assert.False(t, s.IsSupported(busy))

	noCap := domain.Device{ID: "y", Address: "127.0.0.1:1", Status: domain.StatusAvailable}
	assert.False(t, s.IsSupported(noCap))

	op := s.SendURI(context.Background(), noCap, "https://example.com")
	status, err := op.Wait()
	assert.Equal(t, domain.TransferFailed, status)
	require.ErrorIs(t, err, ErrNotSupported)
}

func TestSendURIRejectsBadURI(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	op := NewHTTPSender(nil, Options{Self: self}).SendURI(context.Background(), peerAt(srv), "not a uri")
	status, err := op.Wait()
	assert.Equal(t, domain.TransferFailed, status)
	require.Error(t, err)
}

func TestSendFilesStreamsEveryFile(t *testing.T) {
	var mu sync.Mutex
	received := map[string]string{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathFiles, r.URL.Path)
		name, err := url.PathUnescape(r.Header.Get(HeaderFileName))
		assert.NoError(t, err)
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Equal(t, r.Header.Get(HeaderFileSize), strconv.Itoa(len(body)))

		mu.Lock()
		received[name] = string(body)
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	fs := memFs(t, map[string]string{
		"/docs/a.txt":      "alpha",
		"/docs/b c.txt":    "bravo bravo",
		"/docs/ünïcode.md": "x",
	})
	bus := eventbus.New()
	defer bus.Close()

	var progress atomic.Int32
	bus.Subscribe(eventbus.EventTransferProgress, func(eventbus.DomainEvent) { progress.Add(1) })
	completed := make(chan domain.Transfer, 1)
	bus.Subscribe(eventbus.EventTransferCompleted, func(e eventbus.DomainEvent) {
		completed <- e.(eventbus.TransferCompletedEvent).Transfer
	})

	s := NewHTTPSender(bus, Options{Self: self, Parallel: 2, ChunkSize: 1, Fs: fs})
	op := s.SendFiles(context.Background(), peerAt(srv), []domain.FileRef{"/docs/a.txt", "/docs/b c.txt", "/docs/ünïcode.md"})

	status, err := op.Wait()
	require.NoError(t, err)
	assert.Equal(t, domain.TransferCompleted, status)
	assert.Equal(t, map[string]string{"a.txt": "alpha", "b c.txt": "bravo bravo", "ünïcode.md": "x"}, received)

	sent, total := op.Progress()
	assert.Equal(t, int64(17), total)
	assert.Equal(t, total, sent)

	select {
	case tr := <-completed:
		assert.Equal(t, domain.TransferCompleted, tr.Status)
		assert.Equal(t, domain.TransferFiles, tr.Kind)
		assert.Equal(t, int64(17), tr.Bytes)
	case <-time.After(2 * time.Second):
		t.Fatal("no completion event")
	}
	assert.Positive(t, progress.Load())
}

func TestSendFilesRespectsParallelLimit(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		for {
			m := maxInFlight.Load()
			if n <= m || maxInFlight.CompareAndSwap(m, n) {
				break
			}
		}
		_, _ = io.Copy(io.Discard, r.Body)
		time.Sleep(30 * time.Millisecond)
		inFlight.Add(-1)
	}))
	defer srv.Close()

	contents := map[string]string{}
	var refs []domain.FileRef
	for _, name := range []string{"1", "2", "3", "4", "5"} {
		contents["/f/"+name] = name
		refs = append(refs, domain.FileRef("/f/"+name))
	}

	s := NewHTTPSender(nil, Options{Self: self, Parallel: 2, Fs: memFs(t, contents)})
	status, err := s.SendFiles(context.Background(), peerAt(srv), refs).Wait()
	require.NoError(t, err)
	assert.Equal(t, domain.TransferCompleted, status)
	assert.LessOrEqual(t, maxInFlight.Load(), int32(2))
}

func TestSendFilesFailsOnPeerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		http.Error(w, "disk full", http.StatusInsufficientStorage)
	}))
	defer srv.Close()

	s := NewHTTPSender(nil, Options{Self: self, Fs: memFs(t, map[string]string{"/a": "a"})})
	op := s.SendFile(context.Background(), peerAt(srv), "/a")

	status, err := op.Wait()
	assert.Equal(t, domain.TransferFailed, status)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Contains(t, op.Transfer().Error, "disk full")
}

func TestSendFileMissingFileFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	s := NewHTTPSender(nil, Options{Self: self, Fs: afero.NewMemMapFs()})
	status, err := s.SendFile(context.Background(), peerAt(srv), "/gone").Wait()
	assert.Equal(t, domain.TransferFailed, status)
	require.Error(t, err)
}

func TestSendFilesEmpty(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	status, err := NewHTTPSender(nil, Options{Self: self}).SendFiles(context.Background(), peerAt(srv), nil).Wait()
	assert.Equal(t, domain.TransferFailed, status)
	require.ErrorIs(t, err, ErrNothingToSend)
}

func TestCancelInFlightTransfer(t *testing.T) {
	started := make(chan struct{})
	var once sync.Once
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(started) })
		<-r.Context().Done()
	}))
	defer srv.Close()

	s := NewHTTPSender(nil, Options{Self: self})
	op := s.SendURI(context.Background(), peerAt(srv), "https://example.com")

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("request never reached the peer")
	}
	op.Cancel()

	select {
	case <-op.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("operation did not finish after cancel")
	}
	status, err := op.Wait()
	assert.Equal(t, domain.TransferCanceled, status)
	require.ErrorIs(t, err, context.Canceled)
}

func TestTimeoutFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	s := NewHTTPSender(nil, Options{Self: self, Timeout: 50 * time.Millisecond})
	status, err := s.SendURI(context.Background(), peerAt(srv), "https://example.com").Wait()
	assert.Equal(t, domain.TransferFailed, status)
	require.Error(t, err)
}
