// Package receiver makes this machine a nearshare peer: it accepts URIs and
// files over HTTP and announces itself to watchers on the network.
package receiver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"nearshare/internal/discovery"
	"nearshare/internal/domain"
	"nearshare/internal/eventbus"
	"nearshare/internal/nearshare"
)

// Options configures a receiver
type Options struct {
	Self           domain.Device
	Listen         string // e.g. ":47475"
	Directory      string // where files are stored
	AllowAnonymous bool   // accept senders with a different owner
	AcceptURIs     bool
	Fs             afero.Fs
	// Announcer, when set, runs alongside the server
	Announcer *discovery.Announcer
}

// Receiver stores incoming shares
type Receiver struct {
	bus  eventbus.EventBus
	opts Options
	fs   afero.Fs

	mu   sync.Mutex // guards name selection and uris
	uris []string
}

// New creates a receiver. bus may be nil.
func New(bus eventbus.EventBus, opts Options) *Receiver {
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Receiver{bus: bus, opts: opts, fs: fs}
}

// Handler serves the nearshare endpoints
func (r *Receiver) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+nearshare.PathURI, r.handleURI)
	mux.HandleFunc("POST "+nearshare.PathFiles, r.handleFile)
	mux.HandleFunc("GET "+nearshare.PathInfo, r.handleInfo)
	return mux
}

// Run listens on Options.Listen and serves until ctx is done
func (r *Receiver) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", r.opts.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", r.opts.Listen, err)
	}
	return r.Serve(ctx, ln)
}

// Serve serves on ln, together with the announcer if one is configured
func (r *Receiver) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: r.Handler(), ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Receiver: serving on %s into %s", ln.Addr(), r.opts.Directory)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if r.opts.Announcer != nil {
		g.Go(func() error {
			return r.opts.Announcer.Run(gctx)
		})
	}
	return g.Wait()
}

// URIs returns the URIs received so far
func (r *Receiver) URIs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.uris))
	copy(out, r.uris)
	return out
}

func (r *Receiver) authorized(from nearshare.Identity) bool {
	if r.opts.AllowAnonymous {
		return true
	}
	return from.Owner != "" && from.Owner == r.opts.Self.Owner
}

func (r *Receiver) handleURI(w http.ResponseWriter, req *http.Request) {
	from := nearshare.IdentityFrom(req.Header)
	if !r.authorized(from) {
		http.Error(w, "sender not allowed", http.StatusForbidden)
		return
	}
	if !r.opts.AcceptURIs {
		http.Error(w, "uri shares are disabled", http.StatusForbidden)
		return
	}

	var body nearshare.URIRequest
	if err := json.NewDecoder(io.LimitReader(req.Body, 64*1024)).Decode(&body); err != nil {
		http.Error(w, "malformed request", http.StatusBadRequest)
		return
	}
	u, err := url.Parse(body.URI)
	if err != nil || u.Scheme == "" {
		http.Error(w, "invalid uri", http.StatusBadRequest)
		return
	}

	r.mu.Lock()
	r.uris = append(r.uris, body.URI)
	r.mu.Unlock()

	log.Printf("Receiver: uri from %s: %s", senderName(from), body.URI)
	r.publish(eventbus.ReceivedEvent{From: senderName(from), Kind: domain.TransferURI, Item: body.URI})
	w.WriteHeader(http.StatusAccepted)
}

func (r *Receiver) handleFile(w http.ResponseWriter, req *http.Request) {
	from := nearshare.IdentityFrom(req.Header)
	if !r.authorized(from) {
		http.Error(w, "sender not allowed", http.StatusForbidden)
		return
	}

	name, err := cleanName(req.Header.Get(nearshare.HeaderFileName))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	declared := int64(-1)
	if v := req.Header.Get(nearshare.HeaderFileSize); v != "" {
		declared, err = strconv.ParseInt(v, 10, 64)
		if err != nil || declared < 0 {
			http.Error(w, "invalid size", http.StatusBadRequest)
			return
		}
	}

	path, f, err := r.create(name)
	if err != nil {
		log.Printf("Receiver: cannot store %s: %v", name, err)
		http.Error(w, "cannot store file", http.StatusInsufficientStorage)
		return
	}

	written, err := io.Copy(f, req.Body)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && declared >= 0 && written != declared {
		err = fmt.Errorf("got %d of %d bytes", written, declared)
	}
	if err != nil {
		_ = r.fs.Remove(path)
		log.Printf("Receiver: incomplete %s from %s: %v", name, senderName(from), err)
		http.Error(w, "incomplete upload", http.StatusBadRequest)
		return
	}

	log.Printf("Receiver: stored %s (%d bytes) from %s", path, written, senderName(from))
	r.publish(eventbus.ReceivedEvent{From: senderName(from), Kind: domain.TransferFile, Item: path, Size: written})
	w.WriteHeader(http.StatusCreated)
}

func (r *Receiver) handleInfo(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(nearshare.InfoFor(r.opts.Self))
}

// create opens a new file for name in the receive directory, never replacing
// an existing one: report.pdf, report-1.pdf, report-2.pdf, ...
func (r *Receiver) create(name string) (string, afero.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.fs.MkdirAll(r.opts.Directory, 0755); err != nil {
		return "", nil, err
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 0; ; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d%s", stem, i, ext)
		}
		path := filepath.Join(r.opts.Directory, candidate)
		if _, err := r.fs.Stat(path); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return "", nil, err
		}
		f, err := r.fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
		if err != nil {
			return "", nil, err
		}
		return path, f, nil
	}
}

func (r *Receiver) publish(e eventbus.DomainEvent) {
	if r.bus != nil {
		r.bus.Publish(e)
	}
}

// cleanName turns the header value into a bare file name
func cleanName(raw string) (string, error) {
	name, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("invalid file name")
	}
	name = filepath.Base(filepath.Clean("/" + strings.ReplaceAll(name, "\\", "/")))
	if name == "" || name == "/" || name == "." || name == ".." {
		return "", fmt.Errorf("missing file name")
	}
	return name, nil
}

func senderName(id nearshare.Identity) string {
	if id.Name != "" {
		return id.Name
	}
	if id.ID != "" {
		return id.ID
	}
	return "unknown"
}
