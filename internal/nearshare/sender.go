package nearshare

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"nearshare/internal/domain"
	"nearshare/internal/eventbus"
	"nearshare/internal/files"
)

var (
	// ErrNotSupported is returned for devices that cannot receive shares
	ErrNotSupported = errors.New("device does not support nearshare")
	// ErrNothingToSend is returned by SendFiles with an empty list
	ErrNothingToSend = errors.New("nothing to send")
)

// Sender shares URIs and files with a device
type Sender interface {
	IsSupported(device domain.Device) bool
	SendURI(ctx context.Context, device domain.Device, uri string) *Operation
	SendFile(ctx context.Context, device domain.Device, file domain.FileRef) *Operation
	SendFiles(ctx context.Context, device domain.Device, refs []domain.FileRef) *Operation
}

// Options configures the HTTP sender
type Options struct {
	Self      domain.Device
	Parallel  int           // files in flight for SendFiles
	Timeout   time.Duration // per operation, zero for none
	ChunkSize int           // bytes between progress events
	Client    *http.Client
	Fs        afero.Fs
}

// HTTPSender sends to peers over the nearshare HTTP protocol
type HTTPSender struct {
	bus    eventbus.EventBus
	opts   Options
	client *http.Client
	fs     afero.Fs
	now    func() time.Time
}

// NewHTTPSender creates a sender. bus may be nil.
func NewHTTPSender(bus eventbus.EventBus, opts Options) *HTTPSender {
	if opts.Parallel < 1 {
		opts.Parallel = 1
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 64 * 1024
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &HTTPSender{bus: bus, opts: opts, client: client, fs: fs, now: time.Now}
}

// IsSupported reports whether device advertises nearshare and is available
func (s *HTTPSender) IsSupported(device domain.Device) bool {
	return device.Address != "" &&
		device.Status == domain.StatusAvailable &&
		device.HasCapability(domain.CapabilityNearShare)
}

// SendURI shares a URI
func (s *HTTPSender) SendURI(ctx context.Context, device domain.Device, uri string) *Operation {
	t := s.newTransfer(device, domain.TransferURI, []string{uri})
	if !s.IsSupported(device) {
		return s.fail(t, fmt.Errorf("%w: %s", ErrNotSupported, device.DisplayName))
	}
	if u, err := url.Parse(uri); err != nil || u.Scheme == "" {
		return s.fail(t, fmt.Errorf("invalid uri %q", uri))
	}

	return s.start(ctx, t, 0, func(ctx context.Context, op *Operation) error {
		body, err := json.Marshal(URIRequest{URI: uri})
		if err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint(device, PathURI), bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		s.identify(req, t.ID)
		return s.do(req, uri)
	})
}

// SendFile shares one file
func (s *HTTPSender) SendFile(ctx context.Context, device domain.Device, file domain.FileRef) *Operation {
	return s.sendFiles(ctx, device, domain.TransferFile, []domain.FileRef{file})
}

// SendFiles shares several files, at most Parallel at a time.
// The first failure cancels the files still in flight.
func (s *HTTPSender) SendFiles(ctx context.Context, device domain.Device, refs []domain.FileRef) *Operation {
	return s.sendFiles(ctx, device, domain.TransferFiles, refs)
}

func (s *HTTPSender) sendFiles(ctx context.Context, device domain.Device, kind domain.TransferKind, refs []domain.FileRef) *Operation {
	items := make([]string, len(refs))
	var total int64
	for i, ref := range refs {
		items[i] = ref.Path()
		if size := files.DisplaySize(s.fs, ref); size > 0 {
			total += size
		}
	}
	t := s.newTransfer(device, kind, items)

	if !s.IsSupported(device) {
		return s.fail(t, fmt.Errorf("%w: %s", ErrNotSupported, device.DisplayName))
	}
	if len(refs) == 0 {
		return s.fail(t, ErrNothingToSend)
	}

	return s.start(ctx, t, total, func(ctx context.Context, op *Operation) error {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.opts.Parallel)
		for _, ref := range refs {
			g.Go(func() error {
				return s.sendFile(gctx, op, device, ref)
			})
		}
		return g.Wait()
	})
}

func (s *HTTPSender) sendFile(ctx context.Context, op *Operation, device domain.Device, ref domain.FileRef) error {
	f, err := s.fs.Open(ref.Path())
	if err != nil {
		return fmt.Errorf("%w: %s: %v", files.ErrResourceUnavailable, ref.Path(), err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", files.ErrResourceUnavailable, ref.Path(), err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", files.ErrNotRegular, ref.Path())
	}

	body := &progressReader{r: f, op: op, chunk: int64(s.opts.ChunkSize), publish: s.publish}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint(device, PathFiles), body)
	if err != nil {
		return err
	}
	req.ContentLength = info.Size()
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set(HeaderFileName, url.PathEscape(files.Name(ref)))
	req.Header.Set(HeaderFileSize, strconv.FormatInt(info.Size(), 10))
	s.identify(req, op.ID())

	if err := s.do(req, files.Name(ref)); err != nil {
		return err
	}
	log.Printf("Sender: sent %s (%s) to %s", files.Name(ref), files.HumanSize(info.Size()), device.DisplayName)
	return nil
}

func (s *HTTPSender) do(req *http.Request, what string) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send %s: %w", what, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("peer rejected %s: %s: %s", what, resp.Status, bytes.TrimSpace(msg))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (s *HTTPSender) start(ctx context.Context, t domain.Transfer, total int64, run func(context.Context, *Operation) error) *Operation {
	var cancel context.CancelFunc
	if s.opts.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	op := newOperation(t.ID, cancel)
	op.total.Store(total)

	log.Printf("Sender: starting %s transfer %s to %s", t.Kind, t.ID, t.DeviceName)
	s.publish(eventbus.TransferStartedEvent{Transfer: t})

	go func() {
		defer cancel()
		err := run(ctx, op)

		t.Bytes = op.sent.Load()
		t.FinishedAt = s.now()
		switch {
		case err == nil:
			t.Status = domain.TransferCompleted
		case errors.Is(ctx.Err(), context.Canceled):
			t.Status = domain.TransferCanceled
			err = context.Canceled
		default:
			t.Status = domain.TransferFailed
			t.Error = err.Error()
		}

		log.Printf("Sender: transfer %s finished: %s", t.ID, t.Status)
		op.finish(t, err)
		s.publish(eventbus.TransferCompletedEvent{Transfer: t})
	}()

	return op
}

func (s *HTTPSender) fail(t domain.Transfer, err error) *Operation {
	log.Printf("Sender: %v", err)
	t.FinishedAt = s.now()
	op := finishedOperation(t, err)
	s.publish(eventbus.TransferCompletedEvent{Transfer: op.Transfer()})
	return op
}

func (s *HTTPSender) newTransfer(device domain.Device, kind domain.TransferKind, items []string) domain.Transfer {
	return domain.Transfer{
		ID:         uuid.NewString(),
		DeviceID:   device.ID,
		DeviceName: device.DisplayName,
		Kind:       kind,
		Items:      items,
		Status:     domain.TransferPending,
		StartedAt:  s.now(),
	}
}

func (s *HTTPSender) identify(req *http.Request, transferID string) {
	Identity{ID: s.opts.Self.ID, Name: s.opts.Self.DisplayName, Owner: s.opts.Self.Owner}.apply(req.Header)
	req.Header.Set(HeaderTransferID, transferID)
}

func (s *HTTPSender) publish(e eventbus.DomainEvent) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}

func endpoint(device domain.Device, path string) string {
	return "http://" + device.Address + path
}

// progressReader counts bytes into its operation and publishes progress every chunk bytes
type progressReader struct {
	r       io.Reader
	op      *Operation
	chunk   int64
	pending int64
	publish func(eventbus.DomainEvent)
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.op.sent.Add(int64(n))
		p.pending += int64(n)
	}
	if p.pending >= p.chunk || (err == io.EOF && p.pending > 0) {
		p.flush()
	}
	return n, err
}

func (p *progressReader) flush() {
	p.pending = 0
	sent, total := p.op.Progress()
	p.publish(eventbus.TransferProgressEvent{TransferID: p.op.ID(), Sent: sent, Total: total})
}
