package uploadkit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/uploadkit/uploadkit/pkg/gateway"
	"github.com/uploadkit/uploadkit/pkg/logger"
	"github.com/uploadkit/uploadkit/pkg/mediakind"
)

// Gateway is the storage backend contract the orchestrator drives.
// Satisfied by *gateway.Client.
type Gateway interface {
	RequestUploadSlot(ctx context.Context, name, mediaKind string) (gateway.Slot, error)
	TransferBytes(ctx context.Context, slot gateway.Slot, src io.Reader, size int64, mediaKind string, onProgress gateway.ProgressFunc) error
	RequestDeletion(ctx context.Context, locator string) error
}

// ErrNilGateway is returned by New when no gateway is provided.
var ErrNilGateway = errors.New("uploadkit: gateway is required")

// Uploader owns the ordered collection of tracked files and drives their
// upload and deletion pipelines. All state transitions are atomic steps
// under one mutex; every asynchronous continuation re-checks entry
// presence before mutating, so stale completions are no-ops.
type Uploader struct {
	gw        Gateway
	log       *slog.Logger
	onChange  func([]string)
	previewFn PreviewFunc
	maxCount  int
	sem       *semaphore.Weighted

	mu           sync.Mutex
	order        []*entry
	index        map[string]*entry
	lastNotified []string
	closed       bool

	// Notifications are stamped under mu but delivered after it is
	// released; the delivery mutex plus sequence numbers keep the external
	// owner from observing an older value after a newer one.
	deliverMu    sync.Mutex
	notifySeq    uint64
	deliveredSeq uint64

	wg sync.WaitGroup
}

// New creates an Uploader driving the given gateway.
func New(gw Gateway, opts ...Option) (*Uploader, error) {
	if gw == nil {
		return nil, ErrNilGateway
	}

	u := &Uploader{
		gw:    gw,
		log:   logger.NewNop(),
		index: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(u)
	}

	return u, nil
}

// AddFiles accepts a selection of files and starts one independent upload
// pipeline per accepted file. When a maximum count is configured, the
// selection is truncated so the tracked total never exceeds it; excess
// items are dropped silently. Accepted entries are visible in Value()
// before any network activity. Returns the ids of the accepted entries in
// selection order.
func (u *Uploader) AddFiles(ctx context.Context, sources ...FileSource) []string {
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return nil
	}

	accepted := sources
	if u.maxCount > 0 {
		room := u.maxCount - len(u.order)
		if room <= 0 {
			u.mu.Unlock()
			return nil
		}
		if len(accepted) > room {
			accepted = accepted[:room]
		}
	}

	ids := make([]string, 0, len(accepted))
	for _, src := range accepted {
		e := &entry{
			id:         uuid.NewString(),
			mediaKind:  src.MediaKind(),
			phase:      PhaseUploading,
			displayRef: PlaceholderRef,
		}
		if u.previewFn != nil && mediakind.IsImage(e.mediaKind) {
			if ref := u.previewFn(src); ref != nil {
				e.preview = ref
				e.displayRef = ref.URL()
			}
		}
		u.order = append(u.order, e)
		u.index[e.id] = e
		ids = append(ids, e.id)
	}

	notify := u.changedLocked()

	for i, src := range accepted {
		u.wg.Add(1)
		go u.runUpload(ctx, ids[i], src)
	}
	u.mu.Unlock()

	if notify != nil {
		notify()
	}
	return ids
}

// runUpload is the per-file pipeline: slot request, byte transfer, resolve.
// Any failure removes the entry; one file's failure never touches another's.
func (u *Uploader) runUpload(ctx context.Context, id string, src FileSource) {
	defer u.wg.Done()

	if u.sem != nil {
		if err := u.sem.Acquire(ctx, 1); err != nil {
			u.dropFailed(id, "acquire", err)
			return
		}
		defer u.sem.Release(1)
	}

	slot, err := u.gw.RequestUploadSlot(ctx, src.Name(), src.MediaKind())
	if err != nil {
		u.dropFailed(id, "slot request", err)
		return
	}

	rc, err := src.Open()
	if err != nil {
		u.dropFailed(id, "open", err)
		return
	}

	err = u.gw.TransferBytes(ctx, slot, rc, src.Size(), src.MediaKind(), func(percent int) {
		u.setProgress(id, percent)
	})
	_ = rc.Close()
	if err != nil {
		u.dropFailed(id, "transfer", err)
		return
	}

	u.resolve(id, stripAuthQuery(slot.URL))
}

// setProgress applies a progress callback to one entry. Regressions are
// no-ops: out-of-order callbacks never lower the displayed percentage.
func (u *Uploader) setProgress(id string, percent int) {
	if percent < 0 {
		percent = 0
	} else if percent > 100 {
		percent = 100
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	e, ok := u.index[id]
	if !ok || e.phase != PhaseUploading {
		return
	}
	if percent > e.progress {
		e.progress = percent
	}
}

// resolve promotes an entry to the durable locator, releasing its local
// preview. A stale resolve (entry gone or no longer uploading) is a no-op.
func (u *Uploader) resolve(id, locator string) {
	u.mu.Lock()

	e, ok := u.index[id]
	if !ok || e.phase != PhaseUploading {
		u.mu.Unlock()
		return
	}

	preview := e.preview
	e.preview = nil
	e.displayRef = locator
	e.deleteRef = locator
	e.progress = 100
	e.phase = PhaseResolved

	notify := u.changedLocked()
	u.mu.Unlock()

	if preview != nil {
		preview.Release()
	}
	if notify != nil {
		notify()
	}
}

// dropFailed removes an entry after a pipeline failure. No partial entries
// persist and nothing is retried; the failure is only logged.
func (u *Uploader) dropFailed(id, stage string, err error) {
	u.mu.Lock()

	e, ok := u.index[id]
	if !ok || e.phase != PhaseUploading {
		u.mu.Unlock()
		return
	}

	preview := e.preview
	u.removeLocked(e)
	notify := u.changedLocked()
	u.mu.Unlock()

	u.log.Warn("upload failed, entry dropped",
		slog.String("id", id),
		slog.String("stage", stage),
		slog.String("error", err.Error()))

	if preview != nil {
		preview.Release()
	}
	if notify != nil {
		notify()
	}
}

// DeleteByID requests deletion of a settled entry. The entry stays visible
// in the deleting phase until the backend acknowledges; on failure it
// reverts to resolved so the user can retry. Requests for unknown ids,
// in-flight uploads, or entries already deleting are no-ops, so the
// backend deletion call never fires twice for one entry.
func (u *Uploader) DeleteByID(ctx context.Context, id string) {
	u.mu.Lock()

	e, ok := u.index[id]
	if !ok || e.phase != PhaseResolved || u.closed {
		u.mu.Unlock()
		return
	}

	e.phase = PhaseDeleting
	locator := e.deleteRef
	u.wg.Add(1)
	u.mu.Unlock()

	go u.runDeletion(ctx, id, locator)
}

func (u *Uploader) runDeletion(ctx context.Context, id, locator string) {
	defer u.wg.Done()

	err := u.gw.RequestDeletion(ctx, locator)

	u.mu.Lock()
	e, ok := u.index[id]
	if !ok || e.phase != PhaseDeleting {
		u.mu.Unlock()
		return
	}

	if err != nil {
		e.phase = PhaseResolved
		u.mu.Unlock()
		u.log.Warn("deletion failed, entry kept",
			slog.String("id", id),
			slog.String("error", err.Error()))
		return
	}

	u.removeLocked(e)
	notify := u.changedLocked()
	u.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// Value returns the ordered projection of display references.
func (u *Uploader) Value() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.projectionLocked()
}

// Entries returns an ordered snapshot of all tracked files.
func (u *Uploader) Entries() []TrackedFile {
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make([]TrackedFile, len(u.order))
	for i, e := range u.order {
		out[i] = e.snapshot()
	}
	return out
}

// Wait blocks until every in-flight pipeline has settled. Intended for
// tests and teardown paths.
func (u *Uploader) Wait() {
	u.wg.Wait()
}

// Close releases all local preview references, clears the collection, and
// waits for in-flight pipelines to abandon themselves. The Uploader accepts
// no new work afterwards.
func (u *Uploader) Close() {
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return
	}
	u.closed = true

	previews := make([]*PreviewRef, 0, len(u.order))
	for _, e := range u.order {
		if e.preview != nil {
			previews = append(previews, e.preview)
			e.preview = nil
		}
	}
	u.order = nil
	u.index = make(map[string]*entry)
	u.mu.Unlock()

	for _, p := range previews {
		p.Release()
	}
	u.wg.Wait()
}

// removeLocked deletes an entry from both the ordered slice and the index.
func (u *Uploader) removeLocked(e *entry) {
	delete(u.index, e.id)
	if i := slices.Index(u.order, e); i >= 0 {
		u.order = slices.Delete(u.order, i, i+1)
	}
}

// projectionLocked derives the externally observable value.
func (u *Uploader) projectionLocked() []string {
	out := make([]string, 0, len(u.order))
	for _, e := range u.order {
		if e.displayRef == "" {
			continue
		}
		out = append(out, e.displayRef)
	}
	return out
}

// changedLocked compares the current projection with the last notified one
// and, when different, records it and returns the notification to fire
// after the lock is dropped. Equal projections return nil so the external
// owner is never re-notified with what it already has.
func (u *Uploader) changedLocked() func() {
	if u.onChange == nil {
		return nil
	}

	current := u.projectionLocked()
	if slices.Equal(current, u.lastNotified) {
		return nil
	}

	u.lastNotified = current
	u.notifySeq++
	seq := u.notifySeq
	fn := u.onChange

	return func() {
		u.deliverMu.Lock()
		defer u.deliverMu.Unlock()
		if seq <= u.deliveredSeq {
			return // a newer value already reached the owner
		}
		u.deliveredSeq = seq
		fn(slices.Clone(current))
	}
}

// stripAuthQuery derives the durable public locator from a signed upload
// target by removing its authorization query and fragment components.
func stripAuthQuery(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		if i := strings.IndexAny(target, "?#"); i >= 0 {
			return target[:i]
		}
		return target
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
