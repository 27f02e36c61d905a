package uploadkit

import (
	"bytes"
	"io"
	"sync"
)

// Phase is the lifecycle state of a tracked file. Terminal removal happens
// by deletion from the collection, not by a phase value.
type Phase string

const (
	// PhasePending is the instant between acceptance and pipeline start.
	PhasePending Phase = "pending"

	// PhaseUploading means the transfer pipeline is in flight.
	PhaseUploading Phase = "uploading"

	// PhaseResolved means the durable locator is known and the file is settled.
	PhaseResolved Phase = "resolved"

	// PhaseDeleting means a deletion request is in flight.
	PhaseDeleting Phase = "deleting"
)

// PlaceholderRef is the display reference used for files that have no
// renderable local preview while their upload is in flight.
const PlaceholderRef = "about:blank#file"

// TrackedFile is an immutable snapshot of one tracked entry.
type TrackedFile struct {
	// ID is unique for the lifetime of the Uploader and never reused.
	ID string

	// DisplayRef is the renderable locator: a transient local preview
	// reference until upload completes, then the durable remote locator.
	DisplayRef string

	// DeleteRef is the locator presented to the deletion operation.
	// Empty until the upload resolves.
	DeleteRef string

	// MediaKind is the declared content type.
	MediaKind string

	// Progress is the upload percentage, 0-100, non-decreasing per transfer.
	Progress int

	// Phase is the current lifecycle state.
	Phase Phase
}

// entry is the mutable tracked record. All access goes through the
// Uploader's mutex.
type entry struct {
	id         string
	displayRef string
	deleteRef  string
	mediaKind  string
	progress   int
	phase      Phase
	preview    *PreviewRef
}

func (e *entry) snapshot() TrackedFile {
	return TrackedFile{
		ID:         e.id,
		DisplayRef: e.displayRef,
		DeleteRef:  e.deleteRef,
		MediaKind:  e.mediaKind,
		Progress:   e.progress,
		Phase:      e.phase,
	}
}

// FileSource describes one selected file to upload.
type FileSource interface {
	// Name is the file name as selected by the user.
	Name() string

	// MediaKind is the declared content type.
	MediaKind() string

	// Size is the total byte count, used for progress percentages.
	Size() int64

	// Open returns a fresh reader over the file bytes.
	Open() (io.ReadCloser, error)
}

// bytesFile is an in-memory FileSource.
type bytesFile struct {
	name string
	kind string
	data []byte
}

// NewBytesFile wraps an in-memory byte slice as a FileSource.
func NewBytesFile(name, mediaKind string, data []byte) FileSource {
	return &bytesFile{name: name, kind: mediaKind, data: data}
}

func (f *bytesFile) Name() string      { return f.name }
func (f *bytesFile) MediaKind() string { return f.kind }
func (f *bytesFile) Size() int64       { return int64(len(f.data)) }

func (f *bytesFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

// PreviewRef is a transient local preview handle. It is released exactly
// once, either when the durable locator supersedes it or when its entry is
// removed; further Release calls are no-ops.
type PreviewRef struct {
	url     string
	release func()
	once    sync.Once
}

// NewPreviewRef creates a preview reference with an optional release hook.
func NewPreviewRef(url string, release func()) *PreviewRef {
	return &PreviewRef{url: url, release: release}
}

// URL returns the renderable reference.
func (p *PreviewRef) URL() string { return p.url }

// Release frees the underlying resource. Safe to call multiple times;
// only the first call runs the hook.
func (p *PreviewRef) Release() {
	p.once.Do(func() {
		if p.release != nil {
			p.release()
		}
	})
}

// PreviewFunc allocates a local preview reference for an image file.
// Returning nil falls back to the generic placeholder.
type PreviewFunc func(src FileSource) *PreviewRef
