// Package preview derives the visual representation of a tracked file from
// its current upload state. It is pure presentation: same inputs always
// produce the same View, and nothing here mutates orchestrator state.
package preview

import "github.com/uploadkit/uploadkit/pkg/mediakind"

// Kind selects the visual treatment for a file.
type Kind string

const (
	// KindThumbnail renders the source as an image thumbnail.
	KindThumbnail Kind = "thumbnail"

	// KindGlyph renders a generic file glyph.
	KindGlyph Kind = "glyph"
)

// View is the render model for a single tracked file.
type View struct {
	// Source is the reference to display, local preview or durable locator.
	Source string

	// Kind is thumbnail for image media, glyph for anything else.
	Kind Kind

	// ShowProgress indicates a numeric progress overlay should be drawn.
	ShowProgress bool

	// Progress is the percentage to display while ShowProgress is set.
	Progress int

	// Deleting applies the transient deletion treatment.
	Deleting bool

	// CanDelete reports whether the delete affordance is offered.
	// Suppressed during both upload and deletion.
	CanDelete bool
}

// Render builds the view for a file given its display reference, declared
// media kind, and transfer flags.
func Render(displayRef, mediaKind string, uploading bool, progress int, deleting bool) View {
	kind := KindGlyph
	if mediakind.IsImage(mediaKind) {
		kind = KindThumbnail
	}

	if progress < 0 {
		progress = 0
	} else if progress > 100 {
		progress = 100
	}

	return View{
		Source:       displayRef,
		Kind:         kind,
		ShowProgress: uploading,
		Progress:     progress,
		Deleting:     deleting,
		CanDelete:    !uploading && !deleting,
	}
}
