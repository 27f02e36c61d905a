package uploadkit

import (
	"slices"

	"github.com/google/uuid"

	"github.com/uploadkit/uploadkit/pkg/mediakind"
)

// SetValue reconciles the tracked collection with an externally owned
// ordered locator list (controlled mode). A list structurally equal to the
// current projection is a no-op; anything else rebuilds the collection
// treating every locator as already settled, inferring media kinds from
// locator suffixes and releasing any local previews that are superseded.
// The rebuild never notifies the external owner with the value that
// triggered it, which breaks update cycles between the two flows.
func (u *Uploader) SetValue(locators []string) {
	u.mu.Lock()

	if u.closed || slices.Equal(u.projectionLocked(), locators) {
		u.mu.Unlock()
		return
	}

	previews := make([]*PreviewRef, 0, len(u.order))
	for _, e := range u.order {
		if e.preview != nil {
			previews = append(previews, e.preview)
			e.preview = nil
		}
	}

	u.rebuildLocked(locators)
	u.lastNotified = append([]string(nil), locators...)
	u.mu.Unlock()

	for _, p := range previews {
		p.Release()
	}
}

// rebuildLocked replaces the collection with settled entries, one per
// locator. In-flight pipelines for replaced entries become stale: their
// ids are gone from the index, so their continuations no-op.
func (u *Uploader) rebuildLocked(locators []string) {
	u.order = make([]*entry, 0, len(locators))
	u.index = make(map[string]*entry, len(locators))

	for _, locator := range locators {
		e := &entry{
			id:         uuid.NewString(),
			displayRef: locator,
			deleteRef:  locator,
			mediaKind:  mediakind.FromLocator(locator),
			progress:   100,
			phase:      PhaseResolved,
		}
		u.order = append(u.order, e)
		u.index[e.id] = e
	}
}
