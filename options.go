package uploadkit

import (
	"log/slog"

	"golang.org/x/sync/semaphore"
)

// Option configures the Uploader.
type Option func(*Uploader)

// WithLogger sets the logger for pipeline diagnostics.
// Defaults to a no-op logger.
func WithLogger(log *slog.Logger) Option {
	return func(u *Uploader) {
		if log != nil {
			u.log = log
		}
	}
}

// WithOnChange registers the external owner's notification callback. It is
// invoked with the ordered locator list after every observable change, and
// never with a list equal to the previously delivered one.
func WithOnChange(fn func(locators []string)) Option {
	return func(u *Uploader) {
		u.onChange = fn
	}
}

// WithMaxCount caps the number of tracked files. Selections exceeding the
// cap are truncated silently. Zero means unlimited.
func WithMaxCount(n int) Option {
	return func(u *Uploader) {
		if n > 0 {
			u.maxCount = n
		}
	}
}

// WithPreviewFunc sets the allocator for local image previews. Without it,
// every in-flight file displays the generic placeholder.
func WithPreviewFunc(fn PreviewFunc) Option {
	return func(u *Uploader) {
		u.previewFn = fn
	}
}

// WithMaxConcurrentUploads bounds how many transfer pipelines run at once.
// Defaults to unbounded, one goroutine per file.
func WithMaxConcurrentUploads(n int) Option {
	return func(u *Uploader) {
		if n > 0 {
			u.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithValue seeds the collection from an externally owned locator list, as
// if SetValue had been called before any other operation.
func WithValue(locators []string) Option {
	return func(u *Uploader) {
		u.rebuildLocked(locators)
		u.lastNotified = append([]string(nil), locators...)
	}
}
