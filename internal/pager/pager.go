// Package pager owns the database file and the in-memory page cache. It is
// the only part of rowstore that performs disk I/O; everything above it
// (btree, table) operates on *page.Page buffers it hands out.
package pager

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"rowstore/internal/page"
)

const pagerOpenFlags = os.O_RDWR | os.O_CREATE

// Pager owns the backing file and a fixed-size cache of page buffers. Once
// a slot is populated it stays populated for the Pager's lifetime — there
// is no eviction, matching the spec's "cache transparency" invariant.
type Pager struct {
	fs   afero.Fs
	file afero.File
	path string

	fileLength int64
	numPages   uint32
	pages      [page.MaxPages]*page.Page
}

// Open opens (creating if absent) the file at path on fs with owner-only
// permissions. It rejects a file whose length is not a whole multiple of
// page.Size — such a file is considered corrupt.
func Open(fs afero.Fs, path string) (*Pager, error) {
	f, err := fs.OpenFile(path, pagerOpenFlags, 0o600)
	if err != nil {
		return nil, errors.Wrapf(err, "pager: open %s", path)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "pager: stat %s", path)
	}

	size := info.Size()
	if size%page.Size != 0 {
		f.Close()
		return nil, errors.Errorf("pager: %s is not a whole number of %d-byte pages (corrupt file, length=%d)", path, page.Size, size)
	}

	return &Pager{
		fs:         fs,
		file:       f,
		path:       path,
		fileLength: size,
		numPages:   uint32(size / page.Size),
	}, nil
}

// NumPages reports how many pages are currently known to exist, on disk or
// newly allocated in the cache.
func (p *Pager) NumPages() uint32 {
	return p.numPages
}

// GetPage returns the buffer for page n, loading it from disk on first
// access. Fetching a page at or beyond the current on-disk extent (but
// still below MaxPages) yields a freshly zeroed buffer — this is how
// AllocateNewPage's return value gets materialized.
func (p *Pager) GetPage(n uint32) (*page.Page, error) {
	if n >= page.MaxPages {
		return nil, errors.Errorf("pager: page %d out of bounds (max %d)", n, page.MaxPages)
	}

	if p.pages[n] == nil {
		buf := &page.Page{}

		if int64(n) < p.fileLength/page.Size {
			if _, err := p.file.Seek(int64(n)*page.Size, io.SeekStart); err != nil {
				return nil, errors.Wrapf(err, "pager: seek page %d", n)
			}
			if _, err := io.ReadFull(p.file, buf[:]); err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
				return nil, errors.Wrapf(err, "pager: read page %d", n)
			}
		}

		p.pages[n] = buf
		if n >= p.numPages {
			p.numPages = n + 1
		}
	}

	return p.pages[n], nil
}

// Flush writes the full page-sized buffer for page n back to its offset.
// It is a fatal error to flush an unpopulated slot.
func (p *Pager) Flush(n uint32) error {
	buf := p.pages[n]
	if buf == nil {
		return errors.Errorf("pager: flush of empty page %d", n)
	}

	if _, err := p.file.Seek(int64(n)*page.Size, io.SeekStart); err != nil {
		return errors.Wrapf(err, "pager: seek page %d", n)
	}
	if _, err := p.file.Write(buf[:]); err != nil {
		return errors.Wrapf(err, "pager: write page %d", n)
	}
	return nil
}

// AllocateNewPage returns the next unused page number. The caller must
// follow up with GetPage(n) to actually materialize (and count) the page;
// there is no free list, so pages only ever grow monotonically.
func (p *Pager) AllocateNewPage() (uint32, error) {
	if p.numPages >= page.MaxPages {
		return 0, errors.Errorf("pager: database full (%d pages)", page.MaxPages)
	}
	return p.numPages, nil
}

// Close flushes every populated page slot below NumPages, then closes the
// underlying file. A crash before Close loses any unflushed mutation —
// there is no WAL.
func (p *Pager) Close() error {
	for n := uint32(0); n < p.numPages; n++ {
		if p.pages[n] == nil {
			continue
		}
		if err := p.Flush(n); err != nil {
			return err
		}
		p.pages[n] = nil
	}
	return p.file.Close()
}
