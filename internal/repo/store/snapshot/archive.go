package snapshot

import (
	"archive/tar"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/gzip"
)

// Archive writes the snapshot as a tar.gz stream. Entry times are fixed so
// the same snapshot always yields the same archive bytes.
func (e *Engine) Archive(hash string, w io.Writer) error {
	m, err := e.Load(hash)
	if err != nil {
		return err
	}

	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)
	epoch := time.Unix(0, 0).UTC()

	for _, entry := range m.Files {
		data, err := e.Content(entry)
		if err != nil {
			return err
		}
		hdr := &tar.Header{
			Name:    entry.Path,
			Mode:    0o644,
			Size:    int64(len(data)),
			ModTime: epoch,
			Format:  tar.FormatPAX,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("archive %q: %w", entry.Path, err)
		}
		if _, err := tw.Write(data); err != nil {
			return fmt.Errorf("archive %q: %w", entry.Path, err)
		}
	}

	if err := tw.Close(); err != nil {
		return err
	}
	return gz.Close()
}
