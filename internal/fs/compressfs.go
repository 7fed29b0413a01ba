package fs

import (
	"bytes"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// CompressedFS wraps another FS: writes are gzip-compressed and published
// atomically, reads are decompressed.
type CompressedFS struct {
	underlying FS
}

func NewCompressedFS(base FS) *CompressedFS {
	return &CompressedFS{underlying: base}
}

// Compress gzips data at the default level.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		gz.Close()
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress reverses Compress.
func Decompress(data []byte) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gz.Close()
	return io.ReadAll(gz)
}

// IsCompressed sniffs the gzip magic header.
func IsCompressed(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}

func (c *CompressedFS) Open(path string) (io.ReadSeekCloser, error) {
	data, err := c.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &memReadSeekCloser{Reader: bytes.NewReader(data)}, nil
}

func (c *CompressedFS) ReadFile(path string) ([]byte, error) {
	raw, err := c.underlying.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decompress(raw)
}

func (c *CompressedFS) WriteFile(path string, data []byte, perm os.FileMode) error {
	packed, err := Compress(data)
	if err != nil {
		return err
	}
	return WriteFileAtomic(c.underlying, path, packed, perm)
}

// Pass-through for other operations
func (c *CompressedFS) MkdirAll(path string, perm os.FileMode) error {
	return c.underlying.MkdirAll(path, perm)
}
func (c *CompressedFS) Remove(path string) error { return c.underlying.Remove(path) }
func (c *CompressedFS) Rename(oldPath, newPath string) error {
	return c.underlying.Rename(oldPath, newPath)
}
func (c *CompressedFS) Stat(path string) (os.FileInfo, error)      { return c.underlying.Stat(path) }
func (c *CompressedFS) ReadDir(path string) ([]os.DirEntry, error) { return c.underlying.ReadDir(path) }
func (c *CompressedFS) CreateTempFile(dir, pattern string) (TempFile, error) {
	return c.underlying.CreateTempFile(dir, pattern)
}
func (c *CompressedFS) IsNotExist(err error) bool { return c.underlying.IsNotExist(err) }
func (c *CompressedFS) IsDir(path string) bool    { return c.underlying.IsDir(path) }
func (c *CompressedFS) Exists(path string) bool   { return c.underlying.Exists(path) }
