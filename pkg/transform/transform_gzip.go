package transform

import (
	"bytes"
	"fmt"
	"io"

	"xlib-go/pkg/buffers"

	"github.com/klauspost/compress/gzip"
)

type gzipTransform struct{ level int }

func NewGzipTransform() Transform { return &gzipTransform{level: gzip.DefaultCompression} }

func (g *gzipTransform) Apply(data []byte) ([]byte, error) {
	buf := buffers.ScratchPool.Get()
	defer buffers.ScratchPool.Put(buf)
	gz, err := gzip.NewWriterLevel(buf, g.level)
	if err != nil {
		return nil, fmt.Errorf("gzip apply (compress): %w", err)
	}
	if _, err := gz.Write(data); err != nil {
		_ = gz.Close()
		return nil, fmt.Errorf("gzip apply (compress): failed to write data: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("gzip apply (compress): failed to close writer: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}

func (g *gzipTransform) Reverse(data []byte) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip reverse (decompress): failed to create reader: %w", err)
	}
	defer gz.Close()
	buf := buffers.ScratchPool.Get()
	defer buffers.ScratchPool.Put(buf)
	if _, err := io.Copy(buf, gz); err != nil {
		return nil, fmt.Errorf("gzip reverse (decompress): failed to read data: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}
