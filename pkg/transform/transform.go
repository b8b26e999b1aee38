// Package transform provides reversible byte transforms (compression and
// encryption) and a Processor that chains them. The kvstore package runs
// snapshot values through a Processor on Save and back on Load.
package transform

import (
	"fmt"
	"strings"
)

type Transform interface {
	Apply(data []byte) ([]byte, error)
	Reverse(data []byte) ([]byte, error)
}

type noOpTransform struct{}

func NewNoOpTransform() Transform                            { return &noOpTransform{} }
func (n *noOpTransform) Apply(data []byte) ([]byte, error)   { return data, nil }
func (n *noOpTransform) Reverse(data []byte) ([]byte, error) { return data, nil }

// Names accepted by FromName.
const (
	None = "none"
	Gzip = "gzip"
	Zstd = "zstd"
)

// FromName returns the compression transform called name. An empty name means
// None. Zstd may carry a level suffix: "zstd:fastest", "zstd:best".
func FromName(name string) (Transform, error) {
	base, level, _ := strings.Cut(strings.ToLower(strings.TrimSpace(name)), ":")
	switch base {
	case "", None:
		return NewNoOpTransform(), nil
	case Gzip:
		return NewGzipTransform(), nil
	case Zstd:
		return NewZstdTransformNamed(level)
	}
	return nil, fmt.Errorf("transform: unknown compression %q", name)
}

// NewPipeline builds the snapshot pipeline: compression first, then AES-GCM
// when passphrase is not empty.
func NewPipeline(compression, passphrase string) (*Processor, error) {
	c, err := FromName(compression)
	if err != nil {
		return nil, err
	}
	pipeline := []Transform{c}
	if passphrase != "" {
		enc, err := NewAESGCMTransform(passphrase)
		if err != nil {
			return nil, err
		}
		pipeline = append(pipeline, enc)
	}
	return NewProcessor(pipeline)
}
