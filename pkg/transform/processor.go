package transform

import (
	"errors"
	"fmt"
)

type Processor struct {
	// Applied 0..N on the way out, N..0 on the way back.
	transforms []Transform
}

// NewProcessor creates a processor with a defined pipeline.
// Requires at least one transform. Use NewNoOpTransform() for an explicitly empty pipeline.
func NewProcessor(pipeline []Transform) (*Processor, error) {
	if len(pipeline) == 0 {
		return nil, errors.New("transform: processor requires at least one transform; use NewNoOpTransform() for an empty pipeline")
	}
	s := make([]Transform, len(pipeline))
	copy(s, pipeline)
	return &Processor{transforms: s}, nil
}

// Encode applies the pipeline in forward order.
func (p *Processor) Encode(payload []byte) ([]byte, error) {
	var err error
	cur := payload
	for i, t := range p.transforms {
		cur, err = t.Apply(cur)
		if err != nil {
			return nil, fmt.Errorf("encode: transform %d (%T) Apply failed: %w", i, t, err)
		}
	}
	return cur, nil
}

// Decode applies the pipeline in reverse order.
func (p *Processor) Decode(payload []byte) ([]byte, error) {
	var err error
	cur := payload
	for i := len(p.transforms) - 1; i >= 0; i-- {
		t := p.transforms[i]
		cur, err = t.Reverse(cur)
		if err != nil {
			return nil, fmt.Errorf("decode: transform %d (%T) Reverse failed: %w", i, t, err)
		}
	}
	return cur, nil
}
