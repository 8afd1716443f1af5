// Package replay drives recorded pointer traces through a swipe deck on a
// virtual clock.
package replay

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultFrameInterval = 16 * time.Millisecond

type Point struct {
	X   float64 `yaml:"x"`
	Y   float64 `yaml:"y"`
	TMS int64   `yaml:"t_ms"`
}

// Gesture is one press-drag-release. Lost ends it with a capture loss
// instead of a pointer up.
type Gesture struct {
	Points []Point `yaml:"points"`
	Lost   bool    `yaml:"lost"`
}

type Trace struct {
	ViewportWidth float64       `yaml:"viewport_width"`
	FrameInterval time.Duration `yaml:"frame_interval"`
	Gestures      []Gesture     `yaml:"gestures"`
}

func LoadTrace(path string) (Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Trace{}, fmt.Errorf("read trace: %w", err)
	}
	return ParseTrace(data)
}

func ParseTrace(data []byte) (Trace, error) {
	var trace Trace
	if err := yaml.Unmarshal(data, &trace); err != nil {
		return Trace{}, fmt.Errorf("parse trace yaml: %w", err)
	}
	return trace.normalize()
}

// normalize rejects traces that cannot be played and fills the default
// frame interval.
func (t Trace) normalize() (Trace, error) {
	if len(t.Gestures) == 0 {
		return Trace{}, errors.New("trace has no gestures")
	}
	for i, g := range t.Gestures {
		if len(g.Points) == 0 {
			return Trace{}, fmt.Errorf("gesture %d has no points", i)
		}
	}
	if t.FrameInterval <= 0 {
		t.FrameInterval = defaultFrameInterval
	}
	return t, nil
}
