package preprocess

import (
	"fmt"

	"github.com/emer/etable/etensor"
)

// ChannelsFirst reorders a frame of shape [height, width, channels]
// into shape [channels, height, width] without changing its values.
// It is used for Unity visual observations, which are already scaled
// to [0, 1].
type ChannelsFirst struct{}

// Shape returns the shape of processed frames
func (ChannelsFirst) Shape(raw []int) ([]int, error) {
	h, w, c, err := imageDims(raw, 0)
	if err != nil {
		return nil, fmt.Errorf("shape: %w", err)
	}
	return []int{c, h, w}, nil
}

// Process transposes frame into channels-first order
func (ChannelsFirst) Process(frame *etensor.Float64) (*etensor.Float64,
	error) {
	h, w, c, err := imageShape(frame, 0)
	if err != nil {
		return nil, fmt.Errorf("process: %w", err)
	}

	out := etensor.NewFloat64([]int{c, h, w}, nil, nil)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for d := 0; d < c; d++ {
				out.Values[d*h*w+y*w+x] = frame.Values[(y*w+x)*c+d]
			}
		}
	}
	return out, nil
}
