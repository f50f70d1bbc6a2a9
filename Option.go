package rlenv

import (
	"time"

	"github.com/samuelfneumann/rlenv/preprocess"
	"github.com/sirupsen/logrus"
)

// DefaultFrameSleep is the pause after each rendered frame
const DefaultFrameSleep = 20 * time.Millisecond

// DefaultStackDepth is the number of frames stacked by visual adapters
const DefaultStackDepth = 4

// Option configures an adapter at construction
type Option func(*options)

type options struct {
	oneHot         int
	normalize      bool
	normalizeScale float64
	actionBins     []int
	frameSleep     time.Duration
	stackDepth     int
	preprocessor   preprocess.Preprocessor
	trainMode      bool
	logger         *logrus.Entry
}

func defaultOptions() *options {
	return &options{
		frameSleep: DefaultFrameSleep,
		trainMode:  true,
	}
}

func buildOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithOneHot one-hot encodes discrete observations into vectors of
// the given width. A width of 0 disables the encoding.
func WithOneHot(width int) Option {
	return func(o *options) {
		o.oneHot = width
	}
}

// WithNormalize divides observations by the first upper bound of the
// simulator's observation space
func WithNormalize() Option {
	return func(o *options) {
		o.normalize = true
	}
}

// WithNormalizeScale divides observations by scale
func WithNormalizeScale(scale float64) Option {
	return func(o *options) {
		o.normalize = true
		o.normalizeScale = scale
	}
}

// WithActionBins treats actions as indices into a uniform grid over a
// continuous action space, with bins[d] points along dimension d
func WithActionBins(bins ...int) Option {
	return func(o *options) {
		o.actionBins = append([]int(nil), bins...)
	}
}

// WithFrameSleep sets the pause after each rendered frame
func WithFrameSleep(d time.Duration) Option {
	return func(o *options) {
		o.frameSleep = d
	}
}

// WithFrameStack pre-processes each observation with p and stacks the
// last depth frames into the state. A nil p stacks observations as
// they are.
func WithFrameStack(depth int, p preprocess.Preprocessor) Option {
	return func(o *options) {
		o.stackDepth = depth
		o.preprocessor = p
	}
}

// WithTrainMode sets the train mode Unity simulations are reset in
func WithTrainMode(train bool) Option {
	return func(o *options) {
		o.trainMode = train
	}
}

// WithLogger sets the logger of an adapter
func WithLogger(logger *logrus.Entry) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// pipeline builds the state pipeline described by the options. high
// is the upper bound of the observation space, used for normalization
// when no explicit scale is given.
func (o *options) pipeline(high func() []float64) (Pipeline, error) {
	var p Pipeline
	if o.oneHot > 0 {
		p = append(p, OneHot{Width: o.oneHot})
	}
	if o.normalize {
		scale := o.normalizeScale
		if scale == 0 {
			var err error
			if scale, err = normalizeScale(high()); err != nil {
				return nil, err
			}
		}
		p = append(p, Normalize{Scale: scale})
	}
	if o.preprocessor != nil {
		p = append(p, Preprocess{o.preprocessor})
	}
	if o.stackDepth > 0 {
		stack, err := NewStack(o.stackDepth)
		if err != nil {
			return nil, err
		}
		p = append(p, stack)
	}
	return p, nil
}

func (o *options) log(variant string) *logrus.Entry {
	if o.logger != nil {
		return o.logger.WithField("adapter", variant)
	}
	return logrus.WithField("adapter", variant)
}
