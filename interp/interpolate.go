package interp

import (
	"fmt"
	"io"
	"math"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// Options configures an Interpolator.
type Options struct {
	Thresholds OcclusionThresholds
	Smoother   Smoother
	// BlurPasses of Smoother over each occlusion mask, 0 disables it.
	BlurPasses int
	// Workers is the number of goroutines used by the per-pixel stages.
	Workers int
	Logger  *logrus.Entry
}

// DefaultOptions returns the options of the reference pipeline.
func DefaultOptions() Options {
	return Options{
		Thresholds: DefaultOcclusionThresholds(),
		Smoother:   GaussianSmoother{},
		BlurPasses: DefaultBlurPasses,
		Workers:    runtime.NumCPU(),
	}
}

// Interpolator runs the whole pipeline. It holds no per call state and can
// be shared between goroutines.
type Interpolator struct {
	opts   Options
	logger *logrus.Entry
}

// New returns an Interpolator, filling unset options with defaults.
func New(opts Options) *Interpolator {
	def := DefaultOptions()
	if opts.Thresholds.Match <= 0 {
		opts.Thresholds.Match = def.Thresholds.Match
	}
	if opts.Thresholds.Occlusion <= 0 {
		opts.Thresholds.Occlusion = def.Thresholds.Occlusion
	}
	if opts.Smoother == nil {
		opts.Smoother = def.Smoother
	}
	if opts.BlurPasses < 0 {
		opts.BlurPasses = def.BlurPasses
	}
	if opts.Workers <= 0 {
		opts.Workers = def.Workers
	}

	logger := opts.Logger
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = logrus.NewEntry(l)
	}

	return &Interpolator{opts: opts, logger: logger}
}

// Interpolate synthesizes the frame at time t between f0 (t=0) and f1
// (t=1) from flow0, the flow from f0 to f1. flow0 may contain holes; it is
// not modified.
func (ip *Interpolator) Interpolate(f0, f1 *Frame, flow0 *FlowField, t float64) (*Frame, error) {
	if math.IsNaN(t) || t < 0 || t > 1 {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidTime, t)
	}
	if err := checkFrames(f0, f1); err != nil {
		return nil, err
	}
	if err := checkFlow(flow0, f0.Width, f0.Height); err != nil {
		return nil, err
	}

	logger := ip.logger.WithField("t", t)
	start := time.Now()

	holes0 := FindHoles(flow0)
	logger.WithField("holes", holes0.Holes()).Debug("Found holes in flow")
	flow0, err := FillHoles(flow0, holes0)
	if err != nil {
		return nil, fmt.Errorf("filling flow holes: %w", err)
	}

	occ0, occ1, err := EstimateOcclusions(flow0, f0, f1, ip.opts.Thresholds, ip.opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("estimating occlusions: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"occ0": floats.Sum(occ0.RawMatrix().Data),
		"occ1": floats.Sum(occ1.RawMatrix().Data),
	}).Debug("Estimated occlusions")

	occ0, err = ip.opts.Smoother.Smooth(occ0, ip.opts.BlurPasses)
	if err != nil {
		return nil, fmt.Errorf("smoothing occ0: %w", err)
	}

	occ1, err = ip.opts.Smoother.Smooth(occ1, ip.opts.BlurPasses)
	if err != nil {
		return nil, fmt.Errorf("smoothing occ1: %w", err)
	}

	flowT, err := WarpFlow(flow0, f0, f1, t)
	if err != nil {
		return nil, fmt.Errorf("warping flow: %w", err)
	}

	holesT := FindHoles(flowT)
	logger.WithField("holes", holesT.Holes()).Debug("Found holes in warped flow")
	flowT, err = FillHoles(flowT, holesT)
	if err != nil {
		return nil, fmt.Errorf("filling warped flow holes: %w", err)
	}

	frame, err := Composite(flowT, f0, f1, occ0, occ1, t, ip.opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("compositing: %w", err)
	}

	logger.WithField("elapsed", time.Since(start).String()).Debug("Interpolated frame")
	return frame, nil
}
