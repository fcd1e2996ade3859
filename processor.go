package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/Zelak312/flowinterp/flo"
	"github.com/Zelak312/flowinterp/interp"
	"github.com/sirupsen/logrus"
)

var (
	ErrFrameNotFound = errors.New("source frame not found")
	ErrNoFlow        = errors.New("job has no flow file and no flow estimator is configured")
)

const (
	StepLoadingFrames = "Loading frames"
	StepLoadingFlow   = "Loading flow"
	StepEstimateFlow  = "Estimating flow"
	StepInterpolating = "Interpolating frame"
	StepSaving        = "Saving output"
)

// StepFunc receives the current step and its progress in percent.
type StepFunc func(step string, progress float64)

type ProcessJobOutput struct {
	// OutputAlreadyExist is set when the job was skipped because its
	// output exists and deleteOutputIfAlreadyExist is off.
	OutputAlreadyExist bool
	// Output is what an external estimator printed.
	Output string
}

// Processor turns one job into an interpolated frame on disk.
type Processor struct {
	estimator                  FlowEstimator
	interpolator               *interp.Interpolator
	deleteOutputIfAlreadyExist bool
	logger                     *logrus.Entry
}

func NewProcessor(config *Config, estimator FlowEstimator, logger *logrus.Entry) *Processor {
	return &Processor{
		estimator:                  estimator,
		interpolator:               interp.New(config.InterpolatorOptions(logger)),
		deleteOutputIfAlreadyExist: *config.DeleteOutputIfAlreadyExist,
		logger:                     logger,
	}
}

func (p *Processor) ProcessJob(ctx context.Context, job *Job, step StepFunc) (ProcessJobOutput, error) {
	if step == nil {
		step = func(string, float64) {}
	}

	p.logger.WithFields(StructFields(job)).Info("Processing job")
	for _, framePath := range []string{job.Frame0Path, job.Frame1Path} {
		exist, err := PathExist(framePath)
		if err != nil {
			return ProcessJobOutput{}, err
		}

		if !exist {
			p.logger.Error("Frame to process wasn't found: ", framePath)
			return ProcessJobOutput{}, ErrFrameNotFound
		}
	}

	outputExist, err := PathExist(job.OutputPath)
	if err != nil {
		return ProcessJobOutput{}, err
	}

	if outputExist && !p.deleteOutputIfAlreadyExist {
		p.logger.WithField("outputPath", job.OutputPath).Info("Output already exist, skipping")
		return ProcessJobOutput{OutputAlreadyExist: true}, nil
	}

	baseOutputPath := filepath.Dir(job.OutputPath)
	p.logger.WithField("baseOutputPath", baseOutputPath).
		Debug("Creating output folder if it doesn't exist")
	if err := os.MkdirAll(baseOutputPath, os.ModePerm); err != nil {
		return ProcessJobOutput{}, err
	}

	step(StepLoadingFrames, 0)
	f0, err := LoadFrame(job.Frame0Path)
	if err != nil {
		return ProcessJobOutput{}, err
	}

	f1, err := LoadFrame(job.Frame1Path)
	if err != nil {
		return ProcessJobOutput{}, err
	}

	flow, output, err := p.flowFor(ctx, job, f0, f1, step)
	if err != nil {
		return ProcessJobOutput{Output: output}, err
	}

	if ctx.Err() != nil {
		return ProcessJobOutput{Output: output}, ctx.Err()
	}

	step(StepInterpolating, 50)
	frame, err := p.interpolator.Interpolate(f0, f1, flow, job.GetTime())
	if err != nil {
		return ProcessJobOutput{Output: output}, err
	}

	step(StepSaving, 90)
	if err := SaveFrame(job.OutputPath, frame); err != nil {
		return ProcessJobOutput{Output: output}, err
	}

	step(StepSaving, 100)
	p.logger.WithField("outputPath", job.OutputPath).Info("Finished processing job")
	return ProcessJobOutput{Output: output}, nil
}

func (p *Processor) flowFor(ctx context.Context, job *Job, f0, f1 *interp.Frame, step StepFunc) (*interp.FlowField, string, error) {
	if job.FlowPath != "" {
		step(StepLoadingFlow, 25)
		flow, err := flo.Load(job.FlowPath)
		return flow, "", err
	}

	if p.estimator == nil {
		return nil, "", ErrNoFlow
	}

	step(StepEstimateFlow, 25)
	flow, err := p.estimator.EstimateFlow(ctx, f0, f1)
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) {
			return nil, cmdErr.Output, err
		}

		return nil, "", err
	}

	return flow, "", nil
}
