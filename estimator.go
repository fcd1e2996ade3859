package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Zelak312/flowinterp/flo"
	"github.com/Zelak312/flowinterp/interp"
	"github.com/Zelak312/flowinterp/opencv"
	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
)

// FlowEstimator computes the forward flow from f0 to f1.
type FlowEstimator interface {
	EstimateFlow(ctx context.Context, f0, f1 *interp.Frame) (*interp.FlowField, error)
}

// CommandError keeps the output of a failed external command so it can be
// stored along the failure.
type CommandError struct {
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	return e.Err.Error()
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExternalFlowEstimator runs a binary called as
// binary [arguments...] frame0.png frame1.png flow.flo
// inside a temporary folder under ProcessFolder.
type ExternalFlowEstimator struct {
	Binary        string
	Arguments     []string
	ProcessFolder string
	logger        *logrus.Entry
}

func NewExternalFlowEstimator(binary string, arguments []string, processFolder string, logger *logrus.Entry) *ExternalFlowEstimator {
	return &ExternalFlowEstimator{
		Binary:        binary,
		Arguments:     arguments,
		ProcessFolder: processFolder,
		logger:        logger,
	}
}

func (e *ExternalFlowEstimator) EstimateFlow(ctx context.Context, f0, f1 *interp.Frame) (*interp.FlowField, error) {
	if err := os.MkdirAll(e.ProcessFolder, os.ModePerm); err != nil {
		return nil, err
	}

	// Each call gets its own folder so concurrent jobs never share files
	workFolder, err := os.MkdirTemp(e.ProcessFolder, "flow_")
	if err != nil {
		return nil, err
	}

	e.logger.WithField("workFolder", workFolder).Debug("Created estimator work folder")
	defer func() {
		if err := os.RemoveAll(workFolder); err != nil {
			e.logger.Warn("Failed to remove estimator work folder: ", err)
		}
	}()

	frame0Path := filepath.Join(workFolder, "frame0.png")
	frame1Path := filepath.Join(workFolder, "frame1.png")
	flowPath := filepath.Join(workFolder, "flow"+flo.Extension)

	if err := imaging.Save(f0.Image(), frame0Path); err != nil {
		return nil, err
	}

	if err := imaging.Save(f1.Image(), frame1Path); err != nil {
		return nil, err
	}

	args := append(append([]string{}, e.Arguments...), frame0Path, frame1Path, flowPath)
	cmd := NewCommandContext(ctx, e.logger, e.Binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, &CommandError{Output: output, Err: fmt.Errorf("flow estimator failed: %w", err)}
	}

	flow, err := flo.Load(flowPath)
	if err != nil {
		return nil, &CommandError{Output: output, Err: err}
	}

	if flow.Width != f0.Width || flow.Height != f0.Height {
		return nil, fmt.Errorf("%w: estimated flow is %dx%d, frames are %dx%d",
			interp.ErrShapeMismatch, flow.Width, flow.Height, f0.Width, f0.Height)
	}

	return flow, nil
}

// NewFlowEstimator returns the configured estimator, nil when jobs must
// bring their own flow file.
func NewFlowEstimator(options FlowEstimatorOptions, processFolder string, logger *logrus.Entry) FlowEstimator {
	switch options.Kind {
	case EstimatorExternal:
		return NewExternalFlowEstimator(options.Binary, options.EstimatorArguments(), processFolder, logger)
	case EstimatorOpenCV:
		return opencv.Farneback{}
	default:
		return nil
	}
}
