package main

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/Zelak312/flowinterp/flo"
	"github.com/disintegration/imaging"
)

const DefaultTime = 0.5

type Job struct {
	ID         int64  `json:"id"`
	Frame0Path string `json:"frame0Path" binding:"required"`
	Frame1Path string `json:"frame1Path" binding:"required"`
	// FlowPath is optional, the configured estimator is used when empty.
	FlowPath   string   `json:"flowPath"`
	OutputPath string   `json:"outputPath" binding:"required"`
	Time       *float64 `json:"time"`
}

type FailedJob struct {
	ID     int64  `json:"id"`
	Output string `json:"output"`
	Error  string `json:"error"`
	Job    Job    `json:"job"`
}

// GetTime returns the job time, DefaultTime when unset.
func (j *Job) GetTime() float64 {
	if j.Time == nil {
		return DefaultTime
	}

	return *j.Time
}

// ValidateJob rejects jobs the worker could never complete and sets the
// default time.
func ValidateJob(job *Job) error {
	if job.Frame0Path == "" || job.Frame1Path == "" {
		return errors.New("both frame paths are required")
	}

	if job.OutputPath == "" {
		return errors.New("output path is required")
	}

	if _, err := imaging.FormatFromFilename(job.OutputPath); err != nil {
		return fmt.Errorf("output path %s: %w", job.OutputPath, err)
	}

	if job.FlowPath != "" && !strings.EqualFold(filepath.Ext(job.FlowPath), flo.Extension) {
		return fmt.Errorf("flow path %s must have the %s extension", job.FlowPath, flo.Extension)
	}

	if job.Time == nil {
		defaultVal := DefaultTime
		job.Time = &defaultVal
	}

	t := *job.Time
	if math.IsNaN(t) || t < 0 || t > 1 {
		return fmt.Errorf("time must be within [0,1], got %g", t)
	}

	return nil
}
