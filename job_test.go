package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestValidateJob(t *testing.T) {
	valid := func() Job {
		return Job{Frame0Path: "a.png", Frame1Path: "b.png", OutputPath: "out.png"}
	}

	tests := []struct {
		name    string
		modify  func(j *Job)
		wantErr bool
	}{
		{"valid", func(j *Job) {}, false},
		{"valid with flow", func(j *Job) { j.FlowPath = "flow.FLO" }, false},
		{"jpeg output", func(j *Job) { j.OutputPath = "out.jpg" }, false},
		{"time zero", func(j *Job) { j.Time = floatPtr(0) }, false},
		{"time one", func(j *Job) { j.Time = floatPtr(1) }, false},
		{"missing frame0", func(j *Job) { j.Frame0Path = "" }, true},
		{"missing frame1", func(j *Job) { j.Frame1Path = "" }, true},
		{"missing output", func(j *Job) { j.OutputPath = "" }, true},
		{"unknown output format", func(j *Job) { j.OutputPath = "out.xyz" }, true},
		{"flow without flo extension", func(j *Job) { j.FlowPath = "flow.bin" }, true},
		{"negative time", func(j *Job) { j.Time = floatPtr(-0.1) }, true},
		{"time above one", func(j *Job) { j.Time = floatPtr(1.5) }, true},
		{"nan time", func(j *Job) { j.Time = floatPtr(math.NaN()) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := valid()
			tt.modify(&job)

			err := ValidateJob(&job)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.NotNil(t, job.Time)
		})
	}
}

func TestJobDefaultTime(t *testing.T) {
	job := Job{Frame0Path: "a.png", Frame1Path: "b.png", OutputPath: "out.png"}
	assert.Equal(t, DefaultTime, job.GetTime())

	require.NoError(t, ValidateJob(&job))
	assert.Equal(t, DefaultTime, *job.Time)

	job.Time = floatPtr(0.25)
	assert.Equal(t, 0.25, job.GetTime())
}
