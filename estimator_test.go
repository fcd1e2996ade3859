package main

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/Zelak312/flowinterp/interp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExternalFlowEstimator(t *testing.T) {
	estimator := helperEstimator(t, "ok")
	f0 := interp.NewFrame(9, 7)
	f1 := interp.NewFrame(9, 7)

	flow, err := estimator.EstimateFlow(context.Background(), f0, f1)
	require.NoError(t, err)
	assert.Equal(t, 9, flow.Width)
	assert.Equal(t, 7, flow.Height)

	// work folders are removed once the flow is loaded
	entries, err := os.ReadDir(estimator.ProcessFolder)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExternalFlowEstimatorFailure(t *testing.T) {
	estimator := helperEstimator(t, "fail")
	f := interp.NewFrame(4, 4)

	_, err := estimator.EstimateFlow(context.Background(), f, f)
	require.Error(t, err)

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Contains(t, cmdErr.Output, "estimator exploded")
}

func TestExternalFlowEstimatorShapeMismatch(t *testing.T) {
	estimator := helperEstimator(t, "badshape")
	f := interp.NewFrame(5, 5)

	_, err := estimator.EstimateFlow(context.Background(), f, f)
	assert.ErrorIs(t, err, interp.ErrShapeMismatch)
}

func TestExternalFlowEstimatorCanceled(t *testing.T) {
	estimator := helperEstimator(t, "ok")
	f := interp.NewFrame(4, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := estimator.EstimateFlow(ctx, f, f)
	assert.Error(t, err)
}

func TestNewFlowEstimator(t *testing.T) {
	assert.Nil(t, NewFlowEstimator(FlowEstimatorOptions{Kind: EstimatorNone}, "", nil))

	estimator := NewFlowEstimator(FlowEstimatorOptions{Kind: EstimatorExternal, Binary: "raft", Arguments: "-a b"}, "proc", nil)
	external, ok := estimator.(*ExternalFlowEstimator)
	require.True(t, ok)
	assert.Equal(t, "raft", external.Binary)
	assert.Equal(t, []string{"-a", "b"}, external.Arguments)
	assert.Equal(t, "proc", external.ProcessFolder)
}
