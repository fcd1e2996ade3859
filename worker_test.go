package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startPool(t *testing.T, sqlite *Sqlite, jobs []Job) (*PoolWorker, context.CancelFunc) {
	t.Helper()

	config := testConfig(t)
	config.Workers = 2

	ctx, cancel := context.WithCancel(context.Background())
	pool, err := NewPoolWorker(ctx, NewQueue(jobs, nil), sqlite, nil, config, nil)
	require.NoError(t, err)

	go pool.RunDispatcher()
	t.Cleanup(func() {
		cancel()
		pool.Wait()
	})

	return pool, cancel
}

func insertJobs(t *testing.T, sqlite *Sqlite, jobs ...Job) []Job {
	t.Helper()

	for i := range jobs {
		_, err := sqlite.InsertJob(&jobs[i])
		require.NoError(t, err)
	}

	return jobs
}

func TestPoolWorkerProcessesJobs(t *testing.T) {
	sqlite := testSqlite(t)
	jobs := insertJobs(t, sqlite, writeTestJob(t, true), writeTestJob(t, true), writeTestJob(t, true))

	pool, _ := startPool(t, sqlite, jobs)
	assert.Len(t, pool.GetWorkerInfos(), 2)

	require.Eventually(t, func() bool {
		pending, err := sqlite.GetJobs()
		return err == nil && len(pending) == 0
	}, 10*time.Second, 20*time.Millisecond)

	for _, job := range jobs {
		assertSameImage(t, job.Frame0Path, job.OutputPath)
	}

	failed, err := sqlite.GetFailedJobs()
	require.NoError(t, err)
	assert.Empty(t, failed)
}

func TestPoolWorkerFailsJobOnce(t *testing.T) {
	sqlite := testSqlite(t)
	broken := writeTestJob(t, true)
	require.NoError(t, os.Remove(broken.Frame0Path))
	jobs := insertJobs(t, sqlite, broken)

	startPool(t, sqlite, jobs)

	require.Eventually(t, func() bool {
		failed, err := sqlite.GetFailedJobs()
		return err == nil && len(failed) == 1
	}, 10*time.Second, 20*time.Millisecond)

	failed, err := sqlite.GetFailedJobs()
	require.NoError(t, err)
	assert.Equal(t, ErrFrameNotFound.Error(), failed[0].Error)
	assert.Equal(t, jobs[0].ID, failed[0].Job.ID)
}

func TestPoolWorkerStopsOnCancel(t *testing.T) {
	sqlite := testSqlite(t)
	pool, cancel := startPool(t, sqlite, nil)

	cancel()
	done := make(chan struct{})
	go func() {
		pool.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("workers did not stop after cancel")
	}
}

func TestWorkerInfoIsIdleAfterJob(t *testing.T) {
	sqlite := testSqlite(t)
	jobs := insertJobs(t, sqlite, writeTestJob(t, true))
	pool, _ := startPool(t, sqlite, jobs)

	require.Eventually(t, func() bool {
		pending, err := sqlite.GetJobs()
		return err == nil && len(pending) == 0
	}, 10*time.Second, 20*time.Millisecond)

	require.Eventually(t, func() bool {
		for _, info := range pool.GetWorkerInfos() {
			if info.Active || info.Job != nil {
				return false
			}
		}
		return true
	}, 5*time.Second, 20*time.Millisecond)
}
