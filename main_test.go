package main

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/Zelak312/flowinterp/flo"
	"github.com/Zelak312/flowinterp/interp"
	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const helperEstimatorEnv = "FLOWINTERP_HELPER_ESTIMATOR"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	logDir, err := os.MkdirTemp("", "flowinterp-logs")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := InitLogFile(logDir); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	code := m.Run()
	os.RemoveAll(logDir)
	os.Exit(code)
}

// TestHelperEstimator is not a real test, the test binary runs itself
// through it to act as an external flow estimator.
func TestHelperEstimator(t *testing.T) {
	mode := os.Getenv(helperEstimatorEnv)
	if mode == "" {
		t.Skip("only runs as a helper process")
	}

	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}

	if len(args) != 4 {
		fmt.Fprintf(os.Stderr, "expected frame0 frame1 flow, got %q\n", args)
		os.Exit(2)
	}

	frame0, flowPath := args[1], args[3]
	switch mode {
	case "fail":
		fmt.Fprintln(os.Stderr, "estimator exploded")
		os.Exit(3)
	case "badshape":
		if err := flo.Save(flowPath, interp.NewFlowField(2, 2)); err != nil {
			os.Exit(4)
		}
	default:
		f0, err := LoadFrame(frame0)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(5)
		}

		fmt.Println("estimated", f0.Width, "x", f0.Height)
		if err := flo.Save(flowPath, interp.NewFlowField(f0.Width, f0.Height)); err != nil {
			os.Exit(6)
		}
	}

	os.Exit(0)
}

func helperEstimator(t *testing.T, mode string) *ExternalFlowEstimator {
	t.Helper()
	t.Setenv(helperEstimatorEnv, mode)

	logger, err := CreateLogger("test_estimator")
	require.NoError(t, err)

	return NewExternalFlowEstimator(os.Args[0], []string{"-test.run=TestHelperEstimator", "--"},
		filepath.Join(t.TempDir(), "process"), logger)
}

func testConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()

	config := Config{
		DatabasePath:  filepath.Join(dir, "test.db"),
		LogPath:       dir,
		ProcessFolder: filepath.Join(dir, "process"),
	}

	require.NoError(t, verifyConfig(&config))
	return &config
}

func testSqlite(t *testing.T) *Sqlite {
	t.Helper()

	sqlite, err := NewSqlite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	require.NoError(t, sqlite.RunMigrations())
	return sqlite
}

func writeTestImage(t *testing.T, path string, width, height int) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 23), G: uint8(y * 31), B: uint8((x + y) * 7), A: 255})
		}
	}

	require.NoError(t, imaging.Save(img, path))
}

// writeTestJob writes two identical frames and a zero flow, the output of
// such a job equals the frames.
func writeTestJob(t *testing.T, withFlow bool) Job {
	t.Helper()
	dir := t.TempDir()

	job := Job{
		Frame0Path: filepath.Join(dir, "frame0.png"),
		Frame1Path: filepath.Join(dir, "frame1.png"),
		OutputPath: filepath.Join(dir, "out", "middle.png"),
	}

	writeTestImage(t, job.Frame0Path, 12, 10)
	writeTestImage(t, job.Frame1Path, 12, 10)
	if withFlow {
		job.FlowPath = filepath.Join(dir, "flow.flo")
		require.NoError(t, flo.Save(job.FlowPath, interp.NewFlowField(12, 10)))
	}

	require.NoError(t, ValidateJob(&job))
	return job
}

func TestRunInterpolate(t *testing.T) {
	t.Setenv("LOG_PATH", t.TempDir())
	job := writeTestJob(t, true)

	err := runInterpolate([]string{
		"-frame0", job.Frame0Path,
		"-frame1", job.Frame1Path,
		"-flow", job.FlowPath,
		"-t", "0.3",
		"-out", job.OutputPath,
	})
	require.NoError(t, err)
	assertSameImage(t, job.Frame0Path, job.OutputPath)
}

func TestRunInterpolateRejectsBadArguments(t *testing.T) {
	t.Setenv("LOG_PATH", t.TempDir())
	job := writeTestJob(t, true)

	err := runInterpolate([]string{"-frame0", job.Frame0Path, "-frame1", job.Frame1Path, "-out", job.OutputPath, "-t", "3"})
	require.Error(t, err)

	err = runInterpolate([]string{"-frame0", job.Frame0Path, "-frame1", job.Frame1Path, "-out", job.OutputPath})
	require.ErrorIs(t, err, ErrNoFlow)
}
