package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "interpolate" {
		if err := runInterpolate(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	runService(os.Args[1:])
}

func runService(args []string) {
	// cli arguments
	flags := flag.NewFlagSet("flowinterp", flag.ExitOnError)
	configPath := flags.String("config_path", "./config.yml", "Path to the config yml file")
	flags.Parse(args)

	config, err := GetConfig(*configPath)
	if err != nil {
		log.Panic(err)
	}

	if err := InitLogFile(config.LogPath); err != nil {
		log.Panic(err)
	}

	logger, err := CreateLogger("main")
	if err != nil {
		log.Panic(err)
	}

	logger.WithFields(StructFields(config)).Debug("Loaded config")
	sqlite, err := NewSqlite(config.DatabasePath)
	if err != nil {
		logger.Panic(err)
	}
	defer sqlite.Close()

	if err := sqlite.RunMigrations(); err != nil {
		logger.Panic(err)
	}

	jobs, err := sqlite.GetJobs()
	if err != nil {
		logger.Panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hubLogger, err := CreateLogger("ws")
	if err != nil {
		logger.Panic(err)
	}

	hub := NewHub(hubLogger)
	go hub.Run(ctx)

	queue := NewQueue(jobs, hub)
	estimatorLogger, err := CreateLogger("estimator")
	if err != nil {
		logger.Panic(err)
	}

	estimator := NewFlowEstimator(config.FlowEstimator, config.ProcessFolder, estimatorLogger)
	poolWorker, err := NewPoolWorker(ctx, queue, sqlite, hub, &config, estimator)
	if err != nil {
		logger.Panic(err)
	}

	go poolWorker.RunDispatcher()

	apiLogger, err := CreateLogger("api")
	if err != nil {
		logger.Panic(err)
	}

	app := &App{
		queue:      queue,
		sqlite:     sqlite,
		hub:        hub,
		poolWorker: poolWorker,
		processor:  NewProcessor(&config, estimator, apiLogger),
		logger:     apiLogger,
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", config.BindAddress, config.Port),
		Handler: setupRouter(app),
	}

	go func() {
		logger.Info("Listening on ", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Http server stopped: ", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down, waiting for workers to finish")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown http server: ", err)
	}

	poolWorker.Wait()
	logger.Info("Bye")
}

// runInterpolate is the interpolate command, it runs one job and exits.
func runInterpolate(args []string) error {
	flags := flag.NewFlagSet("interpolate", flag.ContinueOnError)
	frame0 := flags.String("frame0", "", "Path to the first frame")
	frame1 := flags.String("frame1", "", "Path to the second frame")
	flowPath := flags.String("flow", "", "Path to the .flo forward flow, estimated when empty")
	t := flags.Float64("t", DefaultTime, "Time of the interpolated frame in [0,1]")
	out := flags.String("out", "", "Path of the interpolated frame")
	configPath := flags.String("config_path", "", "Optional path to a config yml file")
	if err := flags.Parse(args); err != nil {
		return err
	}

	config, err := GetCLIConfig(*configPath)
	if err != nil {
		return err
	}

	if err := InitLogFile(config.LogPath); err != nil {
		return err
	}

	logger, err := CreateLogger("cli")
	if err != nil {
		return err
	}

	job := Job{
		Frame0Path: *frame0,
		Frame1Path: *frame1,
		FlowPath:   *flowPath,
		OutputPath: *out,
		Time:       t,
	}

	if err := ValidateJob(&job); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	estimator := NewFlowEstimator(config.FlowEstimator, config.ProcessFolder, logger)
	result, err := NewProcessor(&config, estimator, logger).ProcessJob(ctx, &job, nil)
	if err != nil {
		if result.Output != "" {
			logger.Debug("Process output: ", result.Output)
		}
		return err
	}

	if result.OutputAlreadyExist {
		return fmt.Errorf("output %s already exist", job.OutputPath)
	}

	return nil
}
