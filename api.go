package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Zelak312/flowinterp/flo"
	"github.com/Zelak312/flowinterp/interp"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type App struct {
	queue      *Queue
	sqlite     *Sqlite
	hub        *Hub
	poolWorker *PoolWorker
	processor  *Processor
	logger     *logrus.Entry
}

func setupRouter(app *App) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(app.logger))
	r.GET("/ping", ping)
	r.GET("/queue", app.listJobQueue)
	r.POST("/queue", app.addJobToQueue)
	r.DELETE("/queue/:id", app.delJobFromQueue)
	r.GET("/failed", app.listFailedJobs)
	r.GET("/workers", app.listWorkers)
	r.POST("/interpolate", app.interpolate)
	if app.hub != nil {
		r.GET("/ws", app.hub.HandleConnections)
	}

	return r
}

func ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

func bindJob(c *gin.Context) (Job, bool) {
	var job Job
	if err := c.ShouldBindJSON(&job); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return Job{}, false
	}

	if err := ValidateJob(&job); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return Job{}, false
	}

	return job, true
}

func (a *App) addJobToQueue(c *gin.Context) {
	job, ok := bindJob(c)
	if !ok {
		return
	}

	if _, err := a.sqlite.InsertJob(&job); err != nil {
		a.logger.Error("Failed to insert job: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	a.logger.WithFields(StructFields(job)).Debug("Job added to queue")
	a.queue.Enqueue(job)
	c.JSON(http.StatusCreated, job)
}

func (a *App) delJobFromQueue(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, ok := a.queue.RemoveByID(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found in queue"})
		return
	}

	if err := a.sqlite.DeleteJobByID(id); err != nil {
		a.logger.Error("Failed to delete job: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	a.logger.WithField("id", id).Debug("Job removed from queue")
	c.JSON(http.StatusOK, job)
}

func (a *App) listJobQueue(c *gin.Context) {
	c.JSON(http.StatusOK, a.queue.GetJobs())
}

func (a *App) listFailedJobs(c *gin.Context) {
	jobs, err := a.sqlite.GetFailedJobs()
	if err != nil {
		a.logger.Error("Failed to get failed jobs: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, jobs)
}

func (a *App) listWorkers(c *gin.Context) {
	if a.poolWorker == nil {
		c.JSON(http.StatusOK, []WorkerInfo{})
		return
	}

	c.JSON(http.StatusOK, a.poolWorker.GetWorkerInfos())
}

// interpolate runs a job right away instead of queueing it.
func (a *App) interpolate(c *gin.Context) {
	job, ok := bindJob(c)
	if !ok {
		return
	}

	result, err := a.processor.ProcessJob(c.Request.Context(), &job, nil)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error(), "output": result.Output})
		return
	}

	if result.OutputAlreadyExist {
		c.JSON(http.StatusConflict, gin.H{"error": "output already exist", "outputPath": job.OutputPath})
		return
	}

	c.JSON(http.StatusOK, gin.H{"outputPath": job.OutputPath})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrFrameNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNoFlow),
		errors.Is(err, flo.ErrInvalidFlowFile),
		errors.Is(err, interp.ErrShapeMismatch),
		errors.Is(err, interp.ErrInvalidTime),
		errors.Is(err, interp.ErrDegenerateHoleField):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
