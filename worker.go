package main

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

type Worker struct {
	id         int
	logger     *logrus.Entry
	poolWorker *PoolWorker
	processor  *Processor
	sync.RWMutex

	workerInfo WorkerInfo
}

type WorkerInfo struct {
	ID       int     `json:"id"`
	Active   bool    `json:"active"`
	Step     string  `json:"step"`
	Progress float64 `json:"progress"`
	Job      *Job    `json:"job"`
}

func NewWorker(id int, logger *logrus.Entry, poolWorker *PoolWorker, processor *Processor) *Worker {
	return &Worker{
		id:         id,
		logger:     logger,
		poolWorker: poolWorker,
		processor:  processor,
		workerInfo: WorkerInfo{ID: id},
	}
}

func (w *Worker) start() {
	for job := range w.poolWorker.workChannel {
		current := job
		w.Lock()
		w.workerInfo.Active = true
		w.workerInfo.Job = &current
		w.Unlock()

		err := w.doWork(&current)
		if err != nil {
			w.logger.Warn(err)
		}

		w.Lock()
		w.workerInfo = WorkerInfo{ID: w.id}
		w.Unlock()
		w.sendUpdate()
	}
}

func (w *Worker) doWork(job *Job) error {
	output, err := w.processor.ProcessJob(w.poolWorker.ctx, job, w.updateStep)
	if w.poolWorker.ctx.Err() != nil {
		// Canceled jobs stay pending and run again on the next start
		w.logger.Debug("Ctx was canceled, leaving job pending: ", w.poolWorker.ctx.Err())
		return nil
	}

	if err != nil {
		w.logger.WithFields(StructFields(job)).Error("Error processing job: ", err)
		if output.Output != "" {
			w.logger.Debug("Process output: ", output.Output)
		}

		// The pipeline is deterministic, a retry would fail the same way
		if failErr := w.failJob(job, output.Output, err); failErr != nil {
			return errors.Join(err, failErr)
		}

		return err
	}

	if err := w.poolWorker.sqlite.MarkJobAsDone(job); err != nil {
		w.logger.Error("Failed to mark job as done: ", err)
		return err
	}

	return nil
}

func (w *Worker) failJob(job *Job, output string, failError error) error {
	w.logger.WithFields(StructFields(job)).Info("Job failed, removing it from queue")
	err := w.poolWorker.sqlite.FailJob(job, output, failError.Error())
	if err != nil {
		w.logger.WithFields(StructFields(job)).Error("Failed to fail the job: ", err)
		return err
	}

	return nil
}

func (w *Worker) updateStep(step string, progress float64) {
	w.Lock()
	w.workerInfo.Step = step
	w.workerInfo.Progress = progress
	w.Unlock()

	w.sendUpdate()
}

func (w *Worker) sendUpdate() {
	packet := WsWorkerProgress{
		WsBaseMessage: WsBaseMessage{
			Type: "worker_progress",
		},
		WorkerInfo: w.GetInfo(),
	}

	if w.poolWorker.hub != nil {
		w.poolWorker.hub.BroadcastMessage(packet)
	}
}

func (w *Worker) GetInfo() WorkerInfo {
	w.RLock() // Shared lock for reading
	defer w.RUnlock()

	return w.workerInfo
}
