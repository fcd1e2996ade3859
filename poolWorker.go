package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type PoolWorker struct {
	ctx         context.Context
	queue       *Queue
	sqlite      *Sqlite
	hub         *Hub
	config      *Config
	logger      *logrus.Entry
	workChannel chan Job
	waitGroup   sync.WaitGroup
	workers     []*Worker
}

func NewPoolWorker(ctx context.Context, queue *Queue, sqlite *Sqlite, hub *Hub,
	config *Config, estimator FlowEstimator) (*PoolWorker, error) {
	logger, err := CreateLogger("pool")
	if err != nil {
		return nil, err
	}

	p := &PoolWorker{
		ctx:         ctx,
		queue:       queue,
		sqlite:      sqlite,
		hub:         hub,
		config:      config,
		logger:      logger,
		workChannel: make(chan Job),
	}

	for i := 0; i < config.Workers; i++ {
		workerLogger, err := CreateLogger(fmt.Sprintf("worker_%d", i))
		if err != nil {
			return nil, err
		}

		processor := NewProcessor(config, estimator, workerLogger)
		p.workers = append(p.workers, NewWorker(i, workerLogger, p, processor))
	}

	return p, nil
}

// RunDispatcher feeds queued jobs to the workers until the context is
// canceled. Jobs never handed out stay pending in the database.
func (p *PoolWorker) RunDispatcher() {
	p.waitGroup.Add(len(p.workers))
	for _, w := range p.workers {
		go func(w *Worker) {
			defer p.waitGroup.Done()
			w.start()
		}(w)
	}

	defer close(p.workChannel)
	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug("Dispatcher stopped: ", p.ctx.Err())
			return
		default:
			job, ok := p.queue.Peek()
			if !ok {
				time.Sleep(100 * time.Millisecond)
				continue
			}

			select {
			case p.workChannel <- job:
				p.queue.RemoveByID(job.ID)
			case <-p.ctx.Done():
				p.logger.Debug("Dispatcher stopped: ", p.ctx.Err())
				return
			}
		}
	}
}

// Wait blocks until every worker returned.
func (p *PoolWorker) Wait() {
	p.waitGroup.Wait()
}

func (p *PoolWorker) GetWorkerInfos() []WorkerInfo {
	infos := make([]WorkerInfo, 0, len(p.workers))
	for _, w := range p.workers {
		infos = append(infos, w.GetInfo())
	}

	return infos
}
