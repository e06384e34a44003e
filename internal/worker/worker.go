package worker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/job"
	"github.com/akolanti/DocRAG/internal/metrics"
	"github.com/akolanti/DocRAG/internal/rag"
	"github.com/akolanti/DocRAG/pkg/logger_i"
)

type Pool struct {
	jobService  *job.Service
	ragService  rag.Service
	stop        chan bool
	group       *sync.WaitGroup
	current     int64
	minWorkers  int64
	maxWorkers  int64
	idleTimeout time.Duration
	jobTimeout  time.Duration
	logger      *logger_i.Logger
}

func NewPool(jobService *job.Service, ragService rag.Service, settings config.WorkerSettings) *Pool {
	p := &Pool{
		jobService:  jobService,
		ragService:  ragService,
		minWorkers:  config.MinWorkerCount,
		maxWorkers:  settings.MaxWorkers,
		idleTimeout: settings.IdleTimeout,
		jobTimeout:  settings.JobTimeout,
		logger:      logger_i.NewLogger("WorkerPool"),
	}
	if p.maxWorkers < p.minWorkers {
		p.maxWorkers = p.minWorkers
	}
	if p.idleTimeout <= 0 {
		p.idleTimeout = config.IdleWorkerTimeout
	}
	if p.jobTimeout <= 0 {
		p.jobTimeout = config.JobTimeout
	}
	return p
}

// Start launches the dispatcher. Closing stop retires every worker; wait on group for them.
func (p *Pool) Start(stop chan bool, group *sync.WaitGroup) {
	p.stop = stop
	p.group = group
	p.logger.Info("Initializing worker pool", "max", p.maxWorkers)
	p.createWorker()
	go p.dispatcher()
}

func (p *Pool) WorkerCount() int64 {
	return atomic.LoadInt64(&p.current)
}

func (p *Pool) dispatcher() {
	p.logger.Info("Dispatcher started")
	for {
		select {
		case <-p.jobService.DispatcherChannel:
			if atomic.LoadInt64(&p.current) < p.maxWorkers {
				p.logger.Info("Creating new worker", "workerCount", atomic.LoadInt64(&p.current))
				p.createWorker()
			}
		case <-p.stop:
			return
		}
	}
}

func (p *Pool) createWorker() {
	p.group.Add(1)
	atomic.AddInt64(&p.current, 1)
	metrics.IncrementActiveWorkerCount()
	go p.worker()
	p.logger.Debug("Created new worker")
}

func (p *Pool) worker() {
	idle := time.NewTimer(p.idleTimeout)
	defer idle.Stop()
	for {
		select {
		case currentJob := <-p.jobService.JobChannel:
			metrics.DecrementJobsInQueue()
			p.executeJob(currentJob)
			idle.Reset(p.idleTimeout)

		case <-p.stop:
			p.removeWorker("Stop worker signal received")
			return

		case <-idle.C:
			if p.tryRetire() {
				return
			}
			idle.Reset(p.idleTimeout)
		}
	}
}

// tryRetire removes an idle worker unless only minWorkers are left.
func (p *Pool) tryRetire() bool {
	for {
		count := atomic.LoadInt64(&p.current)
		if count <= p.minWorkers {
			return false
		}
		if atomic.CompareAndSwapInt64(&p.current, count, count-1) {
			p.workerDone("Idle worker timeout", count-1)
			return true
		}
	}
}

func (p *Pool) removeWorker(reason string) {
	p.workerDone(reason, atomic.AddInt64(&p.current, -1))
}

func (p *Pool) workerDone(reason string, count int64) {
	metrics.DecrementActiveWorkerCount()
	p.logger.Info("Removed worker", "reason", reason, "workerCount", count)
	p.group.Done()
}
