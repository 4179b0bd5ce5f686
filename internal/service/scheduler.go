package service

import (
	"context"
	"log"
	"sync"
	"time"
)

// SaveConfig holds configuration for the save scheduler.
type SaveConfig struct {
	// SaveInterval is how often dirty documents are written.
	// Default: 5 minutes
	SaveInterval time.Duration

	// PruneInterval is how often expired cooldowns are dropped.
	// Default: 30 minutes
	PruneInterval time.Duration
}

// Pruner drops expired cooldowns and returns how many went.
type Pruner interface {
	PruneCooldowns() int
}

// RunResult is the outcome of an immediate save.
type RunResult struct {
	Saved  int `json:"saved"`
	Pruned int `json:"pruned"`
}

// SaveScheduler periodically saves state and prunes cooldowns.
type SaveScheduler struct {
	data   *DataService
	pruner Pruner
	config SaveConfig

	saveTicker  *time.Ticker
	pruneTicker *time.Ticker
	stopCh      chan struct{}
	done        chan struct{}
	stopOnce    sync.Once
	isRunning   bool
	mu          sync.Mutex
}

// NewSaveScheduler creates a new save scheduler.
func NewSaveScheduler(data *DataService, pruner Pruner, config SaveConfig) *SaveScheduler {
	if config.SaveInterval <= 0 {
		config.SaveInterval = 5 * time.Minute
	}
	if config.PruneInterval <= 0 {
		config.PruneInterval = 30 * time.Minute
	}

	return &SaveScheduler{
		data:   data,
		pruner: pruner,
		config: config,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start begins the scheduler.
func (s *SaveScheduler) Start() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.saveTicker = time.NewTicker(s.config.SaveInterval)
	s.pruneTicker = time.NewTicker(s.config.PruneInterval)
	s.mu.Unlock()

	log.Printf("[SaveScheduler] Started - Save: %v, Prune: %v", s.config.SaveInterval, s.config.PruneInterval)

	go s.run()
}

func (s *SaveScheduler) run() {
	defer close(s.done)
	for {
		select {
		case <-s.saveTicker.C:
			s.runSave()
		case <-s.pruneTicker.C:
			s.runPrune()
		case <-s.stopCh:
			log.Printf("[SaveScheduler] Stopped")
			return
		}
	}
}

func (s *SaveScheduler) runSave() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	saved, err := s.data.Save(ctx)
	if err != nil {
		log.Printf("[SaveScheduler] Error during save: %v", err)
		return
	}
	if saved > 0 {
		log.Printf("[SaveScheduler] Saved %d document(s)", saved)
	}
}

func (s *SaveScheduler) runPrune() {
	if n := s.pruner.PruneCooldowns(); n > 0 {
		log.Printf("[SaveScheduler] Pruned %d expired cooldown(s)", n)
	}
}

// Stop stops the scheduler and waits for an in-flight save to finish.
func (s *SaveScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		running := s.isRunning
		if s.saveTicker != nil {
			s.saveTicker.Stop()
			s.pruneTicker.Stop()
		}
		close(s.stopCh)
		s.isRunning = false
		s.mu.Unlock()

		if running {
			<-s.done
		}
	})
}

// RunNow prunes cooldowns and saves immediately.
func (s *SaveScheduler) RunNow(ctx context.Context) (RunResult, error) {
	res := RunResult{Pruned: s.pruner.PruneCooldowns()}
	saved, err := s.data.Save(ctx)
	res.Saved = saved
	return res, err
}
