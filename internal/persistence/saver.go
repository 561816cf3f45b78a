package persistence

import (
	"sync"
	"time"

	"github.com/marmos91/naming-server/internal/logger"
	"github.com/marmos91/naming-server/internal/metadata"
)

// Saver periodically snapshots a Store's registry to disk, following the
// teacher's auto-flush decorator's ticker/stopCh/doneCh worker shape.
type Saver struct {
	store    *metadata.Store
	path     string
	interval time.Duration
	onSaved  func(path string)

	stopCh    chan struct{}
	doneCh    chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewSaver builds a Saver that writes store to path every interval. onSaved,
// if non-nil, is invoked after each successful save with the saved path — the
// naming server wires the optional S3 mirror in through this hook so the
// saver itself stays ignorant of disaster recovery.
func NewSaver(store *metadata.Store, path string, interval time.Duration, onSaved func(path string)) *Saver {
	return &Saver{
		store:    store,
		path:     path,
		interval: interval,
		onSaved:  onSaved,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the periodic save worker. Idempotent.
func (s *Saver) Start() {
	s.startOnce.Do(func() {
		go s.worker()
	})
}

// Stop halts the worker after one final save. Idempotent.
func (s *Saver) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		<-s.doneCh
	})
}

func (s *Saver) worker() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			s.save()
			return
		case <-ticker.C:
			s.save()
		}
	}
}

func (s *Saver) save() {
	if err := SaveRegistry(s.path, s.store); err != nil {
		logger.Error("registry save failed", logger.Err(err), "path", s.path)
		return
	}
	logger.Debug("registry saved", "path", s.path)
	if s.onSaved != nil {
		s.onSaved(s.path)
	}
}
