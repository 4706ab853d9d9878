package telegram

import (
	"context"
	"sync"
	"time"

	"github.com/relaydesk/relaydesk/internal/shared/goroutine"
	"github.com/relaydesk/relaydesk/internal/shared/logger"
)

// defaultWorkerCount is the number of concurrent workers for processing
// updates. Updates are dispatched to workers by user affinity
// (userID % workerCount) so messages from the same user are processed in
// order.
const defaultWorkerCount = 4

// defaultPollTimeout is the long polling timeout in seconds.
const defaultPollTimeout = 30

// UpdateHandler defines the interface for handling Telegram updates
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update *Update) error
}

// PollingService handles long polling for Telegram updates
type PollingService struct {
	botService   *BotService
	handler      UpdateHandler
	logger       logger.Interface
	pollTimeout  int
	stopChan     chan struct{}
	cancelFunc   context.CancelFunc // cancels in-flight HTTP requests on shutdown
	wg           sync.WaitGroup
	lastUpdateID int64
	workerCount  int
	isRunning    bool
	runningMu    sync.Mutex
}

// NewPollingService creates a new polling service.
func NewPollingService(botService *BotService, handler UpdateHandler, log logger.Interface, pollTimeout int) *PollingService {
	if pollTimeout <= 0 {
		pollTimeout = defaultPollTimeout
	}
	return &PollingService{
		botService:  botService,
		handler:     handler,
		logger:      log,
		pollTimeout: pollTimeout,
		stopChan:    make(chan struct{}),
		workerCount: defaultWorkerCount,
	}
}

// Start begins polling for updates
func (s *PollingService) Start(ctx context.Context) error {
	s.runningMu.Lock()
	if s.isRunning {
		s.runningMu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	pollCtx, cancel := context.WithCancel(ctx)
	s.cancelFunc = cancel
	s.runningMu.Unlock()

	// A webhook and long polling are mutually exclusive.
	if err := s.botService.DeleteWebhook(); err != nil {
		s.logger.Warnw("failed to delete webhook before polling", "error", err)
	}

	s.logger.Infow("starting telegram polling service",
		"timeout", s.pollTimeout,
		"workers", s.workerCount,
	)

	s.wg.Add(1)
	goroutine.SafeGo(s.logger, "telegram-poll-loop", func() {
		s.pollLoop(pollCtx)
	})

	return nil
}

// Stop stops the polling service and waits for in-flight updates
func (s *PollingService) Stop() {
	s.runningMu.Lock()
	if !s.isRunning {
		s.runningMu.Unlock()
		return
	}
	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.runningMu.Unlock()

	close(s.stopChan)
	s.wg.Wait()
	s.logger.Infow("telegram polling service stopped")
}

func (s *PollingService) pollLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		default:
			s.poll(ctx)
		}
	}
}

func (s *PollingService) poll(ctx context.Context) {
	// First poll uses offset 0 to drain pending updates; subsequent polls
	// acknowledge everything up to lastUpdateID.
	offset := int64(0)
	if s.lastUpdateID > 0 {
		offset = s.lastUpdateID + 1
	}

	updates, err := s.botService.GetUpdates(ctx, offset, s.pollTimeout)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Errorw("failed to get telegram updates", "error", err)
		// Back off briefly so a persistent API failure does not spin.
		select {
		case <-time.After(5 * time.Second):
		case <-s.stopChan:
		case <-ctx.Done():
		}
		return
	}

	if len(updates) == 0 {
		return
	}

	s.processBatch(ctx, updates)
}

// processBatch dispatches a batch of updates to worker buckets by user
// affinity and waits for all workers before advancing the offset, so a crash
// never skips unprocessed updates.
func (s *PollingService) processBatch(ctx context.Context, updates []Update) {
	buckets := make([][]Update, s.workerCount)
	maxUpdateID := s.lastUpdateID

	for _, u := range updates {
		idx := s.userAffinity(&u)
		buckets[idx] = append(buckets[idx], u)
		if u.UpdateID > maxUpdateID {
			maxUpdateID = u.UpdateID
		}
	}

	var batchWg sync.WaitGroup
	for i, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		batchWg.Add(1)
		workerIdx := i
		workerBucket := bucket
		goroutine.SafeGo(s.logger, "telegram-worker-batch", func() {
			s.processWorkerBatch(ctx, &batchWg, workerIdx, workerBucket)
		})
	}
	batchWg.Wait()

	s.lastUpdateID = maxUpdateID
}

// processWorkerBatch processes a slice of updates sequentially within one
// worker goroutine, preserving per-user ordering.
func (s *PollingService) processWorkerBatch(ctx context.Context, wg *sync.WaitGroup, workerIdx int, updates []Update) {
	defer wg.Done()

	for i := range updates {
		u := &updates[i]
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Errorw("panic while handling update",
						"worker", workerIdx,
						"update_id", u.UpdateID,
						"panic", r,
					)
				}
			}()
			if err := s.handler.HandleUpdate(ctx, u); err != nil {
				s.logger.Errorw("failed to handle update",
					"worker", workerIdx,
					"update_id", u.UpdateID,
					"error", err,
				)
			}
		}()
	}
}

// userAffinity maps an update to a worker index by user ID. Same user always
// goes to the same worker.
func (s *PollingService) userAffinity(u *Update) int {
	var userID int64
	switch {
	case u.Message != nil && u.Message.From != nil:
		userID = u.Message.From.ID
	case u.CallbackQuery != nil && u.CallbackQuery.From != nil:
		userID = u.CallbackQuery.From.ID
	default:
		return 0
	}

	idx := int(userID % int64(s.workerCount))
	if idx < 0 {
		idx += s.workerCount
	}
	return idx
}
