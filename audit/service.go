package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kasuganosora/weaponpaints/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	queueSize     = 1024
	batchSize     = 100
	flushInterval = 2 * time.Second
)

// Audit actions.
const (
	ActionKnifeSelect = "knife_select"
	ActionGloveSelect = "glove_select"
	ActionSkinSelect  = "skin_select"
	ActionRefresh     = "refresh"
	ActionAdminSave   = "admin_save"
)

// AuditEntry holds one customization change to be recorded.
type AuditEntry struct {
	TraceID string // generated when empty
	SteamID string
	Slot    int
	Action  string
	Payload interface{}
}

// Service logs audit entries asynchronously in batches.
type Service struct {
	db     *gorm.DB
	ch     chan *model.AuditLog
	stopCh chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
	logger *zap.Logger
}

// New creates a new audit Service and starts its background worker.
func New(db *gorm.DB, logger *zap.Logger) *Service {
	svc := &Service{
		db:     db,
		ch:     make(chan *model.AuditLog, queueSize),
		stopCh: make(chan struct{}),
		logger: logger,
	}
	svc.wg.Add(1)
	go svc.worker()
	return svc
}

// Log enqueues an audit entry for async DB write. It never blocks.
func (svc *Service) Log(entry AuditEntry) {
	payload, err := json.Marshal(entry.Payload)
	if err != nil {
		svc.logger.Warn("audit payload not serialisable",
			zap.String("action", entry.Action), zap.Error(err))
		payload = []byte("null")
	}
	traceID := entry.TraceID
	if traceID == "" {
		traceID = uuid.New().String()
	}
	record := &model.AuditLog{
		TraceID: traceID,
		SteamID: entry.SteamID,
		Slot:    entry.Slot,
		Action:  entry.Action,
		Payload: datatypes.JSON(payload),
	}
	select {
	case svc.ch <- record:
	default:
		svc.logger.Warn("audit channel full, dropping entry",
			zap.String("action", entry.Action),
			zap.String("steamid", entry.SteamID))
	}
}

// Stop flushes remaining entries and shuts down the worker.
// It blocks until the worker goroutine has finished.
func (svc *Service) Stop(_ context.Context) {
	svc.once.Do(func() { close(svc.stopCh) })
	svc.wg.Wait()
}

func (svc *Service) worker() {
	defer svc.wg.Done()
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]*model.AuditLog, 0, batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := svc.db.Create(&batch).Error; err != nil {
			svc.logger.Error("audit batch write failed",
				zap.Int("entries", len(batch)), zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case entry := <-svc.ch:
			batch = append(batch, entry)
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-svc.stopCh:
			for {
				select {
				case entry := <-svc.ch:
					batch = append(batch, entry)
					if len(batch) >= batchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}
