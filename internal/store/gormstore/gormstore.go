// Package gormstore implements the store.Store interface on GORM, backed by
// SQLite on-device or Postgres when a server is reachable. Writes are
// serialized by a store-level mutex; write volume is human-paced.
package gormstore

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/treemark/anchor/internal/logging"
	"github.com/treemark/anchor/internal/model"
	"github.com/treemark/anchor/internal/model/convert"
	"github.com/treemark/anchor/internal/reconstruct"
	"github.com/treemark/anchor/internal/store"
	"github.com/treemark/anchor/pkg/core"

	"gorm.io/gorm"
)

// Dependencies holds all dependencies for the GORM store.
type Dependencies struct {
	DB         *gorm.DB
	LogManager *logging.SlogManager

	// SkipChainVerify disables chain verification on load. Verification is
	// on by default so a corrupted chain fails loudly instead of drifting
	// through reconstruction.
	SkipChainVerify bool
}

// Backend implements store.Store using GORM.
type Backend struct {
	deps Dependencies
	mu   sync.Mutex
}

// Compile-time interface check
var _ store.Store = (*Backend)(nil)

// New creates a new GORM store backend.
func New(deps Dependencies) *Backend {
	return &Backend{deps: deps}
}

// Init migrates the schema.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return fmt.Errorf("gormstore: no DB injected")
	}
	if err := b.deps.DB.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (b *Backend) Close() error {
	sqlDB, err := b.deps.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetByOriginID returns the session bound to the marker with its points in
// ascending point-number order, or store.ErrSessionNotFound.
func (b *Backend) GetByOriginID(originID string) (*core.Session, error) {
	var gs model.Session
	err := b.deps.DB.Where("origin_id = ?", originID).First(&gs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	err = b.deps.DB.
		Where("session_origin_id = ?", originID).
		Order("point_number asc").
		Find(&gs.Points).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load points: %w", err)
	}

	session := convert.SessionToCore(gs)

	if !b.deps.SkipChainVerify {
		if err := reconstruct.VerifyChain(session.Points); err != nil {
			return nil, fmt.Errorf("session %s: %w", originID, err)
		}
	}

	return &session, nil
}

// Create inserts a new session record. Fails with store.ErrDuplicateOrigin
// if one already exists for the origin; callers wanting get-or-create
// semantics check first.
func (b *Backend) Create(session *core.Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var count int64
	err := b.deps.DB.Model(&model.Session{}).
		Where("origin_id = ?", session.OriginID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check for existing session: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %s", store.ErrDuplicateOrigin, session.OriginID)
	}

	gs := convert.SessionToGorm(*session)
	if err := b.deps.DB.Create(&gs).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	b.log("Create", fmt.Sprintf("Created session %s for origin %s", session.SessionID, session.OriginID), "INFO")
	return nil
}

// AppendPoint inserts the point for the session bound to originID and
// refreshes the session's updated_at in the same transaction.
func (b *Backend) AppendPoint(originID string, point core.PlantedPoint) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := b.deps.DB.Transaction(func(tx *gorm.DB) error {
		var gs model.Session
		err := tx.Where("origin_id = ?", originID).First(&gs).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", store.ErrUnknownOrigin, originID)
		}
		if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}

		gp := convert.PointToGorm(originID, point)
		if err := tx.Create(&gp).Error; err != nil {
			return fmt.Errorf("failed to insert point: %w", err)
		}

		err = tx.Model(&model.Session{}).
			Where("origin_id = ?", originID).
			Update("updated_at", time.Now().UTC()).Error
		if err != nil {
			return fmt.Errorf("failed to refresh session timestamp: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	b.log("AppendPoint", fmt.Sprintf("Appended point %d to origin %s", point.ID, originID), "DEBUG")
	return nil
}

// DeleteSession removes the session and all its points transactionally.
func (b *Backend) DeleteSession(originID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.deps.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_origin_id = ?", originID).Delete(&model.PlantedPoint{}).Error; err != nil {
			return fmt.Errorf("failed to delete points: %w", err)
		}
		if err := tx.Where("origin_id = ?", originID).Delete(&model.Session{}).Error; err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		return nil
	})
}

// CountSessions returns the number of stored sessions.
func (b *Backend) CountSessions() (int64, error) {
	var count int64
	err := b.deps.DB.Model(&model.Session{}).Count(&count).Error
	return count, err
}

// CountPoints returns the number of stored points across all sessions.
func (b *Backend) CountPoints() (int64, error) {
	var count int64
	err := b.deps.DB.Model(&model.PlantedPoint{}).Count(&count).Error
	return count, err
}

func (b *Backend) log(functionName, data, level string) {
	if b.deps.LogManager != nil {
		b.deps.LogManager.WriteLog("gormstore:"+functionName, data, level)
	}
}
