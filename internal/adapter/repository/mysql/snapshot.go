package mysql

import (
	"context"
	"errors"
	"time"

	"loan-marketplace/internal/store"

	"gorm.io/gorm"
)

// Snapshot is one named aggregate blob. Table: loan_snapshots.
type Snapshot struct {
	Name      string    `gorm:"column:name;primaryKey;size:64"`
	Version   uint64    `gorm:"column:version;not null"`
	Data      []byte    `gorm:"column:data;type:longblob;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Snapshot) TableName() string { return "loan_snapshots" }

// SnapshotRepository is a store.Backend over gorm. It works on MySQL and SQLite.
type SnapshotRepository struct {
	db   *gorm.DB
	name string
}

func NewSnapshotRepository(db *gorm.DB, name string) *SnapshotRepository {
	if name == "" {
		name = "default"
	}
	return &SnapshotRepository{db: db, name: name}
}

// Migrate creates the snapshot table.
func (r *SnapshotRepository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&Snapshot{})
}

func (r *SnapshotRepository) Name() string { return "sql" }

func (r *SnapshotRepository) Load(ctx context.Context) (*store.Database, error) {
	var s Snapshot
	err := r.db.WithContext(ctx).Where("name = ?", r.name).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.Decode(nil)
	}
	if err != nil {
		return nil, err
	}
	return store.Decode(s.Data)
}

// Save inserts the first version and afterwards updates only when the stored
// version still matches expectedVersion.
func (r *SnapshotRepository) Save(ctx context.Context, db *store.Database, expectedVersion uint64) error {
	blob, err := store.Encode(db)
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if expectedVersion == 0 {
			var n int64
			if err := tx.Model(&Snapshot{}).Where("name = ?", r.name).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return store.ErrVersionConflict
			}
			return tx.Create(&Snapshot{Name: r.name, Version: db.Version, Data: blob}).Error
		}
		res := tx.Model(&Snapshot{}).
			Where("name = ? AND version = ?", r.name, expectedVersion).
			Updates(map[string]any{"version": db.Version, "data": blob, "updated_at": time.Now().UTC()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrVersionConflict
		}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return store.ErrVersionConflict
	}
	return err
}
