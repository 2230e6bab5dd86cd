package persist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Backend stores whole named documents.
type Backend interface {
	// Read reports ok=false when the document does not exist yet.
	Read(ctx context.Context, name string) (data []byte, ok bool, err error)
	Write(ctx context.Context, name string, data []byte) error
}

// FileBackend keeps one <name>.json file per document in Dir.
type FileBackend struct {
	Dir string
}

func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileBackend{Dir: dir}, nil
}

func (f *FileBackend) path(name string) string {
	return filepath.Join(f.Dir, name+".json")
}

func (f *FileBackend) Read(_ context.Context, name string) ([]byte, bool, error) {
	b, err := os.ReadFile(f.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Write replaces the file atomically through a temp file in the same dir.
func (f *FileBackend) Write(_ context.Context, name string, data []byte) error {
	tmp, err := os.CreateTemp(f.Dir, name+"-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path(name))
}

// Snapshot is one stored document row.
type Snapshot struct {
	Name      string `gorm:"primaryKey;size:64"`
	Body      []byte
	UpdatedAt time.Time
}

// DBBackend keeps documents in the snapshots table.
type DBBackend struct {
	db *gorm.DB
}

func NewDBBackend(db *gorm.DB) (*DBBackend, error) {
	if err := db.AutoMigrate(&Snapshot{}); err != nil {
		return nil, fmt.Errorf("automigrate snapshots: %w", err)
	}
	return &DBBackend{db: db}, nil
}

func (d *DBBackend) Read(ctx context.Context, name string) ([]byte, bool, error) {
	var s Snapshot
	err := d.db.WithContext(ctx).Where("name = ?", name).Take(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return s.Body, true, nil
}

func (d *DBBackend) Write(ctx context.Context, name string, data []byte) error {
	s := Snapshot{Name: name, Body: data, UpdatedAt: time.Now()}
	return d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(&s).Error
}
