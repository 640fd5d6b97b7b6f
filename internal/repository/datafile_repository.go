package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/seatplan-api/internal/models"
	"github.com/noah-isme/seatplan-api/pkg/storage"
)

const (
	dataFileName     = "data.json"
	backupDir        = "backups"
	backupGlob       = "data_[0-9]*.json"
	backupTimeLayout = "20060102_150405"
)

var (
	// ErrCorruptDataFile is returned when data.json cannot be decoded. A copy is kept in backups.
	ErrCorruptDataFile = errors.New("data file is corrupt")
	// ErrBackupNotFound is returned for unknown backup names.
	ErrBackupNotFound = errors.New("backup not found")

	backupNamePattern = regexp.MustCompile(`^data_\d{8}_\d{6}(_\d+)?\.json$`)
)

// DataFileRepository persists the planning document as JSON with timestamped backups.
type DataFileRepository struct {
	store  *storage.LocalStorage
	logger *zap.Logger
	now    func() time.Time
}

// NewDataFileRepository constructs the repository over a storage rooted at the data directory.
func NewDataFileRepository(store *storage.LocalStorage, logger *zap.Logger) *DataFileRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DataFileRepository{store: store, logger: logger, now: time.Now}
}

// Load reads the document. A missing file yields a fresh empty document.
func (r *DataFileRepository) Load(ctx context.Context) (*models.DataFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := r.store.Read(dataFileName)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.logger.Info("data file missing, starting with empty document")
			return models.NewDataFile(), nil
		}
		return nil, fmt.Errorf("load data file: %w", err)
	}

	df, err := decode(raw)
	if err != nil {
		corrupt := path.Join(backupDir, fmt.Sprintf("data_CORRUPT_%s.json", r.now().Format(backupTimeLayout)))
		if copyErr := r.store.Copy(dataFileName, corrupt); copyErr != nil {
			r.logger.Warn("could not keep corrupt data file", zap.Error(copyErr))
		} else {
			r.logger.Warn("corrupt data file preserved", zap.String("backup", corrupt))
		}
		return nil, fmt.Errorf("%w: %v", ErrCorruptDataFile, err)
	}
	return df, nil
}

// Save writes the document atomically, backing up the previous version first when asked.
func (r *DataFileRepository) Save(ctx context.Context, df *models.DataFile, createBackup bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if createBackup && r.store.Exists(dataFileName) {
		if _, err := r.Backup(ctx); err != nil {
			return err
		}
	}
	payload, err := json.MarshalIndent(df, "", "  ")
	if err != nil {
		return fmt.Errorf("encode data file: %w", err)
	}
	if _, err := r.store.Save(dataFileName, payload); err != nil {
		return fmt.Errorf("save data file: %w", err)
	}
	return nil
}

// Backup copies the current document to backups/data_<timestamp>.json and returns the name.
// It returns an empty name when there is nothing to back up.
func (r *DataFileRepository) Backup(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !r.store.Exists(dataFileName) {
		return "", nil
	}
	stamp := r.now().Format(backupTimeLayout)
	name := fmt.Sprintf("data_%s.json", stamp)
	for i := 1; r.store.Exists(path.Join(backupDir, name)); i++ {
		name = fmt.Sprintf("data_%s_%d.json", stamp, i)
	}
	if err := r.store.Copy(dataFileName, path.Join(backupDir, name)); err != nil {
		return "", fmt.Errorf("create backup: %w", err)
	}
	r.logger.Debug("backup created", zap.String("backup", name))
	return name, nil
}

// ListBackups returns backups newest first.
func (r *DataFileRepository) ListBackups(ctx context.Context) ([]storage.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	files, err := r.store.List(backupDir, backupGlob)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	for i := range files {
		files[i].Name = path.Base(files[i].Name)
	}
	return files, nil
}

// ReadBackup decodes a backup by file name without touching the live document.
func (r *DataFileRepository) ReadBackup(ctx context.Context, name string) (*models.DataFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !backupNamePattern.MatchString(name) {
		return nil, fmt.Errorf("%w: %s", ErrBackupNotFound, name)
	}
	raw, err := r.store.Read(path.Join(backupDir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrBackupNotFound, name)
		}
		return nil, fmt.Errorf("read backup: %w", err)
	}
	df, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: backup %s: %v", ErrCorruptDataFile, name, err)
	}
	return df, nil
}

// PruneBackups deletes all but the newest keep backups and returns the removed names.
func (r *DataFileRepository) PruneBackups(ctx context.Context, keep int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	deleted, err := r.store.KeepNewest(backupDir, backupGlob, keep)
	if err != nil {
		return deleted, fmt.Errorf("prune backups: %w", err)
	}
	return deleted, nil
}

func decode(raw []byte) (*models.DataFile, error) {
	var df models.DataFile
	if err := json.Unmarshal(raw, &df); err != nil {
		return nil, err
	}
	if df.Metadata.Version == "" {
		df.Metadata.Version = models.DataFileVersion
	}
	if df.Floorplan.Rooms == nil {
		df.Floorplan.Rooms = []models.Room{}
	}
	if df.Floorplan.Seats == nil {
		df.Floorplan.Seats = []models.Seat{}
	}
	if df.Students == nil {
		df.Students = []models.Student{}
	}
	if df.Assignments == nil {
		df.Assignments = map[string]map[string][]models.StoredAssignment{}
	}
	return &df, nil
}
