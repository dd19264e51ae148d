package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lostwatch/internal/apperr"
	"lostwatch/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// ErrConflict is returned when a guarded status transition finds the row
// already moved by someone else.
var ErrConflict = errors.New("report already reconciled")

type Store struct {
	DB *gorm.DB
}

// Records is the write surface available inside a transaction.
type Records interface {
	// FindBySerialStatus returns the lowest-id report with the given serial
	// and status, locked for update where the engine supports it, or nil.
	FindBySerialStatus(serial string, status models.Status) (*models.WatchReport, error)
	Insert(r *models.WatchReport) error
	// MarkReunited moves report id from status `from` to reunited. It fails
	// with ErrConflict if the row is no longer in `from`.
	MarkReunited(id uint, from models.Status, with string) error
}

// Open opens the store for the given driver ("sqlite" or "postgres").
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case "sqlite", "":
		return NewSQLiteStore(dsn)
	case "postgres":
		return open(postgres.Open(dsn))
	}
	return nil, apperr.Config("DB_DRIVER", "unsupported driver "+driver)
}

// NewSQLiteStore opens path with immediate transactions so every
// transaction takes the write lock at BEGIN.
func NewSQLiteStore(path string) (*Store, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	dsn := path
	if !strings.Contains(path, "_txlock=") {
		dsn += sep + "_txlock=immediate&_busy_timeout=5000"
	}
	return open(sqlite.Open(dsn))
}

func open(d gorm.Dialector) (*Store, error) {
	db, err := gorm.Open(d, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, apperr.Store("open database", err)
	}

	if err := db.AutoMigrate(&models.WatchReport{}); err != nil {
		return nil, apperr.Store("migrate", err)
	}

	return &Store{DB: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Transaction runs fn against a single database transaction. Any error
// returned by fn, or a panic, rolls back every write made through it.
func (s *Store) Transaction(ctx context.Context, fn func(Records) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txRecords{db: tx})
	})
}

type txRecords struct {
	db *gorm.DB
}

func (t *txRecords) FindBySerialStatus(serial string, status models.Status) (*models.WatchReport, error) {
	q := t.db
	// sqlite has no row locks; the immediate transaction already holds the write lock
	if q.Dialector.Name() != "sqlite" {
		if err := t.lockSerial(serial); err != nil {
			return nil, err
		}
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var r models.WatchReport
	err := q.Where("serial_number = ? AND status = ?", serial, status).Order("id asc").Limit(1).Find(&r).Error
	if err != nil {
		return nil, apperr.Store("find counterpart", err)
	}
	if r.ID == 0 {
		return nil, nil
	}
	return &r, nil
}

// lockSerial takes a transaction-scoped advisory lock on serial. FOR UPDATE
// alone locks nothing while no counterpart row exists, so two first reports
// for the same serial could both insert unmatched.
func (t *txRecords) lockSerial(serial string) error {
	if t.db.Dialector.Name() != "postgres" {
		return nil
	}
	if err := t.db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", serial).Error; err != nil {
		return apperr.Store("lock serial", err)
	}
	return nil
}

func (t *txRecords) Insert(r *models.WatchReport) error {
	if !r.Status.Valid() {
		return apperr.Store("insert report", fmt.Errorf("invalid status %q", r.Status))
	}
	if err := t.db.Create(r).Error; err != nil {
		return apperr.Store("insert report", err)
	}
	return nil
}

func (t *txRecords) MarkReunited(id uint, from models.Status, with string) error {
	res := t.db.Model(&models.WatchReport{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":        models.StatusReunited,
			"reunited_with": with,
		})
	if res.Error != nil {
		return apperr.Store("reunite counterpart", res.Error)
	}
	if res.RowsAffected != 1 {
		return apperr.Store("reunite counterpart", ErrConflict)
	}
	return nil
}

// FirstActive returns the earliest report with serial and status outside
// of any transaction, or nil.
func (s *Store) FirstActive(ctx context.Context, serial string, status models.Status) (*models.MapPoint, error) {
	var out []models.MapPoint
	err := s.DB.WithContext(ctx).Model(&models.WatchReport{}).
		Select("status", "latitude", "longitude", "date_reported", "model").
		Where("serial_number = ? AND status = ?", serial, status).
		Order("id asc").Limit(1).
		Scan(&out).Error
	if err != nil {
		return nil, apperr.Store("lookup report", err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

// ListActive returns the public projection of every report whose status is
// in statuses. Only active statuses are honoured.
func (s *Store) ListActive(ctx context.Context, statuses ...models.Status) ([]models.MapPoint, error) {
	filter := make([]models.Status, 0, 2)
	for _, st := range statuses {
		if st.Active() {
			filter = append(filter, st)
		}
	}
	if len(filter) == 0 {
		filter = []models.Status{models.StatusLost, models.StatusFound}
	}

	out := []models.MapPoint{}
	err := s.DB.WithContext(ctx).Model(&models.WatchReport{}).
		Select("status", "latitude", "longitude", "date_reported", "model").
		Where("status IN ?", filter).
		Order("id asc").
		Scan(&out).Error
	if err != nil {
		return nil, apperr.Store("list reports", err)
	}
	return out, nil
}

type statusCount struct {
	Status models.Status
	N      int64
}

// Stats counts every status in one statement inside one transaction, so
// the three numbers describe the same point in time.
func (s *Store) Stats(ctx context.Context) (models.Stats, error) {
	var rows []statusCount
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Model(&models.WatchReport{}).
			Select("status, COUNT(*) AS n").
			Group("status").
			Scan(&rows).Error
	})
	if err != nil {
		return models.Stats{}, apperr.Store("count reports", err)
	}

	var st models.Stats
	for _, r := range rows {
		switch r.Status {
		case models.StatusLost:
			st.Lost = r.N
		case models.StatusFound:
			st.Found = r.N
		case models.StatusReunited:
			st.Reunited = r.N / 2
		}
	}
	return st, nil
}
