package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/i474232898/weather-history/internal/config"
	"github.com/i474232898/weather-history/internal/weather"
)

const insertBatchSize = 100

// SQLStore persists samples in the hourly_weather table through GORM. Every operation runs
// in its own session; InsertSamples and ClearAll run in a transaction.
type SQLStore struct {
	db  *gorm.DB
	loc *time.Location
}

var _ weather.Store = (*SQLStore)(nil)

// Open connects to the database selected by cfg.Driver.
func Open(cfg config.DatabaseConfig, log logger.Interface) (*SQLStore, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.GetDSN())
	case config.DriverMySQL:
		dialector = mysql.Open(cfg.GetDSN())
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.GetDSN())
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{}
	if log != nil {
		gormConfig.Logger = log
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns >= 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewSQLStore(db, cfg.Location()), nil
}

// NewSQLStore wraps an open GORM handle. Timestamps are written in loc.
func NewSQLStore(db *gorm.DB, loc *time.Location) *SQLStore {
	if loc == nil {
		loc = time.UTC
	}
	return &SQLStore{db: db, loc: loc}
}

// Close closes the underlying connection pool.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// EnsureSchema creates hourly_weather if it does not exist yet. Existing tables are left
// untouched.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	m := s.db.WithContext(ctx).Migrator()
	if m.HasTable(&HourlyWeather{}) {
		return nil
	}
	if err := m.CreateTable(&HourlyWeather{}); err != nil {
		return weather.NewError(weather.KindStorage, "ensure schema", err)
	}
	return nil
}

// InsertSamples appends one row per sample in the given order. No deduplication is done.
func (s *SQLStore) InsertSamples(ctx context.Context, city string, samples []weather.Sample) (int, error) {
	if len(samples) == 0 {
		return 0, nil
	}

	rows := make([]HourlyWeather, 0, len(samples))
	for _, smp := range samples {
		rows = append(rows, HourlyWeather{
			CityName:           city,
			Temperature:        smp.Temperature,
			WeatherDescription: smp.Description,
			Timestamp:          smp.Time.In(s.loc).Format(weather.TimestampLayout),
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&rows, insertBatchSize).Error
	})
	if err != nil {
		return 0, weather.NewError(weather.KindStorage, "insert samples", err)
	}
	return len(rows), nil
}

// ClearAll deletes every row.
func (s *SQLStore) ClearAll(ctx context.Context) (int64, error) {
	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&HourlyWeather{})
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, weather.NewError(weather.KindStorage, "clear all", err)
	}
	return deleted, nil
}

// AverageTemperature returns the mean temperature over all rows.
func (s *SQLStore) AverageTemperature(ctx context.Context) (weather.Average, error) {
	var avg sql.NullFloat64
	err := s.db.WithContext(ctx).
		Model(&HourlyWeather{}).
		Select("AVG(temperature)").
		Scan(&avg).Error
	if err != nil {
		return weather.Average{}, weather.NewError(weather.KindStorage, "average temperature", err)
	}
	return weather.Average{Value: avg.Float64, Valid: avg.Valid}, nil
}

// AllSeriesGroupedByCity returns every city's (timestamp, temperature) points sorted by
// city then timestamp.
func (s *SQLStore) AllSeriesGroupedByCity(ctx context.Context) (weather.Series, error) {
	var records []HourlyWeather
	err := s.db.WithContext(ctx).
		Select("id", "city_name", "timestamp", "temperature").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "city_name"}}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
		Find(&records).Error
	if err != nil {
		return nil, weather.NewError(weather.KindStorage, "series by city", err)
	}

	rows := make([]weather.Row, 0, len(records))
	for _, rec := range records {
		ts, err := time.ParseInLocation(weather.TimestampLayout, rec.Timestamp, s.loc)
		if err != nil {
			return nil, weather.NewError(weather.KindStorage, "series by city",
				fmt.Errorf("row %d: invalid timestamp %q: %w", rec.ID, rec.Timestamp, err))
		}
		rows = append(rows, weather.Row{
			ID:          rec.ID,
			City:        rec.CityName,
			Temperature: rec.Temperature,
			Timestamp:   ts,
		})
	}
	return weather.GroupSeries(rows), nil
}

// CountSamples returns the number of stored rows.
func (s *SQLStore) CountSamples(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&HourlyWeather{}).Count(&n).Error; err != nil {
		return 0, weather.NewError(weather.KindStorage, "count samples", err)
	}
	return n, nil
}
