package storage

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"skycast/internal/forecaster"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(path string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&ForecastSnapshot{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Database{db: db}, nil
}

func (d *Database) SaveSnapshot(result *forecaster.Result) error {
	return d.db.Create(SnapshotFromResult(result)).Error
}

func (d *Database) GetLatestSnapshot() (*ForecastSnapshot, error) {
	var snap ForecastSnapshot
	result := d.db.Order("timestamp desc").First(&snap)
	if result.Error != nil {
		return nil, result.Error
	}
	return &snap, nil
}

func (d *Database) GetSnapshotsByRange(from, to time.Time) ([]ForecastSnapshot, error) {
	var snaps []ForecastSnapshot
	result := d.db.Where("timestamp BETWEEN ? AND ?", from, to).
		Order("timestamp desc").
		Find(&snaps)
	if result.Error != nil {
		return nil, result.Error
	}
	return snaps, nil
}

func (d *Database) GetSnapshotsWithLimit(limit int) ([]ForecastSnapshot, error) {
	var snaps []ForecastSnapshot
	result := d.db.Order("timestamp desc").Limit(limit).Find(&snaps)
	if result.Error != nil {
		return nil, result.Error
	}
	return snaps, nil
}

// GetNightStats summarizes the snapshots collected on one calendar day.
func (d *Database) GetNightStats(date time.Time) (*NightStats, error) {
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	stats := NightStats{Date: startOfDay}

	var snap ForecastSnapshot
	result := d.db.Where("timestamp BETWEEN ? AND ?", startOfDay, endOfDay).
		Order("astro_rating desc").
		First(&snap)
	if result.Error == nil {
		stats.BestAstroRating = snap.AstroRating
	}

	var avgCloud float64
	d.db.Model(&ForecastSnapshot{}).
		Where("timestamp BETWEEN ? AND ?", startOfDay, endOfDay).
		Select("AVG(avg_total_cloud)").
		Scan(&avgCloud)
	stats.AvgTotalCloud = avgCloud

	d.db.Model(&ForecastSnapshot{}).
		Where("timestamp BETWEEN ? AND ?", startOfDay, endOfDay).
		Count(&stats.SnapshotCount)

	return &stats, nil
}

func (d *Database) CleanOldSnapshots(olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	return d.db.Where("timestamp < ?", cutoff).Delete(&ForecastSnapshot{}).Error
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
