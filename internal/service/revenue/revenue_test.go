package revenue

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mgbucal/kapehan/internal/config"
	"github.com/mgbucal/kapehan/internal/models"
)

func initTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func TestBucketKeys(t *testing.T) {
	// 2023-01-04 is a Wednesday, so its week runs Sunday the 1st
	// through Saturday the 7th.
	at := time.Date(2023, time.January, 4, 15, 30, 0, 0, time.UTC)

	require.Equal(t, "2023-01-04", DayKey(at))
	require.Equal(t, "2023-01-01_2023-01-07", WeekKey(at))
	require.Equal(t, "2023-01", MonthKey(at))
	require.Equal(t, "2023", YearKey(at))
}

func TestWeekKeySpansMonthBoundary(t *testing.T) {
	// 2023-01-31 is a Tuesday, week starts Sunday the 29th and ends
	// Saturday February 4th.
	at := time.Date(2023, time.January, 31, 9, 0, 0, 0, time.UTC)
	require.Equal(t, "2023-01-29_2023-02-04", WeekKey(at))
}

func TestWeekKeyOnSunday(t *testing.T) {
	// a Sunday starts its own week
	at := time.Date(2023, time.January, 1, 8, 0, 0, 0, time.UTC)
	require.Equal(t, "2023-01-01_2023-01-07", WeekKey(at))
}

func TestBucketKeyRejectsUnknownPeriod(t *testing.T) {
	_, err := BucketKey("hourly", time.Now())
	require.Error(t, err)
}

func TestRecordCreatesAllPeriodBuckets(t *testing.T) {
	db := initTestDB(t)
	now := time.Date(2023, time.March, 15, 12, 0, 0, 0, time.UTC)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return Record(tx, 250, now)
	}))

	var buckets []models.RevenueBucket
	require.NoError(t, db.Find(&buckets).Error)
	require.Len(t, buckets, len(Periods))

	for _, b := range buckets {
		require.Equal(t, float64(250), b.TotalRevenue)
		require.Len(t, b.Details, 1)
		require.Equal(t, float64(250), b.Details[0].OrderAmount)
	}

	var daily models.RevenueBucket
	require.NoError(t, db.Where("period = ? AND key = ?", PeriodDay, "2023-03-15").First(&daily).Error)
}

func TestRecordIncrementsExistingBucket(t *testing.T) {
	db := initTestDB(t)
	now := time.Date(2023, time.March, 15, 12, 0, 0, 0, time.UTC)
	later := now.Add(3 * time.Hour)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return Record(tx, 100, now)
	}))
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return Record(tx, 150, later)
	}))
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return Record(tx, 50, later.Add(time.Hour))
	}))

	var daily models.RevenueBucket
	require.NoError(t, db.Where("period = ? AND key = ?", PeriodDay, DayKey(now)).First(&daily).Error)
	require.Equal(t, float64(300), daily.TotalRevenue)
	require.Len(t, daily.Details, 3)

	// the detail rows always sum to the bucket total
	var sum float64
	for _, d := range daily.Details {
		sum += d.OrderAmount
	}
	require.Equal(t, daily.TotalRevenue, sum)

	// still one bucket per period, not one per order
	var count int64
	require.NoError(t, db.Model(&models.RevenueBucket{}).Count(&count).Error)
	require.Equal(t, int64(len(Periods)), count)
}

func TestRecordSeparatesDaysWithinWeek(t *testing.T) {
	db := initTestDB(t)
	monday := time.Date(2023, time.March, 13, 10, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return Record(tx, 100, monday)
	}))
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return Record(tx, 200, tuesday)
	}))

	var mondayBucket, tuesdayBucket models.RevenueBucket
	require.NoError(t, db.Where("period = ? AND key = ?", PeriodDay, DayKey(monday)).First(&mondayBucket).Error)
	require.NoError(t, db.Where("period = ? AND key = ?", PeriodDay, DayKey(tuesday)).First(&tuesdayBucket).Error)
	require.Equal(t, float64(100), mondayBucket.TotalRevenue)
	require.Equal(t, float64(200), tuesdayBucket.TotalRevenue)

	// both days roll up into the same week bucket
	var week models.RevenueBucket
	require.NoError(t, db.Where("period = ? AND key = ?", PeriodWeek, WeekKey(monday)).First(&week).Error)
	require.Equal(t, float64(300), week.TotalRevenue)
	require.Len(t, week.Details, 2)
}
