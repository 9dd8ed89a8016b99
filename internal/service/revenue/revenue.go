package revenue

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mgbucal/kapehan/internal/models"
)

const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

var Periods = []string{PeriodDay, PeriodWeek, PeriodMonth, PeriodYear}

func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// WeekKey covers the Sunday-start/Saturday-end week containing t.
func WeekKey(t time.Time) string {
	start := t.AddDate(0, 0, -int(t.Weekday()))
	end := start.AddDate(0, 0, 6)
	return start.Format("2006-01-02") + "_" + end.Format("2006-01-02")
}

func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

func YearKey(t time.Time) string {
	return t.Format("2006")
}

func BucketKey(period string, t time.Time) (string, error) {
	switch period {
	case PeriodDay:
		return DayKey(t), nil
	case PeriodWeek:
		return WeekKey(t), nil
	case PeriodMonth:
		return MonthKey(t), nil
	case PeriodYear:
		return YearKey(t), nil
	}
	return "", fmt.Errorf("revenue: unknown period %q", period)
}

// Record adds an order total to the day, week, month and year buckets for
// now. It must run inside the transaction that records the order itself so
// the order and its revenue never diverge. The total is incremented with a
// SQL expression rather than a read-then-write.
func Record(tx *gorm.DB, amount float64, now time.Time) error {
	detail := models.RevenueDetail{Date: now, OrderAmount: amount}

	for _, period := range Periods {
		key, err := BucketKey(period, now)
		if err != nil {
			return err
		}

		var bucket models.RevenueBucket
		err = tx.Where("period = ? AND key = ?", period, key).First(&bucket).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			bucket = models.RevenueBucket{
				Period:       period,
				Key:          key,
				TotalRevenue: amount,
				Details:      []models.RevenueDetail{detail},
			}
			if err := tx.Create(&bucket).Error; err != nil {
				return fmt.Errorf("revenue: create %s bucket: %w", period, err)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("revenue: read %s bucket: %w", period, err)
		}

		// Map-based Updates skips the json serializer on the model field,
		// so the detail list is encoded by hand here.
		details, err := json.Marshal(append(bucket.Details, detail))
		if err != nil {
			return fmt.Errorf("revenue: encode %s details: %w", period, err)
		}
		updates := map[string]interface{}{
			"total_revenue": gorm.Expr("total_revenue + ?", amount),
			"details":       string(details),
		}
		if err := tx.Model(&models.RevenueBucket{}).Where("id = ?", bucket.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("revenue: update %s bucket: %w", period, err)
		}
	}
	return nil
}
