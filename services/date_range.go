package services

import (
	"fmt"
	"time"

	"jirareport/models"
)

// monthLayout は --month の書式です
const monthLayout = "2006/01"

// ResolveDateRange は対象月と営業日を決定します
// monthが空の場合はnowの月を使います。days > 0 の場合は配分に使う日数だけを置き換えます
func ResolveDateRange(month string, days int, now time.Time) (models.DateRange, error) {
	if days < 0 {
		return models.DateRange{}, fmt.Errorf("%w: %d", models.ErrInvalidDays, days)
	}

	year, mon := now.Year(), now.Month()
	if month != "" {
		t, err := time.Parse(monthLayout, month)
		if err != nil {
			return models.DateRange{}, fmt.Errorf("%w: %q", models.ErrInvalidMonth, month)
		}
		year, mon = t.Year(), t.Month()
	}

	rng := models.DateRange{
		Year:         year,
		Month:        mon,
		BusinessDays: BusinessDays(year, mon),
	}

	rng.DayCount = len(rng.BusinessDays)
	if days > 0 {
		rng.DayCount = days
	}
	return rng, nil
}

// BusinessDays は指定月の月曜〜金曜の日付を昇順で返します（祝日は考慮しません）
func BusinessDays(year int, month time.Month) []time.Time {
	var days []time.Time
	for d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC); d.Month() == month; d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days = append(days, d)
		}
	}
	return days
}
