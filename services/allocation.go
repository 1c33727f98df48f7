package services

import (
	"sort"
	"time"

	"jirareport/models"
)

// DefaultWorkDay は1営業日あたりの工数です
const DefaultWorkDay = 8 * time.Hour

// Allocate は工数プール（DayCount × workDay）をイシューに均等配分し、営業日に割り当てます
//
// 配分は分単位で行います。割り切れない分は最大剰余法で、API順で先頭のイシュー
// （日付では先頭の営業日）から1分ずつ加算します。イシューはAPI順に営業日へ
// 詰めていくため、1つのイシューが複数日にまたがることも、1日に複数の
// イシューが入ることもあります。
func Allocate(issues []models.Issue, rng models.DateRange, workDay time.Duration) models.Allocation {
	if workDay <= 0 {
		workDay = DefaultWorkDay
	}

	alloc := models.Allocation{
		Range: rng,
		Pool:  time.Duration(rng.DayCount) * workDay,
	}
	if len(issues) == 0 || len(rng.BusinessDays) == 0 {
		return alloc
	}

	poolMinutes := int64(alloc.Pool / time.Minute)
	shares := splitEven(poolMinutes, len(issues))
	capacities := splitEven(poolMinutes, len(rng.BusinessDays))

	days := make([]models.DayAllocation, len(rng.BusinessDays))
	for i, date := range rng.BusinessDays {
		days[i].Date = date
	}

	d := 0
	for i, issue := range issues {
		remaining := shares[i]
		for remaining > 0 && d < len(days) {
			take := min64(remaining, capacities[d])
			if take > 0 {
				days[d].Items = append(days[d].Items, models.Item{
					Issue:  issue,
					Effort: time.Duration(take) * time.Minute,
				})
				remaining -= take
				capacities[d] -= take
			}
			if capacities[d] == 0 {
				d++
			}
		}
	}

	for _, day := range days {
		if len(day.Items) == 0 {
			continue
		}
		sort.SliceStable(day.Items, func(a, b int) bool {
			return models.LessIssueKey(day.Items[a].Issue.Key, day.Items[b].Issue.Key)
		})
		alloc.Days = append(alloc.Days, day)
	}
	return alloc
}

// total を n 個に分け、余りを先頭から1ずつ配る
func splitEven(total int64, n int) []int64 {
	parts := make([]int64, n)
	base := total / int64(n)
	rem := total % int64(n)
	for i := range parts {
		parts[i] = base
		if int64(i) < rem {
			parts[i]++
		}
	}
	return parts
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
