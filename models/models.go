package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateRange はレポート対象月と営業日を表します
type DateRange struct {
	Year  int
	Month time.Month
	// BusinessDays は対象月の月〜金の日付（昇順）
	BusinessDays []time.Time
	// DayCount は工数配分に使う日数。--days 指定時はその値
	DayCount int
}

// Start は対象月の初日を返します
func (r DateRange) Start() time.Time {
	return time.Date(r.Year, r.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End は対象月の末日を返します
func (r DateRange) End() time.Time {
	return r.Start().AddDate(0, 1, -1)
}

// Title はシート名やファイル名に使う "2019_October" 形式の文字列を返します
func (r DateRange) Title() string {
	return fmt.Sprintf("%d_%s", r.Year, r.Month)
}

// Issue はJIRAのイシューを表します
type Issue struct {
	ID      string
	Key     string
	Summary string
	Status  string
	Project string
	Created time.Time
	URL     string
}

// Item は1日に割り当てられたイシューと工数です
type Item struct {
	Issue  Issue
	Effort time.Duration
}

// DayAllocation は営業日ごとの配分です
type DayAllocation struct {
	Date  time.Time
	Items []Item
}

// Allocation は営業日→イシュー→工数の配分結果です
type Allocation struct {
	Range DateRange
	Pool  time.Duration
	Days  []DayAllocation
}

// Empty はイシューが1件も割り当てられていない場合にtrueを返します
func (a Allocation) Empty() bool {
	return len(a.Days) == 0
}

// Total は割り当て済み工数の合計を返します
func (a Allocation) Total() time.Duration {
	var total time.Duration
	for _, day := range a.Days {
		for _, item := range day.Items {
			total += item.Effort
		}
	}
	return total
}

// Rows はレポートの行を日付→イシューキーの順で返します
func (a Allocation) Rows() []ReportRow {
	var rows []ReportRow
	for _, day := range a.Days {
		for _, item := range day.Items {
			rows = append(rows, ReportRow{
				Date:     day.Date,
				TaskID:   item.Issue.ID,
				IssueKey: item.Issue.Key,
				Summary:  item.Issue.Summary,
				Effort:   item.Effort,
				Project:  item.Issue.Project,
				Status:   item.Issue.Status,
				Created:  item.Issue.Created,
				URL:      item.Issue.URL,
			})
		}
	}
	return rows
}

// ReportRow はレポートファイルの1行を表します
type ReportRow struct {
	Date     time.Time
	TaskID   string
	IssueKey string
	Summary  string
	Effort   time.Duration
	Project  string
	Status   string
	// Created はイシューの作成日時（不明な場合はゼロ値）
	Created time.Time
	URL     string
}

// LessIssueKey はイシューキーを "PROJ-9" < "PROJ-10" となる順序で比較します
func LessIssueKey(a, b string) bool {
	pa, na, okA := splitIssueKey(a)
	pb, nb, okB := splitIssueKey(b)
	if !okA || !okB || pa != pb {
		return a < b
	}
	if na != nb {
		return na < nb
	}
	return a < b
}

// "PROJ-123" を "PROJ" と 123 に分割
func splitIssueKey(key string) (string, int, bool) {
	idx := strings.LastIndex(key, "-")
	if idx <= 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(key[idx+1:])
	if err != nil {
		return "", 0, false
	}
	return key[:idx], n, true
}
