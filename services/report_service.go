package services

import (
	"context"
	"fmt"
	"time"

	"jirareport/models"
	"jirareport/utils"
)

// IssueSource は対象月のイシューを取得します
type IssueSource interface {
	FetchAssigned(ctx context.Context, rng models.DateRange) ([]models.Issue, error)
}

// ReportService はイシュー取得→除外→配分→書き出しを順に実行します
type ReportService struct {
	source    IssueSource
	writer    ReportWriter
	blacklist Blacklist
	workDay   time.Duration
}

// NewReportService は新しいレポートサービスを作成します
func NewReportService(source IssueSource, writer ReportWriter, blacklist Blacklist, workDay time.Duration) *ReportService {
	return &ReportService{
		source:    source,
		writer:    writer,
		blacklist: blacklist,
		workDay:   workDay,
	}
}

// Result はレポート作成の結果です
type Result struct {
	Path       string
	Issues     int
	Skipped    int
	Allocation models.Allocation
}

// Generate はレポートを作成して path に保存します
func (s *ReportService) Generate(ctx context.Context, rng models.DateRange, path string, force bool) (*Result, error) {
	startTime := time.Now()
	defer utils.TrackTime(startTime, "レポート作成")

	issues, err := s.source.FetchAssigned(ctx, rng)
	if err != nil {
		return nil, fmt.Errorf("イシュー取得エラー: %w", err)
	}

	issues, skipped := s.blacklist.Filter(issues)
	if skipped > 0 {
		utils.LogInfo("ブラックリストにより %d 件のイシューを除外しました", skipped)
	}

	if len(issues) > 0 {
		utils.LogInfo("期間中にアサインされたタスクが %d 件見つかりました", len(issues))
	} else {
		utils.LogWarn("期間中にアサインされたタスクはありません")
	}

	alloc := Allocate(issues, rng, s.workDay)
	utils.LogInfo("営業日=%d 日 (%s)、配分日数=%d 日 (%.0f 時間)",
		len(rng.BusinessDays), rng.Title(), rng.DayCount, alloc.Pool.Hours())

	if err := s.writer.Write(alloc, path, force); err != nil {
		return nil, err
	}

	return &Result{
		Path:       path,
		Issues:     len(issues),
		Skipped:    skipped,
		Allocation: alloc,
	}, nil
}
