package services

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	"jirareport/config"
	"jirareport/models"
)

// レポートの列（この順で出力します）
var reportHeaders = []string{
	"Date", "Task ID", "Issue Key", "Summary", "Effort (h)", "Project", "Status", "Created At", "URL",
}

// 列の位置（0始まり）
const (
	colDate = iota
	colTaskID
	colIssueKey
	colSummary
	colEffort
	colProject
	colStatus
	colCreated
	colURL
)

// reportDate はレポートの日付列のフォーマットです
const reportDate = "2006-01-02"

// ReportWriter は配分結果をファイルに書き出します
type ReportWriter interface {
	Write(alloc models.Allocation, path string, force bool) error
	Extension() string
}

// NewReportWriter は形式に応じたライターを返します
func NewReportWriter(format string) (ReportWriter, error) {
	switch strings.ToLower(format) {
	case config.FormatXLSX, "":
		return &XLSXWriter{}, nil
	case config.FormatCSV:
		return &CSVWriter{}, nil
	default:
		return nil, fmt.Errorf("%w: 不明なレポート形式 %q", models.ErrConfig, format)
	}
}

// DefaultFileName は "Jira_2019_October.xlsx" 形式のファイル名を返します
func DefaultFileName(rng models.DateRange, ext string) string {
	return fmt.Sprintf("Jira_%s.%s", rng.Title(), ext)
}

// CheckTarget は出力先に既存ファイルがあり、上書きが許可されていない場合にエラーを返します
func CheckTarget(path string, force bool) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("出力先確認エラー: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("出力先がディレクトリです: %s", path)
	}
	if !force {
		return fmt.Errorf("%w: %q (-f で上書きできます)", models.ErrFileExists, path)
	}
	return nil
}

// ReadReport は書き出したレポートを拡張子に応じて読み込みます
func ReadReport(path string) ([]models.ReportRow, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case "." + config.FormatCSV:
		return readCSVReport(path)
	default:
		return readXLSXReport(path)
	}
}

// 一時ファイル経由で書き込み、途中で失敗しても出力先を壊さない
func writeAtomic(path string, r io.Reader) error {
	if err := atomic.WriteFile(path, r); err != nil {
		return fmt.Errorf("ファイル書き込みエラー: %w", err)
	}
	if err := os.Chmod(path, 0o644); err != nil {
		return fmt.Errorf("パーミッション設定エラー: %w", err)
	}
	return nil
}

// 時間（小数）から分単位の工数に戻す
func parseEffort(s string) (time.Duration, error) {
	h, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("工数の解析に失敗しました: %q", s)
	}
	return time.Duration(math.Round(h*60)) * time.Minute, nil
}

// 1行分のセル値からレポート行を組み立てる
// 作成日時のセル表現は形式ごとに異なるため parseCreated で解釈する
func parseReportRow(cells []string, parseCreated func(string) (time.Time, error)) (models.ReportRow, error) {
	get := func(i int) string {
		if i < len(cells) {
			return cells[i]
		}
		return ""
	}

	date, err := time.Parse(reportDate, get(colDate))
	if err != nil {
		return models.ReportRow{}, fmt.Errorf("日付の解析に失敗しました: %q", get(colDate))
	}
	effort, err := parseEffort(get(colEffort))
	if err != nil {
		return models.ReportRow{}, err
	}

	var created time.Time
	if s := strings.TrimSpace(get(colCreated)); s != "" {
		created, err = parseCreated(s)
		if err != nil {
			return models.ReportRow{}, fmt.Errorf("作成日時の解析に失敗しました: %q", s)
		}
	}

	return models.ReportRow{
		Date:     date,
		TaskID:   get(colTaskID),
		IssueKey: get(colIssueKey),
		Summary:  get(colSummary),
		Effort:   effort,
		Project:  get(colProject),
		Status:   get(colStatus),
		Created:  created,
		URL:      get(colURL),
	}, nil
}
