package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"jirareport/models"
	"jirareport/utils"
)

// CSVWriter はCSV形式でレポートを書き出します
type CSVWriter struct{}

// Extension は出力ファイルの拡張子を返します
func (w *CSVWriter) Extension() string {
	return "csv"
}

// Write はヘッダー行と配分結果の行を path に保存します
func (w *CSVWriter) Write(alloc models.Allocation, path string, force bool) error {
	if err := CheckTarget(path, force); err != nil {
		return err
	}

	utils.LogInfo("CSVファイル '%s' を作成します", path)

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(reportHeaders); err != nil {
		return fmt.Errorf("ヘッダー書き込みエラー: %w", err)
	}

	rows := alloc.Rows()
	for _, row := range rows {
		record := []string{
			row.Date.Format(reportDate),
			row.TaskID,
			row.IssueKey,
			row.Summary,
			strconv.FormatFloat(row.Effort.Hours(), 'f', 2, 64),
			row.Project,
			row.Status,
			formatCSVTime(row.Created),
			row.URL,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("行書き込みエラー: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSV書き込み完了エラー: %w", err)
	}

	if err := writeAtomic(path, &buf); err != nil {
		return err
	}

	utils.LogInfo("CSV書き込み完了: %d 行", len(rows))
	return nil
}

// CSVレポートを読み込む
func readCSVReport(path string) ([]models.ReportRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("CSVオープンエラー: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("CSV読み込みエラー: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("ヘッダー行がありません: %s", path)
	}

	headers := records[0]
	if len(headers) != len(reportHeaders) {
		utils.LogWarn("ヘッダーの列数が一致しません（期待: %d, 実際: %d）", len(reportHeaders), len(headers))
	}

	rows := make([]models.ReportRow, 0, len(records)-1)
	for i, record := range records[1:] {
		row, err := parseReportRow(record, parseCSVTime)
		if err != nil {
			return nil, fmt.Errorf("行 %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// 作成日時はISO 8601（RFC 3339）で書き出す。不明な場合は空欄
func formatCSVTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func parseCSVTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
