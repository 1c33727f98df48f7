package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"jirareport/models"
	"jirareport/utils"
)

// 列幅（Date, Task ID, Issue Key, Summary, Effort, Project, Status, Created At, URL）
var xlsxColumnWidths = []float64{12, 10, 14, 60, 12, 24, 16, 18, 48}

// 作成日時セルの表示形式
const xlsxCreatedFormat = "yyyy-mm-dd hh:mm"

// XLSXWriter はExcel形式でレポートを書き出します
type XLSXWriter struct{}

// Extension は出力ファイルの拡張子を返します
func (w *XLSXWriter) Extension() string {
	return "xlsx"
}

// xlsxStyles はレポートで使うセルスタイルのIDです
type xlsxStyles struct {
	header  int
	hours   int
	created int
	link    int
}

func newXLSXStyles(f *excelize.File) (xlsxStyles, error) {
	var styles xlsxStyles
	var err error

	styles.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Vertical: "center"},
	})
	if err != nil {
		return styles, fmt.Errorf("スタイル作成エラー: %w", err)
	}

	hoursFormat := `0.00" h"`
	styles.hours, err = f.NewStyle(&excelize.Style{
		Alignment:    &excelize.Alignment{Horizontal: "right", Vertical: "center"},
		CustomNumFmt: &hoursFormat,
	})
	if err != nil {
		return styles, fmt.Errorf("スタイル作成エラー: %w", err)
	}

	createdFormat := xlsxCreatedFormat
	styles.created, err = f.NewStyle(&excelize.Style{
		Alignment:    &excelize.Alignment{Horizontal: "left", Vertical: "center"},
		CustomNumFmt: &createdFormat,
	})
	if err != nil {
		return styles, fmt.Errorf("スタイル作成エラー: %w", err)
	}

	styles.link, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Color: "1265BE", Underline: "single"},
		Alignment: &excelize.Alignment{Vertical: "center"},
	})
	if err != nil {
		return styles, fmt.Errorf("スタイル作成エラー: %w", err)
	}
	return styles, nil
}

// 列番号（0始まり）と行番号（1始まり）からセル名を返す
func xlsxCell(col, row int) (string, error) {
	cell, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		return "", fmt.Errorf("セル位置エラー: %w", err)
	}
	return cell, nil
}

// Write は1シートのブックを作成して path に保存します
func (w *XLSXWriter) Write(alloc models.Allocation, path string, force bool) error {
	if err := CheckTarget(path, force); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := alloc.Range.Title()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("シート作成エラー: %w", err)
	}

	styles, err := newXLSXStyles(f)
	if err != nil {
		return err
	}

	header := make([]interface{}, len(reportHeaders))
	for i, h := range reportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("ヘッダー書き込みエラー: %w", err)
	}
	lastHeader, err := xlsxCell(len(reportHeaders)-1, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastHeader, styles.header); err != nil {
		return fmt.Errorf("スタイル設定エラー: %w", err)
	}

	rows := alloc.Rows()
	for i, row := range rows {
		if err := writeXLSXRow(f, sheet, i+2, row, styles); err != nil {
			return err
		}
	}

	for i, width := range xlsxColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("列名変換エラー: %w", err)
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("列幅設定エラー: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("ブック作成エラー: %w", err)
	}
	if err := writeAtomic(path, buf); err != nil {
		return err
	}

	utils.LogInfo("XLSX書き込み完了: %d 行", len(rows))
	return nil
}

// 1行分の値とスタイル、URLのハイパーリンクを書き込む
func writeXLSXRow(f *excelize.File, sheet string, n int, row models.ReportRow, styles xlsxStyles) error {
	// Excelの日時にタイムゾーンはないためUTCで保存する
	var created interface{} = ""
	if !row.Created.IsZero() {
		created = row.Created.UTC()
	}

	values := []interface{}{
		row.Date.Format(reportDate),
		row.TaskID,
		row.IssueKey,
		row.Summary,
		row.Effort.Hours(),
		row.Project,
		row.Status,
		created,
		row.URL,
	}

	first, err := xlsxCell(0, n)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, first, &values); err != nil {
		return fmt.Errorf("行書き込みエラー: %w", err)
	}

	type styledCell struct{ col, style int }
	cellStyles := []styledCell{
		{colEffort, styles.hours},
		{colCreated, styles.created},
	}
	if row.URL != "" {
		cellStyles = append(cellStyles, styledCell{colURL, styles.link})
	}
	for _, cs := range cellStyles {
		cell, err := xlsxCell(cs.col, n)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, cs.style); err != nil {
			return fmt.Errorf("スタイル設定エラー: %w", err)
		}
	}

	if row.URL != "" {
		cell, err := xlsxCell(colURL, n)
		if err != nil {
			return err
		}
		if err := f.SetCellHyperLink(sheet, cell, row.URL, "External"); err != nil {
			return fmt.Errorf("リンク設定エラー: %w", err)
		}
	}
	return nil
}

// Excelレポートを読み込む
func readXLSXReport(path string) ([]models.ReportRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("XLSXオープンエラー: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("シートがありません: %s", path)
	}

	records, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("XLSX読み込みエラー: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("ヘッダー行がありません: %s", path)
	}

	rows := make([]models.ReportRow, 0, len(records)-1)
	for i, record := range records[1:] {
		row, err := parseReportRow(record, parseXLSXTime)
		if err != nil {
			return nil, fmt.Errorf("行 %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// 作成日時セルはシリアル値で保存されている。秒未満は浮動小数の誤差として丸める
func parseXLSXTime(s string) (time.Time, error) {
	serial, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, err
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, err
	}
	return t.Round(time.Second), nil
}
