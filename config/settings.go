package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/tailscale/hujson"

	"jirareport/models"
)

// DefaultSettingsFile はレポート設定ファイルのデフォルトのパスです
const DefaultSettingsFile = ".jira-report.json"

// レポート形式
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// Settings はレポート出力の設定を保持します（コメント付きJSONで記述可能）
type Settings struct {
	OutputDir   string `json:"output_dir,omitempty"`
	Format      string `json:"format,omitempty"`
	HoursPerDay int    `json:"hours_per_day,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
	Blacklist   string `json:"blacklist,omitempty"`
	EnvFile     string `json:"env_file,omitempty"`
}

// DefaultSettings はデフォルトの設定を返します
func DefaultSettings() Settings {
	return Settings{
		OutputDir:   ".",
		Format:      FormatXLSX,
		HoursPerDay: 8,
		PageSize:    50,
		EnvFile:     ".env",
	}
}

// WorkDay は1営業日あたりの工数を返します
func (s Settings) WorkDay() time.Duration {
	return time.Duration(s.HoursPerDay) * time.Hour
}

// LoadSettings は設定ファイルを読み込みます。ファイルがない場合はデフォルト値を返します
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("%w: 設定ファイル読み込みエラー: %w", models.ErrConfig, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Settings{}, fmt.Errorf("%w: %s: %w", models.ErrConfig, path, err)
	}

	var file Settings
	if err := json.Unmarshal(standardized, &file); err != nil {
		return Settings{}, fmt.Errorf("%w: %s: %w", models.ErrConfig, path, err)
	}

	settings = mergeSettings(settings, file)
	if err := settings.Validate(); err != nil {
		return Settings{}, fmt.Errorf("%w: %s: %w", models.ErrConfig, path, err)
	}
	return settings, nil
}

// Validate は設定値の範囲を確認します
func (s Settings) Validate() error {
	if s.Format != FormatXLSX && s.Format != FormatCSV {
		return fmt.Errorf("不明なレポート形式: %q", s.Format)
	}
	if s.HoursPerDay <= 0 || s.HoursPerDay > 24 {
		return fmt.Errorf("hours_per_day は1〜24で指定してください: %d", s.HoursPerDay)
	}
	if s.PageSize <= 0 {
		return fmt.Errorf("page_size は正の値で指定してください: %d", s.PageSize)
	}
	return nil
}

// ゼロ値でない項目だけを上書き
func mergeSettings(base, override Settings) Settings {
	if override.OutputDir != "" {
		base.OutputDir = override.OutputDir
	}
	if override.Format != "" {
		base.Format = override.Format
	}
	if override.HoursPerDay != 0 {
		base.HoursPerDay = override.HoursPerDay
	}
	if override.PageSize != 0 {
		base.PageSize = override.PageSize
	}
	if override.Blacklist != "" {
		base.Blacklist = override.Blacklist
	}
	if override.EnvFile != "" {
		base.EnvFile = override.EnvFile
	}
	return base
}
