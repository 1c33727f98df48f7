package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/natefinch/atomic"
)

// SettingsStore は接続情報の永続化先です
type SettingsStore interface {
	Load() (map[string]string, error)
	Save(values map[string]string) error
	Location() string
}

// DotEnvStore は .env ファイルに接続情報を保存します
type DotEnvStore struct {
	Path string
}

// NewDotEnvStore は新しい .env ストアを作成します
func NewDotEnvStore(path string) *DotEnvStore {
	return &DotEnvStore{Path: path}
}

// Load は .env ファイルを読み込みます。ファイルがない場合は空のマップを返します
func (s *DotEnvStore) Load() (map[string]string, error) {
	values, err := godotenv.Read(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf(".env読み込みエラー: %w", err)
	}
	return values, nil
}

// Save は既存のキーを残したまま .env ファイル全体を書き換えます
func (s *DotEnvStore) Save(values map[string]string) error {
	content, err := godotenv.Marshal(values)
	if err != nil {
		return fmt.Errorf(".envエンコードエラー: %w", err)
	}

	if err := atomic.WriteFile(s.Path, strings.NewReader(content+"\n")); err != nil {
		return fmt.Errorf(".env書き込みエラー: %w", err)
	}

	// atomic.WriteFile は新規ファイルのパーミッションを設定しない
	if err := os.Chmod(s.Path, 0o600); err != nil {
		return fmt.Errorf(".envパーミッション設定エラー: %w", err)
	}
	return nil
}

// Location は保存先のパスを返します
func (s *DotEnvStore) Location() string {
	return s.Path
}
