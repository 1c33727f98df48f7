package models

import "errors"

// CLIの境界で errors.Is により判定するエラーです
var (
	ErrConfig       = errors.New("設定エラー")
	ErrInvalidMonth = errors.New("月の指定が不正です (YYYY/MM)")
	ErrInvalidDays  = errors.New("日数の指定が不正です")
	ErrAuth         = errors.New("JIRA認証エラー")
	ErrNetwork      = errors.New("JIRAへの接続エラー")
	ErrFileExists   = errors.New("ファイルが既に存在します")
)
