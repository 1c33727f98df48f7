package config

import (
	"fmt"
	"os"
	"strings"

	"jirareport/models"
	"jirareport/utils"
)

// 設定キー（環境変数名と .env のキーは同じ）
const (
	KeyServerURL = "JIRA_SERVER_URL"
	KeyUsername  = "JIRA_USERNAME"
	KeyAPIToken  = "JIRA_API_TOKEN"
)

// Config はJIRAへの接続情報を保持します
type Config struct {
	JiraURL      string
	JiraUsername string
	JiraAPIToken string
}

// String はAPIトークンを伏せた形で設定を表示します
func (c Config) String() string {
	token := ""
	if c.JiraAPIToken != "" {
		token = "****"
	}
	return fmt.Sprintf("Config{JiraURL: %s, JiraUsername: %s, JiraAPIToken: %s}", c.JiraURL, c.JiraUsername, token)
}

// Loader は環境変数・設定ファイル・対話入力の順に接続情報を集めます
type Loader struct {
	Store    SettingsStore
	Prompter Prompter
	// Env はプロセスの環境変数。nilの場合は参照しません
	Env map[string]string
}

// NewLoader は新しいローダーを作成します
func NewLoader(store SettingsStore, prompter Prompter, env map[string]string) *Loader {
	return &Loader{
		Store:    store,
		Prompter: prompter,
		Env:      env,
	}
}

// LoadOrPrompt は接続情報を読み込み、足りない値は対話的に入力させて保存します
func (l *Loader) LoadOrPrompt() (*Config, error) {
	stored, err := l.Store.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: 設定ファイル読み込みエラー: %w", models.ErrConfig, err)
	}
	if stored == nil {
		stored = map[string]string{}
	}

	values := make(map[string]string, 3)
	prompted := false

	for _, key := range []string{KeyServerURL, KeyUsername, KeyAPIToken} {
		if v := l.lookup(key, stored); v != "" {
			values[key] = v
			continue
		}

		v, err := l.ask(key)
		if err != nil {
			return nil, err
		}
		values[key] = v
		stored[key] = v
		prompted = true
	}

	if prompted {
		if err := l.Store.Save(stored); err != nil {
			return nil, fmt.Errorf("%w: 設定ファイル書き込みエラー: %w", models.ErrConfig, err)
		}
		utils.LogInfo("接続情報を保存しました: %s", l.Store.Location())
	}

	return &Config{
		JiraURL:      strings.TrimRight(values[KeyServerURL], "/"),
		JiraUsername: values[KeyUsername],
		JiraAPIToken: values[KeyAPIToken],
	}, nil
}

// 環境変数を優先して値を取得
func (l *Loader) lookup(key string, stored map[string]string) string {
	if v := strings.TrimSpace(l.Env[key]); v != "" {
		return v
	}
	return strings.TrimSpace(stored[key])
}

// 空でない値が入力されるまで繰り返し尋ねる
func (l *Loader) ask(key string) (string, error) {
	if l.Prompter == nil {
		return "", fmt.Errorf("%w: %s が設定されていません", models.ErrConfig, key)
	}

	label := promptLabel(key)
	for {
		v, err := l.Prompter.Prompt(label, key == KeyAPIToken)
		if err != nil {
			return "", fmt.Errorf("%w: %s の入力が中断されました: %w", models.ErrConfig, key, err)
		}
		if v = strings.TrimSpace(v); v != "" {
			return v, nil
		}
	}
}

// "JIRA_SERVER_URL" → "Jira Server Url: "
func promptLabel(key string) string {
	words := strings.Split(strings.ToLower(key), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ") + ": "
}

// Environ はプロセスの環境変数をマップとして返します
func Environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}
