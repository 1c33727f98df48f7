package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"jirareport/api"
	"jirareport/config"
	"jirareport/models"
	"jirareport/utils"
)

func main() {
	prompter := config.NewLinerPrompter()
	code := run(os.Args[1:], os.Stdout, os.Stderr, config.Environ(), prompter)
	_ = prompter.Close()
	os.Exit(code)
}

func run(args []string, stdout, stderr io.Writer, env map[string]string, prompter config.Prompter) int {
	utils.SetOutput(stderr)

	fs := flag.NewFlagSet("auth_check", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	envFile := fs.String("env-file", ".env", "接続情報を保存する .env ファイル")
	help := fs.BoolP("help", "h", false, "ヘルプを表示する")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		printHelp(stderr, fs)
		return 1
	}

	// ヘルプフラグが指定された場合はヘルプを表示
	if *help {
		printHelp(stdout, fs)
		return 0
	}

	utils.LogInfo("JIRA認証確認ツール")

	// 設定の読み込み
	loader := config.NewLoader(config.NewDotEnvStore(*envFile), prompter, env)
	cfg, err := loader.LoadOrPrompt()
	if err != nil {
		utils.LogError("設定の読み込みに失敗しました: %v", err)
		return 1
	}

	// 認証チェック
	utils.LogInfo("JIRA APIの認証を確認しています...")
	client := api.NewJiraClient(cfg, 0)
	name, err := client.CheckAuth(context.Background())
	if err != nil {
		utils.LogError("%v", err)
		if errors.Is(err, models.ErrAuth) {
			utils.LogError("認証情報を確認してください。")
		}
		return 1
	}

	utils.LogInfo("JIRA認証成功！ 接続先: %s", cfg.JiraURL)
	fmt.Fprintln(stdout, name)
	return 0
}

// ヘルプメッセージを表示する関数
func printHelp(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, `
JIRA認証確認ツール

使用方法:
  auth_check [オプション]

オプション:
%s
環境変数:
  JIRA_SERVER_URL     JIRA URL (必須)
  JIRA_USERNAME       JIRA APIアカウントのユーザー名 (必須)
  JIRA_API_TOKEN      JIRA APIトークン (必須)

説明:
  このツールはJIRA APIの認証情報が正しく設定されているかを確認します。
  認証が成功すれば、レポート作成ツールも正常に動作する可能性が高いです。
`, fs.FlagUsages())
}
