package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"jirareport/api"
	"jirareport/config"
	"jirareport/models"
	"jirareport/services"
	"jirareport/utils"
)

func main() {
	prompter := config.NewLinerPrompter()
	code := run(os.Args[1:], os.Stdout, os.Stderr, config.Environ(), prompter, time.Now())
	_ = prompter.Close()
	os.Exit(code)
}

type options struct {
	month     string
	days      int
	force     bool
	blacklist string
	output    string
	format    string
	settings  string
	help      bool
}

// run はフラグを解析してレポートを作成します。終了コードを返します
func run(args []string, stdout, stderr io.Writer, env map[string]string, prompter config.Prompter, now time.Time) int {
	utils.SetOutput(stderr)

	fs := flag.NewFlagSet("jira_report", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts options
	fs.StringVar(&opts.month, "month", "", "対象月 (YYYY/MM)。省略時は今月")
	fs.IntVarP(&opts.days, "days", "d", 0, "工数配分に使う営業日数。省略時は月の平日数")
	fs.BoolVarP(&opts.force, "force-overwrite", "f", false, "既存のレポートファイルを上書きする")
	fs.StringVarP(&opts.blacklist, "blacklist", "b", "", "除外するイシューキーを1行ずつ書いたファイル")
	fs.StringVarP(&opts.output, "output", "o", "", "出力ファイルのパス。省略時は Jira_<年>_<月>.<拡張子>")
	fs.StringVar(&opts.format, "format", "", "レポート形式 (xlsx|csv)")
	fs.StringVar(&opts.settings, "settings", config.DefaultSettingsFile, "レポート設定ファイル (JSONC)")
	fs.BoolVarP(&opts.help, "help", "h", false, "ヘルプを表示する")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		printHelp(stderr, fs)
		return 1
	}

	if opts.help {
		printHelp(stdout, fs)
		return 0
	}

	if fs.Changed("days") && opts.days <= 0 {
		utils.LogError("%v: %d", models.ErrInvalidDays, opts.days)
		return 1
	}

	path, err := generate(opts, env, prompter, now)
	if err != nil {
		utils.LogError("%s", describe(err))
		return 1
	}

	fmt.Fprintln(stdout, path)
	return 0
}

// generate は設定を読み込み、パイプライン全体を実行して出力パスを返します
func generate(opts options, env map[string]string, prompter config.Prompter, now time.Time) (string, error) {
	settings, err := config.LoadSettings(opts.settings)
	if err != nil {
		return "", err
	}

	// コマンドラインで指定された場合、設定を上書き
	if opts.format != "" {
		settings.Format = opts.format
	}
	if opts.blacklist != "" {
		settings.Blacklist = opts.blacklist
	}

	rng, err := services.ResolveDateRange(opts.month, opts.days, now)
	if err != nil {
		return "", err
	}

	writer, err := services.NewReportWriter(settings.Format)
	if err != nil {
		return "", err
	}

	path := opts.output
	if path == "" {
		path = filepath.Join(settings.OutputDir, services.DefaultFileName(rng, writer.Extension()))
	}

	// JIRAへ問い合わせる前に上書き可否を確認
	if err := services.CheckTarget(path, opts.force); err != nil {
		return "", err
	}

	var blacklist services.Blacklist
	if settings.Blacklist != "" {
		utils.LogInfo("ブラックリストを使用します: %s", settings.Blacklist)
		blacklist, err = services.LoadBlacklist(settings.Blacklist)
		if err != nil {
			return "", err
		}
	}

	loader := config.NewLoader(config.NewDotEnvStore(settings.EnvFile), prompter, env)
	cfg, err := loader.LoadOrPrompt()
	if err != nil {
		return "", err
	}

	client := api.NewJiraClient(cfg, settings.PageSize)
	svc := services.NewReportService(client, writer, blacklist, settings.WorkDay())

	result, err := svc.Generate(context.Background(), rng, path, opts.force)
	if err != nil {
		return "", err
	}

	if abs, err := filepath.Abs(result.Path); err == nil {
		utils.LogInfo("ファイルを出力しました: %q", abs)
	}
	return result.Path, nil
}

// エラーの種類に応じて1行のメッセージにする
func describe(err error) string {
	switch {
	case errors.Is(err, models.ErrFileExists):
		return err.Error()
	case errors.Is(err, models.ErrAuth):
		return fmt.Sprintf("%v（JIRA_USERNAME と JIRA_API_TOKEN を確認してください）", err)
	case errors.Is(err, models.ErrNetwork):
		return fmt.Sprintf("%v（JIRA_SERVER_URL とネットワーク接続を確認してください）", err)
	default:
		return strings.ReplaceAll(err.Error(), "\n", " ")
	}
}

// ヘルプメッセージを表示する関数
func printHelp(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, `
JIRA月次レポート作成ツール

使用方法:
  jira_report [オプション]

オプション:
%s
環境変数 (.env に保存されます):
  JIRA_SERVER_URL     JIRA URL (例: https://mycompany.atlassian.net)
  JIRA_USERNAME       JIRA APIアカウントのユーザー名またはメールアドレス
  JIRA_API_TOKEN      JIRA APIトークン

説明:
  指定した月に自分にアサインされていたイシューを取得し、営業日の工数を
  均等に配分したレポートを作成します。接続情報が見つからない場合は
  対話的に入力を求め、.env ファイルに保存します。
`, fs.FlagUsages())
}
