package utils

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// logger はパッケージ全体で共有するロガーです
var logger zerolog.Logger

// init関数はパッケージがインポートされたときに自動的に実行されます
func init() {
	SetOutput(os.Stderr)
}

// SetOutput はログの出力先を切り替えます（テストでは io.Discard を渡します）
func SetOutput(w io.Writer) {
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime, NoColor: true}
	logger = zerolog.New(output).With().Timestamp().Logger()
}

// LogInfo は情報レベルのメッセージをログに記録します
func LogInfo(format string, v ...interface{}) {
	logger.Info().Msgf(format, v...)
}

// LogWarn は警告レベルのメッセージをログに記録します
func LogWarn(format string, v ...interface{}) {
	logger.Warn().Msgf(format, v...)
}

// LogError はエラーレベルのメッセージをログに記録します
func LogError(format string, v ...interface{}) {
	logger.Error().Msgf(format, v...)
}

// TrackTime は関数の実行時間を計測して出力するユーティリティです
func TrackTime(start time.Time, name string) {
	elapsed := time.Since(start)
	logger.Info().Dur("elapsed", elapsed).Msgf("%s 完了", name)
}
