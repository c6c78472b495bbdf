// Package logger はslogベースのJSON構造化ログを構成する。
package logger

import (
	"io"
	"log/slog"
	"os"
)

// serviceName は全ログエントリに付与されるサービス識別子。
// 複数サービスのログを同じ集約基盤に流したときの絞り込みに使う。
const serviceName = "scrumdesk"

// Setup はJSON構造化ログ出力のslog.Loggerを生成して返す。
// 全エントリにserviceフィールドが付く。
func Setup(w io.Writer) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(handler).With(slog.String("service", serviceName))
}

// SetupDefault はJSON構造化ログ出力をグローバルロガーとして設定する。
// writerがnilの場合はos.Stdoutに出力する。
func SetupDefault(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	slog.SetDefault(Setup(w))
}
