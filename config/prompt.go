package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/peterh/liner"
)

// Prompter は不足している設定値をオペレーターに尋ねます
type Prompter interface {
	Prompt(label string, secret bool) (string, error)
}

// LinerPrompter は端末からの行入力で値を尋ねます
// 端末は最初の Prompt 呼び出しまで初期化しません
type LinerPrompter struct {
	state *liner.State
}

// NewLinerPrompter は新しい端末プロンプトを作成します。使用後は Close を呼んでください
func NewLinerPrompter() *LinerPrompter {
	return &LinerPrompter{}
}

// Prompt はラベルを表示して1行読み取ります。secretの場合は入力を表示しません
func (p *LinerPrompter) Prompt(label string, secret bool) (string, error) {
	if p.state == nil {
		p.state = liner.NewLiner()
		p.state.SetCtrlCAborts(true)
	}

	if secret {
		v, err := p.state.PasswordPrompt(label)
		if err == nil {
			return v, nil
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", err
		}
		// パスワード入力に対応していない端末では通常の入力にフォールバック
	}
	return p.state.Prompt(label)
}

// Close は端末の状態を元に戻します
func (p *LinerPrompter) Close() error {
	if p.state == nil {
		return nil
	}
	return p.state.Close()
}

// LinePrompter は任意の io.Reader から1行ずつ値を読み取ります
type LinePrompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewLinePrompter は新しい行プロンプトを作成します
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

// Prompt はラベルを出力して次の1行を返します
func (p *LinePrompter) Prompt(label string, _ bool) (string, error) {
	_, _ = fmt.Fprint(p.out, label)
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return p.scanner.Text(), nil
}
