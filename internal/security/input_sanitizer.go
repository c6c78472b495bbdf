// Package security はアプリケーションのセキュリティ機能を提供する。
//
// InputSanitizerService はユーザー入力（氏名、スクラム名、タスクのタイトルや
// 説明文など）をサニタイズし、格納型XSSからユーザーを保護する。
// これらのフィールドはすべてプレーンテキストとして扱うため、
// bluemondayのStrictPolicyでHTMLタグを全面的に除去する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// InputSanitizerService はプレーンテキスト入力のサニタイズ機能の
// インターフェースを定義する。ユーザー・スクラム・タスクの保存前に使用される。
type InputSanitizerService interface {
	// SanitizeText は入力文字列からHTMLタグをすべて除去し、
	// 前後の空白をトリムしたプレーンテキストを返す。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeText(input string) string
}

// inputSanitizer はInputSanitizerServiceの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフにサニタイズ処理を行う。
type inputSanitizer struct {
	policy *bluemonday.Policy
}

// NewInputSanitizer はInputSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyはすべてのHTML要素と属性を除去する。
func NewInputSanitizer() *inputSanitizer {
	return &inputSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// SanitizeText は入力文字列からHTMLタグをすべて除去して返す。
// bluemondayはタグ除去後にテキストをエンティティエスケープするため、
// プレーンテキストとして保存できるようアンエスケープして戻す。
func (s *inputSanitizer) SanitizeText(input string) string {
	stripped := s.policy.Sanitize(input)
	return strings.TrimSpace(html.UnescapeString(stripped))
}
