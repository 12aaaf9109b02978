// Package validate はリクエストボディの必須フィールド検査を提供します。
package validate

import "strings"

// FirstEmpty は required のうち、欠落しているか、トリム後に空文字となる
// 最初のフィールド名を返します。全フィールドが有効な場合は空文字を返します。
func FirstEmpty(body map[string]any, required ...string) string {
	for _, field := range required {
		value, ok := body[field]
		if !ok {
			return field
		}
		s, ok := value.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return field
		}
	}
	return ""
}

// FirstAbsent は required のうち、ボディに存在しない最初のフィールド名を
// 返します。値の中身は検査しません（ログイン系の存在チェック用）。
func FirstAbsent(body map[string]any, required ...string) string {
	for _, field := range required {
		if _, ok := body[field]; !ok {
			return field
		}
	}
	return ""
}

// StringField はフィールドを文字列として取り出します。
// 存在しない場合や文字列でない場合は空文字を返します。
func StringField(body map[string]any, field string) string {
	s, _ := body[field].(string)
	return s
}
