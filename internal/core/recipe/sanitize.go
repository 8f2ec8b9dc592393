package recipe

import "html"

// Sanitize 跳脫標記語言字元，用於在 html/template 以外回顯使用者輸入
func Sanitize(s string) string {
	return html.EscapeString(s)
}
