package static

import (
	"mime"
	"path/filepath"
	"strings"
)

// defaultContentType は拡張子から種類が分からないファイルに使う
const defaultContentType = "application/octet-stream"

// Resolve はスラッシュ区切りのリクエストパスをroot配下の絶対パスに解決する。
// 正規化した結果がrootの外を指す場合、またはNULバイトを含む場合はfalseを返す。
// rootは絶対パスでなければならない。
func Resolve(root, requested string) (string, bool) {
	if !filepath.IsAbs(root) || strings.ContainsRune(requested, 0) {
		return "", false
	}
	root = filepath.Clean(root)

	// Joinは内部でCleanするため、".."はここで畳み込まれる
	resolved := filepath.Join(root, filepath.FromSlash(requested))
	if !within(root, resolved) {
		return "", false
	}
	return resolved, true
}

// within はpathがrootそのもの、またはroot配下であるかを返す
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// ContentType はファイル名の拡張子からContent-Typeを返す。中身は見ない。
func ContentType(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return defaultContentType
}
