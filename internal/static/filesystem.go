package static

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/containerd/errdefs"
)

var (
	// ErrNotFound はファイルが存在しない、またはインデックスのないディレクトリを表す
	ErrNotFound = fmt.Errorf("ファイルが見つかりません: %w", errdefs.ErrNotFound)

	// ErrPathTraversal はルートディレクトリの外を指すパスを表す
	ErrPathTraversal = fmt.Errorf("ルートディレクトリ外へのアクセス: %w", errdefs.ErrPermissionDenied)
)

// File は配信用に開いたファイル
type File struct {
	*os.File

	Name        string // ルートからの相対パス
	Size        int64  // バイト数
	ContentType string // 拡張子から決めたContent-Type
}

// FileSystem はルートディレクトリ配下のファイルへの読み取り専用アクセスを提供する
type FileSystem struct {
	dir      string // ルートの絶対パス
	resolved string // シンボリックリンクを解決したルートの絶対パス
	index    string
	root     *os.Root
}

// NewFileSystem はdirをルートとするFileSystemを作成する
func NewFileSystem(dir, index string) (*FileSystem, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("ルートディレクトリの絶対パス取得に失敗: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("ルートディレクトリの確認に失敗: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("ルートディレクトリではありません: %s", abs)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("ルートディレクトリのシンボリックリンク解決に失敗: %w", err)
	}

	root, err := os.OpenRoot(abs)
	if err != nil {
		return nil, fmt.Errorf("ルートディレクトリのオープンに失敗: %w", err)
	}

	return &FileSystem{
		dir:      abs,
		resolved: resolved,
		index:    index,
		root:     root,
	}, nil
}

// Dir はルートディレクトリの絶対パスを返す
func (s *FileSystem) Dir() string {
	return s.dir
}

// Open はリクエストパスに対応するファイルを開く。
// ディレクトリの場合はその中のインデックスファイルを開く。
// 末尾がスラッシュのパスはディレクトリにしか一致しない。
func (s *FileSystem) Open(requested string) (*File, error) {
	abs, ok := Resolve(s.dir, requested)
	if !ok {
		return nil, fmt.Errorf("%q: %w", requested, ErrPathTraversal)
	}

	// Resolveが成功していればRelは失敗しない
	rel, err := filepath.Rel(s.dir, abs)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", requested, ErrPathTraversal)
	}

	f, info, err := s.open(rel)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() && strings.HasSuffix(requested, "/") {
		f.Close()
		return nil, fmt.Errorf("%s/: %w", rel, ErrNotFound)
	}

	if info.IsDir() {
		f.Close()

		rel = filepath.Join(rel, s.index)
		f, info, err = s.open(rel)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			f.Close()
			return nil, fmt.Errorf("%s: %w", rel, ErrNotFound)
		}
	}

	return &File{
		File:        f,
		Name:        filepath.ToSlash(rel),
		Size:        info.Size(),
		ContentType: ContentType(rel),
	}, nil
}

// Close はルートディレクトリのハンドルを閉じる
func (s *FileSystem) Close() error {
	return s.root.Close()
}

// open はルート経由でファイルを開き、情報を取得する
func (s *FileSystem) open(rel string) (*os.File, fs.FileInfo, error) {
	f, err := s.root.Open(rel)
	if err != nil {
		f, err = s.openResolved(rel, err)
		if err != nil {
			return nil, nil, err
		}
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, s.classify(rel, err)
	}

	return f, info, nil
}

// openResolved は os.Root が辿らないシンボリックリンク（絶対パスのリンク先など）を
// 解決し、リンク先がルート内であれば解決後の相対パスで開き直す。
// 開き直しも os.Root 経由なので、ルート外には出られない。
func (s *FileSystem) openResolved(rel string, cause error) (*os.File, error) {
	if errors.Is(cause, fs.ErrNotExist) || errors.Is(cause, fs.ErrPermission) {
		return nil, s.classify(rel, cause)
	}

	target, err := filepath.EvalSymlinks(filepath.Join(s.dir, rel))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", rel, ErrNotFound)
		}
		return nil, s.classify(rel, cause)
	}
	if !within(s.resolved, target) {
		return nil, fmt.Errorf("%s: %w", rel, ErrPathTraversal)
	}

	inner, err := filepath.Rel(s.resolved, target)
	if err != nil || inner == rel {
		return nil, s.classify(rel, cause)
	}

	f, err := s.root.Open(inner)
	if err != nil {
		return nil, s.classify(inner, err)
	}
	return f, nil
}

// classify はOSのエラーをerrdefsの分類に変換する
func (s *FileSystem) classify(rel string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s: %w", rel, ErrNotFound)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%s: %w", rel, errdefs.ErrPermissionDenied)
	default:
		return fmt.Errorf("%s: %w: %w", rel, errdefs.ErrInternal, err)
	}
}
