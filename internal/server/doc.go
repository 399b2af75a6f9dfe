// Package server は、静的ファイルを配信するHTTPサーバーを管理します。
//
// このパッケージは、HTTPサーバーの起動、ルーティング、
// 静的ファイルの配信、ヘルスチェックを担当します。
//
// 責務:
//   - HTTPサーバーの起動と管理
//   - GET / でルートのindex.htmlを返す
//   - GET /{path} でルート配下のファイルを返す
//   - GET /health で固定の "ok" を返す
//   - エラーをHTTPステータスに変換する
//
// 仕様:
//   - ルーティングにはgin-gonic/ginを使用
//   - パスの安全性の確認とファイルのオープンは static パッケージに委譲
//   - キャッシュ関連ヘッダー、圧縮、ディレクトリ一覧は扱わない
//   - シグナルを受けるとグレースフルシャットダウンする
package server
