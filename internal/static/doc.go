// Package static は、ルートディレクトリ配下のファイルを安全に開きます。
//
// 責務:
//   - リクエストパスをルートディレクトリ内の絶対パスに解決する
//   - ルートの外へ出るパス（".." やルート外を指すシンボリックリンク）を拒否する
//   - ディレクトリに対してインデックスファイルを返す
//   - 拡張子からContent-Typeを決める
//
// 仕様:
//   - Resolve は純粋関数で、ファイルシステムに触れない
//   - ファイルは os.Root 経由で開くため、開く時点でもルート外には出られない
//   - エラーは containerd/errdefs の分類でラップする
//     (NotFound → 404, PermissionDenied → 403, Internal → 500)
package static
