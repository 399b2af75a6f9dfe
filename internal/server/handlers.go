package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// allowedMethods はすべてのルートで受け付けるメソッド
const allowedMethods = "GET, HEAD"

// handleHealth はヘルスチェックエンドポイント。ファイルシステムには触れない。
func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// handleRoot はルートのインデックスファイルを返す
func (s *Server) handleRoot(c *gin.Context) {
	s.serveFile(c, "/")
}

// handleFile はルート配下のファイルを返す
func (s *Server) handleFile(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodGet, http.MethodHead:
	default:
		c.Header("Allow", allowedMethods)
		c.String(http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
		return
	}

	s.serveFile(c, c.Request.URL.Path)
}

// serveFile はファイルを開いて内容をそのまま返す。
// 失敗した場合はエラーを記録し、errorHandler にステータスの決定を任せる。
func (s *Server) serveFile(c *gin.Context, requested string) {
	f, err := s.files.Open(requested)
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer f.Close()

	c.Header("X-Content-Type-Options", "nosniff")

	if c.Request.Method == http.MethodHead {
		c.Header("Content-Type", f.ContentType)
		c.Header("Content-Length", strconv.FormatInt(f.Size, 10))
		c.Status(http.StatusOK)
		return
	}

	c.DataFromReader(http.StatusOK, f.Size, f.ContentType, f, nil)
}
