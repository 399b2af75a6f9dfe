package server

import (
	"net/http"

	"github.com/containerd/errdefs"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	requestIDHeader = "X-Request-Id"
	requestIDKey    = "request_id"
)

// requestID は X-Request-Id をレスポンスに付ける。リクエストに無ければ生成する。
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// errorHandler はハンドラが記録した最後のエラーをステータスコードに変換して返す
func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}

		status := statusFromError(last.Err)
		entry := requestLogger(c).WithError(last.Err).WithField("status", status)
		if status >= http.StatusInternalServerError {
			entry.Error("リクエストの処理に失敗しました")
		} else {
			entry.Debug("リクエストを拒否しました")
		}

		c.String(status, http.StatusText(status))
	}
}

// recovery はハンドラのパニックを回復し、500を返す
func recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, e any) {
		requestLogger(c).WithField("panic", e).Error("パニックから回復しました")
		c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		c.Abort()
	})
}

// statusFromError はerrdefsの分類からHTTPステータスを決める
func statusFromError(err error) int {
	switch {
	case errdefs.IsNotFound(err):
		return http.StatusNotFound
	case errdefs.IsPermissionDenied(err):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// requestLogger はリクエストの情報を付けたロガーを返す
func requestLogger(c *gin.Context) *logrus.Entry {
	return logrus.WithContext(c.Request.Context()).WithFields(logrus.Fields{
		requestIDKey: c.GetString(requestIDKey),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
	})
}
