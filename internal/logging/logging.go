// Package logging 配置 logrus 并提供 Gin 请求日志中间件
package logging

import (
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// RequestIDHeader 是请求追踪 ID 的响应头
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// Setup 设置全局日志级别与输出；logFile 非空时同时写入按大小滚动的文件
func Setup(level, logFile string) {
	parsed, err := log.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		parsed = log.InfoLevel
	}
	log.SetLevel(parsed)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	var out io.Writer = os.Stdout
	if path := strings.TrimSpace(logFile); path != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   path,
			MaxSize:    20,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		})
	}
	log.SetOutput(out)
}

// Middleware 为每个请求分配追踪 ID 并记录访问日志
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		entry := log.WithFields(log.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			if last := c.Errors.Last(); last != nil {
				entry = entry.WithError(last)
			}
			entry.Error("request failed")
			return
		}
		if len(c.Errors) > 0 {
			entry.WithError(c.Errors.Last()).Warn("request completed with errors")
			return
		}
		entry.Debug("request completed")
	}
}

// FromContext 返回携带请求 ID 的日志条目
func FromContext(c *gin.Context) *log.Entry {
	return log.WithField("request_id", c.GetString(requestIDKey))
}
