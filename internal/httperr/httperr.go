// Package httperr は予期しないエラーを 500 診断レスポンスへ変換します。
package httperr

import (
	"fmt"
	"log"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

const sageAdvice = "Finding the real error is 90% of the bug fix"

// Responder は 500 レスポンスの組み立てを担います。
// Debug が無効な場合、エラー詳細とスタックトレースはレスポンスに含めず、
// サーバー側のログにのみ残します。
type Responder struct {
	Debug  bool
	Logger *log.Logger
}

// NewResponder は Responder を作成します。
func NewResponder(debugErrors bool, logger *log.Logger) *Responder {
	if logger == nil {
		logger = log.Default()
	}
	return &Responder{Debug: debugErrors, Logger: logger}
}

// Internal は 500 レスポンスを返し、フローを中断します。
func (r *Responder) Internal(c *gin.Context, err error) {
	stack := string(debug.Stack())
	r.Logger.Printf("internal error: %s %s: %v\n%s", c.Request.Method, c.Request.URL.Path, err, stack)

	body := gin.H{"sageAdvice": sageAdvice}
	if r.Debug {
		body["error"] = err.Error()
		body["stack"] = stack
	} else {
		body["error"] = "internal server error"
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, body)
}

// Recovery は panic を 500 診断レスポンスへ変換するミドルウェアを返します。
func (r *Responder) Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		r.Internal(c, fmt.Errorf("panic recovered: %v", recovered))
	})
}
