package users

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/gatehouse/internal/httperr"
)

// ListHandler は GET /api/users のハンドラーを返します。
// セッション検証はルーティング側のガードに委ねます。
func ListHandler(store Store, errs *httperr.Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := store.FindAll(c.Request.Context())
		if err != nil {
			errs.Internal(c, err)
			return
		}
		if list == nil {
			list = []User{}
		}
		c.JSON(http.StatusOK, list)
	}
}
