package public

import (
	handlershared "github.com/canteen-rush/internal/http/handlers/shared"
	"github.com/canteen-rush/internal/http/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "user_id")
}

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func buildPagination(page, pageSize int, total int64) response.Pagination {
	return handlershared.BuildPagination(page, pageSize, total)
}
