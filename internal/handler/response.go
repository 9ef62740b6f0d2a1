package handler

import (
	"errors"
	"net/http"
	"strconv"

	"Lee_Microblog/internal/pkg"

	"github.com/gin-gonic/gin"
)

// ok 成功响应 {"result": true, ...}
func ok(c *gin.Context, data gin.H) {
	body := gin.H{"result": true}
	for k, v := range data {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// fail 按错误类别映射状态码；内部错误不把细节返回给客户端
func fail(c *gin.Context, err error) {
	kind := pkg.KindOf(err)
	msg := err.Error()
	if kind == pkg.KindInternal {
		_ = c.Error(err)
		msg = "internal server error"
	}
	body := gin.H{
		"result":        false,
		"error_type":    kind.String(),
		"error_message": msg,
	}
	var e *pkg.Error
	if errors.As(err, &e) && e.Code != "" {
		body["error_code"] = e.Code
	}
	c.AbortWithStatusJSON(statusOf(kind), body)
}

func badRequest(c *gin.Context, msg string) {
	fail(c, pkg.NewError(pkg.KindValidation, "BAD_REQUEST", msg))
}

func statusOf(kind pkg.Kind) int {
	switch kind {
	case pkg.KindNotFound:
		return http.StatusNotFound
	case pkg.KindForbidden:
		return http.StatusForbidden
	case pkg.KindConflict:
		return http.StatusConflict
	case pkg.KindValidation:
		return http.StatusBadRequest
	case pkg.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func paramID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		fail(c, pkg.ErrInvalidID)
		return 0, false
	}
	return id, true
}

// page 游标分页参数，非法值按默认处理
func page(c *gin.Context) (uint64, int) {
	cursor, _ := strconv.ParseUint(c.Query("cursor"), 10, 64)
	limit, _ := strconv.Atoi(c.Query("limit"))
	return cursor, limit
}
