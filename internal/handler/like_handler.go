package handler

import (
	"Lee_Microblog/internal/middleware"
	"Lee_Microblog/internal/service"

	"github.com/gin-gonic/gin"
)

type LikeHandler struct {
	svc *service.LikeService
}

func NewLikeHandler(svc *service.LikeService) *LikeHandler {
	return &LikeHandler{svc: svc}
}

// Like 点赞
func (h *LikeHandler) Like(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Like(c.Request.Context(), middleware.UserID(c), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// Unlike 取消点赞
func (h *LikeHandler) Unlike(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Unlike(c.Request.Context(), middleware.UserID(c), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// Likers 点赞人列表
func (h *LikeHandler) Likers(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	cursor, limit := page(c)
	users, next, err := h.svc.LikersOf(c.Request.Context(), id, cursor, limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"users": users, "next_cursor": next})
}
