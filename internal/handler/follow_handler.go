package handler

import (
	"Lee_Microblog/internal/middleware"
	"Lee_Microblog/internal/service"

	"github.com/gin-gonic/gin"
)

type FollowHandler struct {
	svc *service.FollowService
}

func NewFollowHandler(svc *service.FollowService) *FollowHandler {
	return &FollowHandler{svc: svc}
}

// Follow 关注接口
func (h *FollowHandler) Follow(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Follow(c.Request.Context(), middleware.UserID(c), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// Unfollow 取消关注
func (h *FollowHandler) Unfollow(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Unfollow(c.Request.Context(), middleware.UserID(c), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// ListFollowings 获取关注列表
func (h *FollowHandler) ListFollowings(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	cursor, limit := page(c)
	users, next, err := h.svc.ListFollowings(c.Request.Context(), id, cursor, limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"users": users, "next_cursor": next})
}

// ListFollowers 获取粉丝列表
func (h *FollowHandler) ListFollowers(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	cursor, limit := page(c)
	users, next, err := h.svc.ListFollowers(c.Request.Context(), id, cursor, limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"users": users, "next_cursor": next})
}
