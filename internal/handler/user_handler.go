package handler

import (
	"Lee_Microblog/internal/middleware"
	"Lee_Microblog/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users   *service.UserService
	follows *service.FollowService
}

func NewUserHandler(users *service.UserService, follows *service.FollowService) *UserHandler {
	return &UserHandler{users: users, follows: follows}
}

// RegisterReq 注册请求体
type RegisterReq struct {
	Name string `json:"name" binding:"required,max=32"`
}

type RefreshReq struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Register 注册接口，API key 只在这里返回一次
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name is required")
		return
	}
	user, key, err := h.users.Register(c.Request.Context(), req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"user": user.Ref(), "api_key": key})
}

// List 用户列表
func (h *UserHandler) List(c *gin.Context) {
	cursor, limit := page(c)
	users, next, err := h.follows.ListUsers(c.Request.Context(), cursor, limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"users": users, "next_cursor": next})
}

// Me 当前用户信息
func (h *UserHandler) Me(c *gin.Context) {
	uid := middleware.UserID(c)
	p, err := h.users.Profile(c.Request.Context(), uid, uid)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"user": p})
}

// Get 其他用户信息，附带当前用户是否已关注
func (h *UserHandler) Get(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	p, err := h.users.Profile(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"user": p})
}

// IssueToken 用 api-key 换 JWT
func (h *UserHandler) IssueToken(c *gin.Context) {
	pair, err := h.users.IssueToken(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"token": pair})
}

// TokenRefresh 刷新接口
func (h *UserHandler) TokenRefresh(c *gin.Context) {
	var req RefreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "refresh_token is required")
		return
	}
	pair, err := h.users.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"token": pair})
}
