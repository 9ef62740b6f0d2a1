package handler

import (
	"Lee_Microblog/internal/middleware"
	"Lee_Microblog/internal/model"
	"Lee_Microblog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

type TweetHandler struct {
	tweets  *service.TweetService
	likes   *service.LikeService
	follows *service.FollowService
	feed    *service.FeedService
}

func NewTweetHandler(tweets *service.TweetService, likes *service.LikeService, follows *service.FollowService, feed *service.FeedService) *TweetHandler {
	return &TweetHandler{tweets: tweets, likes: likes, follows: follows, feed: feed}
}

// CreateTweetReq 发推请求体，字段名沿用原接口
type CreateTweetReq struct {
	TweetData     string   `json:"tweet_data"`
	TweetMediaIDs []uint64 `json:"tweet_media_ids"`
}

// Create 发推
func (h *TweetHandler) Create(c *gin.Context) {
	var req CreateTweetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	tweet, err := h.tweets.Create(c.Request.Context(), middleware.UserID(c), req.TweetData, req.TweetMediaIDs)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"tweet_id": tweet.ID})
}

// Feed 当前用户的信息流
func (h *TweetHandler) Feed(c *gin.Context) {
	items, err := h.feed.GetFeed(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"tweets": items})
}

// Get 单条推文详情
func (h *TweetHandler) Get(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	ctx := c.Request.Context()
	viewer := middleware.UserID(c)

	tweet, err := h.tweets.GetByID(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	items, err := h.present(c, viewer, tweet.AuthorID, []model.Tweet{*tweet})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"tweet": items[0]})
}

// ListByAuthor 某个用户的推文，按时间倒序分页
func (h *TweetHandler) ListByAuthor(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	cursor, limit := page(c)
	tweets, next, err := h.tweets.ListByAuthor(c.Request.Context(), id, cursor, limit)
	if err != nil {
		fail(c, err)
		return
	}
	items, err := h.present(c, middleware.UserID(c), id, tweets)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"tweets": items, "next_cursor": next})
}

// Delete 删除推文，只有作者可以删
func (h *TweetHandler) Delete(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := h.tweets.Delete(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// present 同一作者的推文批量补齐互动数据
func (h *TweetHandler) present(c *gin.Context, viewer, authorID uint64, tweets []model.Tweet) ([]service.FeedItem, error) {
	items := make([]service.FeedItem, 0, len(tweets))
	if len(tweets) == 0 {
		return items, nil
	}
	ctx := c.Request.Context()
	engagement, err := h.likes.EngagementBatch(ctx, viewer, lo.Map(tweets, func(t model.Tweet, _ int) uint64 { return t.ID }))
	if err != nil {
		return nil, err
	}
	followed := false
	if viewer != authorID {
		if followed, err = h.follows.IsFollowing(ctx, viewer, authorID); err != nil {
			return nil, err
		}
	}
	for _, t := range tweets {
		items = append(items, service.NewFeedItem(t, engagement[t.ID], followed))
	}
	return items, nil
}
