package model

import "time"

// Like 点赞记录，(user_id, tweet_id) 由唯一索引保证只有一条
type Like struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	UserID    uint64 `gorm:"not null;uniqueIndex:uk_like_user_tweet,priority:1"`
	TweetID   uint64 `gorm:"not null;uniqueIndex:uk_like_user_tweet,priority:2;index:idx_like_tweet"`
	User      User   `gorm:"foreignKey:UserID"`
	Tweet     Tweet  `gorm:"foreignKey:TweetID"`
	CreatedAt time.Time
}

func (Like) TableName() string {
	return "likes"
}

// Engagement 单条推文的聚合互动数据
type Engagement struct {
	Count int64
	Liked bool
}
