package model

import "time"

const (
	EventTweetCreated   = "tweet.created"
	EventTweetDeleted   = "tweet.deleted"
	EventTweetLiked     = "tweet.liked"
	EventTweetUnliked   = "tweet.unliked"
	EventUserFollowed   = "user.followed"
	EventUserUnfollowed = "user.unfollowed"
)

const (
	OutboxPending int8 = 0
	OutboxSent    int8 = 1
	OutboxFailed  int8 = 2
)

// OutboxEvent 与业务写操作同事务落库的领域事件，由 relay 异步投递到 kafka
type OutboxEvent struct {
	ID        uint64 `gorm:"primaryKey"`
	EventType string `gorm:"size:32;not null"`
	ActorID   uint64 `gorm:"not null"`
	SubjectID uint64 `gorm:"not null"`
	Payload   string `gorm:"type:text;not null"`
	Status    int8   `gorm:"not null;default:0;index:idx_outbox_status,priority:1;comment:'0=pending,1=sent,2=failed'"`
	Retry     int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time `gorm:"index"`
}

func (OutboxEvent) TableName() string { return "event_outbox" }
