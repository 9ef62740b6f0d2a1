package model

import "time"

// Follow 关注关系，(follower_id, followee_id) 唯一，且不允许自己关注自己
type Follow struct {
	ID         uint64 `gorm:"primaryKey"`
	FollowerID uint64 `gorm:"not null;uniqueIndex:uk_follow_pair,priority:1"`
	FolloweeID uint64 `gorm:"not null;uniqueIndex:uk_follow_pair,priority:2;index:idx_followee_id;check:chk_follow_not_self,follower_id <> followee_id"`
	Follower   User   `gorm:"foreignKey:FollowerID"`
	Followee   User   `gorm:"foreignKey:FolloweeID"`
	CreatedAt  time.Time
}

// TableName sets table name for Follow
func (Follow) TableName() string {
	return "follows"
}
