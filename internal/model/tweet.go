package model

import "time"

const TweetMaxRunes = 280

type Tweet struct {
	ID          uint64       `gorm:"primaryKey" json:"id"`
	AuthorID    uint64       `gorm:"not null;index:idx_author_time,priority:1" json:"author_id"`
	Author      User         `gorm:"foreignKey:AuthorID" json:"author"`
	Content     string       `gorm:"type:text;not null" json:"content"`
	Attachments []Attachment `gorm:"foreignKey:TweetID" json:"attachments"`
	CreatedAt   time.Time    `gorm:"index:idx_author_time,priority:2,sort:desc;index:idx_tweet_time,sort:desc" json:"created_at"`
	UpdatedAt   time.Time    `json:"-"`
}

func (Tweet) TableName() string {
	return "tweets"
}
