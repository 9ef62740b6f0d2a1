package model

import "time"

// Attachment 上传的媒体文件；TweetID 为空表示尚未绑定推文
type Attachment struct {
	ID         uint64    `gorm:"primaryKey" json:"id"`
	UploaderID uint64    `gorm:"not null;index" json:"-"`
	TweetID    *uint64   `gorm:"index:idx_attachment_tweet,priority:1" json:"-"`
	Position   int       `gorm:"not null;default:0;index:idx_attachment_tweet,priority:2" json:"-"`
	StorageKey string    `gorm:"size:128;not null" json:"-"`
	URL        string    `gorm:"size:255;not null" json:"url"`
	MimeType   string    `gorm:"size:64;not null" json:"mime_type"`
	Size       int64     `gorm:"not null" json:"size"`
	FileName   string    `gorm:"size:255" json:"file_name,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (Attachment) TableName() string {
	return "attachments"
}
