package model

import "time"

type User struct {
	ID           uint64    `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"uniqueIndex;size:32;not null" json:"name"`
	APIKeyDigest string    `gorm:"uniqueIndex;size:64;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}

// UserRef 作者/点赞人等嵌入式展示信息
type UserRef struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

func (u User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name}
}
