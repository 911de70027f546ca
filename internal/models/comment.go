package models

import (
	"time"
)

type CommentStatus string

const (
	CommentStatusActive  CommentStatus = "ACTIVE"
	CommentStatusHidden  CommentStatus = "HIDDEN"
	CommentStatusDeleted CommentStatus = "DELETED"
)

type Comment struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// ReviewID and ParentID are written once on insert and never updated.
	ReviewID      uint          `gorm:"<-:create;not null;index:idx_comments_review_id" json:"review_id"`
	ParentID      *uint         `gorm:"<-:create;index:idx_comments_parent_id" json:"parent_id"` // Nullable for top-level comments
	Parent        *Comment      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Content       string        `gorm:"type:text;not null" json:"content"`
	CommenterName string        `gorm:"size:100;default:'Anonymous'" json:"commenter_name"`
	IPAddress     string        `gorm:"column:ip_address;size:45" json:"ip_address"`
	LikeCount     int           `gorm:"not null;default:0" json:"like_count"`
	DislikeCount  int           `gorm:"not null;default:0" json:"dislike_count"`
	Status        CommentStatus `gorm:"type:varchar(50);not null;default:'ACTIVE'" json:"status"`
	CreatedAt     time.Time     `gorm:"index:idx_comments_created_at" json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	// 非数据库字段，查询时按 parent_id 实时统计
	TotalReplies int `gorm:"-" json:"total_replies"`
}

func (c *Comment) HasReplies() bool {
	return c.TotalReplies > 0
}

func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}
