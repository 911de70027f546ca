package models

import (
	"time"
)

type ReviewType string

const (
	ReviewTypePositive ReviewType = "POSITIVE"
	ReviewTypeNegative ReviewType = "NEGATIVE"
	ReviewTypeMixed    ReviewType = "MIXED"
)

func (t ReviewType) Valid() bool {
	switch t {
	case ReviewTypePositive, ReviewTypeNegative, ReviewTypeMixed:
		return true
	}
	return false
}

type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "PENDING"
	ReviewStatusApproved ReviewStatus = "APPROVED"
	ReviewStatusRejected ReviewStatus = "REJECTED"
)

// DefaultDisplayName is shown for reviewers and commenters who left no name.
const DefaultDisplayName = "Anonymous"

type Review struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	ReviewType    ReviewType   `gorm:"type:varchar(20);not null;index:idx_reviews_review_type" json:"review_type"`
	Title         string       `gorm:"size:255;not null" json:"title"`
	ContentHTML   string       `gorm:"column:content_html;type:text;not null" json:"content_html"` // sanitized on write
	IPAddress     string       `gorm:"column:ip_address;size:45" json:"ip_address"`
	LikeCount     int          `gorm:"not null;default:0" json:"like_count"`
	DislikeCount  int          `gorm:"not null;default:0" json:"dislike_count"`
	Status        ReviewStatus `gorm:"type:varchar(50);not null;default:'PENDING';index:idx_reviews_status" json:"status"`
	IsEmployee    bool         `gorm:"not null;default:false" json:"is_employee"`
	Dept          string       `gorm:"size:100" json:"dept"`
	Role          string       `gorm:"size:100" json:"role"`
	CompanyName   string       `gorm:"size:255;index:idx_reviews_company_name" json:"company_name"`
	Website       string       `gorm:"size:2048" json:"website"`
	WorkStartDate *time.Time   `json:"work_start_date"`
	WorkEndDate   *time.Time   `json:"work_end_date"`
	ReviewerName  string       `gorm:"size:100;default:'Anonymous'" json:"reviewer_name"`
	CreatedAt     time.Time    `gorm:"index:idx_reviews_created_at" json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`

	// Owned comments, top-level and replies alike. Only used for the schema's cascade rule.
	Comments []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	// 非数据库字段，查询时按 comments 表实时统计
	TotalComments int `gorm:"-" json:"total_comments"`
}

func (r *Review) HasComment() bool {
	return r.TotalComments > 0
}
