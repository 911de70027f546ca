package services

import (
	"strings"
	"time"

	"reviewservice/internal/models"
)

// ReviewResponse is the outward view of a review. Comments are never
// embedded, only counted.
type ReviewResponse struct {
	ID            uint                `json:"id"`
	ReviewType    models.ReviewType   `json:"review_type"`
	Title         string              `json:"title"`
	ContentHTML   string              `json:"content_html"`
	IPAddress     string              `json:"ip_address,omitempty"`
	LikeCount     int                 `json:"like_count"`
	DislikeCount  int                 `json:"dislike_count"`
	HasComment    bool                `json:"has_comment"`
	Status        models.ReviewStatus `json:"status"`
	IsEmployee    bool                `json:"is_employee"`
	Dept          string              `json:"dept,omitempty"`
	Role          string              `json:"role,omitempty"`
	CompanyName   string              `json:"company_name,omitempty"`
	Website       string              `json:"website,omitempty"`
	WorkStartDate *time.Time          `json:"work_start_date,omitempty"`
	WorkEndDate   *time.Time          `json:"work_end_date,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	ReviewerName  string              `json:"reviewer_name"`
	TotalComments int                 `json:"total_comments"`
}

// CommentResponse flattens the review and parent links to ids.
type CommentResponse struct {
	ID            uint                 `json:"id"`
	Content       string               `json:"content"`
	LikeCount     int                  `json:"like_count"`
	DislikeCount  int                  `json:"dislike_count"`
	ReviewID      uint                 `json:"review_id"`
	ParentID      *uint                `json:"parent_id"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
	Status        models.CommentStatus `json:"status"`
	HasReplies    bool                 `json:"has_replies"`
	CommenterName string               `json:"commenter_name"`
	TotalReplies  int                  `json:"total_replies"`
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return models.DefaultDisplayName
	}
	return name
}

func toReviewResponse(r *models.Review) ReviewResponse {
	if r.TotalComments < 0 {
		r.TotalComments = 0
	}
	return ReviewResponse{
		ID:            r.ID,
		ReviewType:    r.ReviewType,
		Title:         r.Title,
		ContentHTML:   r.ContentHTML,
		IPAddress:     r.IPAddress,
		LikeCount:     r.LikeCount,
		DislikeCount:  r.DislikeCount,
		HasComment:    r.HasComment(),
		Status:        r.Status,
		IsEmployee:    r.IsEmployee,
		Dept:          r.Dept,
		Role:          r.Role,
		CompanyName:   r.CompanyName,
		Website:       r.Website,
		WorkStartDate: r.WorkStartDate,
		WorkEndDate:   r.WorkEndDate,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		ReviewerName:  displayName(r.ReviewerName),
		TotalComments: r.TotalComments,
	}
}

func toCommentResponse(c *models.Comment) CommentResponse {
	if c.TotalReplies < 0 {
		c.TotalReplies = 0
	}
	var parentID *uint
	if c.ParentID != nil {
		id := *c.ParentID
		parentID = &id
	}
	return CommentResponse{
		ID:            c.ID,
		Content:       c.Content,
		LikeCount:     c.LikeCount,
		DislikeCount:  c.DislikeCount,
		ReviewID:      c.ReviewID,
		ParentID:      parentID,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
		Status:        c.Status,
		HasReplies:    c.HasReplies(),
		CommenterName: displayName(c.CommenterName),
		TotalReplies:  c.TotalReplies,
	}
}
