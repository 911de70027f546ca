package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"reviewservice/internal/models"
	"reviewservice/internal/services"

	"github.com/gin-gonic/gin"
)

type ReviewService interface {
	CreateReview(ctx context.Context, in services.ReviewCreateInput) (*services.ReviewResponse, error)
	GetReviewByID(ctx context.Context, id uint) (*services.ReviewResponse, error)
	GetReviews(ctx context.Context, filter services.ReviewFilter, page services.Pageable) (*services.Page[services.ReviewResponse], error)
	IncrementReviewLike(ctx context.Context, id uint) (*services.ReviewResponse, error)
	IncrementReviewDislike(ctx context.Context, id uint) (*services.ReviewResponse, error)
}

type ReviewCreateRequest struct {
	ReviewType    string     `json:"review_type" binding:"required,oneof=POSITIVE NEGATIVE MIXED"`
	Title         string     `json:"title" binding:"required,notblank,min=3,max=255"`
	Content       string     `json:"content" binding:"required,notblank,min=10"`
	IPAddress     string     `json:"ip_address" binding:"omitempty,max=45"`
	Dept          string     `json:"dept" binding:"omitempty,max=100"`
	Role          string     `json:"role" binding:"omitempty,max=100"`
	CompanyName   string     `json:"company_name" binding:"omitempty,max=255"`
	Website       string     `json:"website" binding:"omitempty,max=2048"`
	IsEmployee    *bool      `json:"is_employee"`
	WorkStartDate *time.Time `json:"work_start_date" binding:"omitempty,pastorpresent"`
	WorkEndDate   *time.Time `json:"work_end_date" binding:"omitempty,pastorpresent"`
	ReviewerName  string     `json:"reviewer_name" binding:"omitempty,max=100"`
}

type ReviewHandler struct {
	Service ReviewService
}

func NewReviewHandler(svc ReviewService) *ReviewHandler {
	return &ReviewHandler{Service: svc}
}

// Create 提交新评价
func (h *ReviewHandler) Create(c *gin.Context) {
	var req ReviewCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.WorkStartDate != nil && req.WorkEndDate != nil && req.WorkEndDate.Before(*req.WorkStartDate) {
		respondBadRequest(c, "work end date must not be before work start date")
		return
	}

	ip := req.IPAddress
	if ip == "" {
		ip = c.ClientIP()
	}

	review, err := h.Service.CreateReview(c.Request.Context(), services.ReviewCreateInput{
		ReviewType:    models.ReviewType(req.ReviewType),
		Title:         req.Title,
		Content:       req.Content,
		IPAddress:     ip,
		Dept:          req.Dept,
		Role:          req.Role,
		CompanyName:   req.CompanyName,
		Website:       req.Website,
		IsEmployee:    req.IsEmployee,
		WorkStartDate: req.WorkStartDate,
		WorkEndDate:   req.WorkEndDate,
		ReviewerName:  req.ReviewerName,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Location", fmt.Sprintf("%s/%d", strings.TrimSuffix(c.Request.URL.Path, "/"), review.ID))
	c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "reviewId")
	if !ok {
		return
	}
	review, err := h.Service.GetReviewByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// List 支持 companyName 和 reviewType 过滤
func (h *ReviewHandler) List(c *gin.Context) {
	filter := services.ReviewFilter{CompanyName: c.Query("companyName")}
	if raw := strings.TrimSpace(c.Query("reviewType")); raw != "" {
		t := models.ReviewType(strings.ToUpper(raw))
		if !t.Valid() {
			respondBadRequest(c, "invalid reviewType: "+raw)
			return
		}
		filter.ReviewType = &t
	}

	page, err := h.Service.GetReviews(c.Request.Context(), filter, pageable(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ReviewHandler) Like(c *gin.Context) {
	h.vote(c, h.Service.IncrementReviewLike)
}

func (h *ReviewHandler) Dislike(c *gin.Context) {
	h.vote(c, h.Service.IncrementReviewDislike)
}

func (h *ReviewHandler) vote(c *gin.Context, increment func(context.Context, uint) (*services.ReviewResponse, error)) {
	id, ok := pathID(c, "reviewId")
	if !ok {
		return
	}
	review, err := increment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}
