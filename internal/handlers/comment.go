package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"reviewservice/internal/services"
	"reviewservice/internal/utils"

	"github.com/gin-gonic/gin"
)

type CommentService interface {
	CreateComment(ctx context.Context, reviewID uint, parentID *uint, in services.CommentCreateInput) (*services.CommentResponse, error)
	GetCommentsByReviewID(ctx context.Context, reviewID uint, page services.Pageable) (*services.Page[services.CommentResponse], error)
	GetRepliesOfComment(ctx context.Context, reviewID, commentID uint, page services.Pageable) (*services.Page[services.CommentResponse], error)
	GetComment(ctx context.Context, reviewID, commentID uint) (*services.CommentResponse, error)
	IncrementCommentLike(ctx context.Context, reviewID, commentID uint) (*services.CommentResponse, error)
	IncrementCommentDislike(ctx context.Context, reviewID, commentID uint) (*services.CommentResponse, error)
}

type CommentCreateRequest struct {
	Content       string `json:"content" binding:"required,notblank,min=1,max=5000"`
	CommenterName string `json:"commenter_name" binding:"omitempty,max=100"`
	IPAddress     string `json:"ip_address" binding:"omitempty,max=45"`
}

type CommentHandler struct {
	Service CommentService
}

func NewCommentHandler(svc CommentService) *CommentHandler {
	return &CommentHandler{Service: svc}
}

// Create 发表评论；带 parentId 时为回复
func (h *CommentHandler) Create(c *gin.Context) {
	reviewID, ok := pathID(c, "reviewId")
	if !ok {
		return
	}

	var parentID *uint
	if raw := c.Query("parentId"); raw != "" {
		id, ok := utils.ParseID(raw)
		if !ok {
			respondBadRequest(c, "invalid parentId: "+raw)
			return
		}
		parentID = &id
	}

	var req CommentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ip := req.IPAddress
	if ip == "" {
		ip = c.ClientIP()
	}

	comment, err := h.Service.CreateComment(c.Request.Context(), reviewID, parentID, services.CommentCreateInput{
		Content:       req.Content,
		CommenterName: req.CommenterName,
		IPAddress:     ip,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Location", fmt.Sprintf("%s/%d", strings.TrimSuffix(c.Request.URL.Path, "/"), comment.ID))
	c.JSON(http.StatusCreated, comment)
}

func (h *CommentHandler) List(c *gin.Context) {
	reviewID, ok := pathID(c, "reviewId")
	if !ok {
		return
	}
	page, err := h.Service.GetCommentsByReviewID(c.Request.Context(), reviewID, pageable(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *CommentHandler) Get(c *gin.Context) {
	reviewID, commentID, ok := commentPath(c)
	if !ok {
		return
	}
	comment, err := h.Service.GetComment(c.Request.Context(), reviewID, commentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Replies(c *gin.Context) {
	reviewID, commentID, ok := commentPath(c)
	if !ok {
		return
	}
	page, err := h.Service.GetRepliesOfComment(c.Request.Context(), reviewID, commentID, pageable(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *CommentHandler) Like(c *gin.Context) {
	h.vote(c, h.Service.IncrementCommentLike)
}

func (h *CommentHandler) Dislike(c *gin.Context) {
	h.vote(c, h.Service.IncrementCommentDislike)
}

func (h *CommentHandler) vote(c *gin.Context, increment func(context.Context, uint, uint) (*services.CommentResponse, error)) {
	reviewID, commentID, ok := commentPath(c)
	if !ok {
		return
	}
	comment, err := increment(c.Request.Context(), reviewID, commentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func commentPath(c *gin.Context) (reviewID, commentID uint, ok bool) {
	if reviewID, ok = pathID(c, "reviewId"); !ok {
		return
	}
	commentID, ok = pathID(c, "commentId")
	return
}
