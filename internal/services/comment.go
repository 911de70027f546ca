package services

import (
	"context"
	"strings"

	"reviewservice/internal/logging"
	"reviewservice/internal/models"
	"reviewservice/internal/utils"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type CommentCreateInput struct {
	Content       string
	CommenterName string
	IPAddress     string
}

var commentSortColumns = map[string]string{
	"id":           "id",
	"createdAt":    "created_at",
	"updatedAt":    "updated_at",
	"likeCount":    "like_count",
	"dislikeCount": "dislike_count",
	"status":       "status",
}

type voteKind struct {
	column string
	label  string
}

var (
	likeVote    = voteKind{column: "like_count", label: "like"}
	dislikeVote = voteKind{column: "dislike_count", label: "dislike"}
)

type CommentService struct {
	db    *gorm.DB
	cache *ListCache
}

func NewCommentService(db *gorm.DB, cache *ListCache) *CommentService {
	return &CommentService{db: db, cache: cache}
}

// CreateComment adds a top-level comment, or a reply when parentID is set.
// The review is resolved first, then the content and the parent are
// checked. The parent must belong to the same review. All checks and the
// insert share one transaction.
func (s *CommentService) CreateComment(ctx context.Context, reviewID uint, parentID *uint, in CommentCreateInput) (*CommentResponse, error) {
	log := logging.FromContext(ctx).WithField("review_id", reviewID)

	comment := models.Comment{
		ReviewID:      reviewID,
		Content:       utils.SanitizeText(in.Content),
		CommenterName: displayName(strings.TrimSpace(in.CommenterName)),
		IPAddress:     in.IPAddress,
		Status:        models.CommentStatusActive,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := reviewExists(tx, reviewID); err != nil {
			return err
		}
		if utils.IsBlank(comment.Content) {
			return badRequest("comment content cannot be blank")
		}

		if parentID != nil {
			var parent models.Comment
			if err := tx.Select("id", "review_id", "parent_id").First(&parent, *parentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return notFound("parent comment not found with id: %d", *parentID)
				}
				return errors.Wrapf(err, "load parent comment %d", *parentID)
			}
			if parent.ReviewID != reviewID {
				return badRequest("parent comment with id %d does not belong to review with id %d", *parentID, reviewID)
			}
			pid := *parentID
			comment.ParentID = &pid
		}

		if err := tx.Create(&comment).Error; err != nil {
			return errors.Wrap(err, "create comment")
		}
		return nil
	})
	if err != nil {
		logNotFound(ctx, err, logrus.Fields{"review_id": reviewID, "parent_id": parentID})
		return nil, err
	}

	kind := "top_level"
	if comment.IsReply() {
		kind = "reply"
	}
	commentsCreated.WithLabelValues(kind).Inc()
	s.cache.purge()

	log.WithFields(logrus.Fields{"comment_id": comment.ID, "kind": kind}).Info("Comment created")

	resp := toCommentResponse(&comment)
	return &resp, nil
}

// GetCommentsByReviewID lists top-level comments of a review.
func (s *CommentService) GetCommentsByReviewID(ctx context.Context, reviewID uint, page Pageable) (*Page[CommentResponse], error) {
	page = page.normalized()
	orders, err := page.orders(commentSortColumns)
	if err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx)
	if err := reviewExists(tx, reviewID); err != nil {
		logNotFound(ctx, err, logrus.Fields{"review_id": reviewID})
		return nil, err
	}

	topLevel := func(db *gorm.DB) *gorm.DB {
		return db.Where("review_id = ? AND parent_id IS NULL", reviewID)
	}
	return s.listComments(ctx, tx, topLevel, page, orders)
}

// GetRepliesOfComment lists direct replies. The comment has to belong to the
// given review, otherwise it is reported as not found.
func (s *CommentService) GetRepliesOfComment(ctx context.Context, reviewID, commentID uint, page Pageable) (*Page[CommentResponse], error) {
	page = page.normalized()
	orders, err := page.orders(commentSortColumns)
	if err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx)
	if err := reviewExists(tx, reviewID); err != nil {
		logNotFound(ctx, err, logrus.Fields{"review_id": reviewID})
		return nil, err
	}
	if _, err := findComment(tx, reviewID, commentID); err != nil {
		logNotFound(ctx, err, logrus.Fields{"review_id": reviewID, "comment_id": commentID})
		return nil, err
	}

	repliesOf := func(db *gorm.DB) *gorm.DB {
		return db.Where("parent_id = ?", commentID)
	}
	return s.listComments(ctx, tx, repliesOf, page, orders)
}

func (s *CommentService) GetComment(ctx context.Context, reviewID, commentID uint) (*CommentResponse, error) {
	comment, err := findComment(s.db.WithContext(ctx), reviewID, commentID)
	if err != nil {
		logNotFound(ctx, err, logrus.Fields{"review_id": reviewID, "comment_id": commentID})
		return nil, err
	}
	resp := toCommentResponse(comment)
	return &resp, nil
}

func (s *CommentService) IncrementCommentLike(ctx context.Context, reviewID, commentID uint) (*CommentResponse, error) {
	return s.incrementCounter(ctx, reviewID, commentID, likeVote)
}

func (s *CommentService) IncrementCommentDislike(ctx context.Context, reviewID, commentID uint) (*CommentResponse, error) {
	return s.incrementCounter(ctx, reviewID, commentID, dislikeVote)
}

// incrementCounter matches on both ids, so a comment addressed through the
// wrong review updates nothing and reads as not found.
func (s *CommentService) incrementCounter(ctx context.Context, reviewID, commentID uint, vote voteKind) (*CommentResponse, error) {
	tx := s.db.WithContext(ctx)
	fields := logrus.Fields{"review_id": reviewID, "comment_id": commentID}

	result := tx.Model(&models.Comment{}).
		Where("id = ? AND review_id = ?", commentID, reviewID).
		UpdateColumn(vote.column, gorm.Expr(vote.column+" + ?", 1))
	if result.Error != nil {
		logging.FromContext(ctx).WithError(result.Error).WithFields(fields).Error("Failed to increment comment counter")
		return nil, errors.Wrapf(result.Error, "increment %s of comment %d", vote.column, commentID)
	}
	if result.RowsAffected == 0 {
		err := notFound("comment not found with id: %d for review with id: %d to increment %s count", commentID, reviewID, vote.label)
		logNotFound(ctx, err, fields)
		return nil, err
	}

	votesTotal.WithLabelValues("comment", vote.label).Inc()

	comment, err := findComment(tx, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	resp := toCommentResponse(comment)
	return &resp, nil
}

func (s *CommentService) listComments(ctx context.Context, tx *gorm.DB, where func(*gorm.DB) *gorm.DB, page Pageable, orders []sortOrder) (*Page[CommentResponse], error) {
	var total int64
	if err := tx.Model(&models.Comment{}).Scopes(where).Count(&total).Error; err != nil {
		logging.FromContext(ctx).WithError(err).Error("Failed to count comments")
		return nil, errors.Wrap(err, "count comments")
	}

	var comments []models.Comment
	if err := tx.Scopes(where, paginate(page, orders)).Find(&comments).Error; err != nil {
		logging.FromContext(ctx).WithError(err).Error("Failed to list comments")
		return nil, errors.Wrap(err, "list comments")
	}
	if err := fillReplyCounts(tx, comments); err != nil {
		return nil, err
	}

	result := newPage(mapSlice(comments, toCommentResponse), page, total)
	return &result, nil
}

func findComment(tx *gorm.DB, reviewID, commentID uint) (*models.Comment, error) {
	comments := make([]models.Comment, 1)
	err := tx.Where("review_id = ?", reviewID).First(&comments[0], commentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("comment not found with id: %d for review with id: %d", commentID, reviewID)
		}
		return nil, errors.Wrapf(err, "load comment %d", commentID)
	}
	if err := fillReplyCounts(tx, comments); err != nil {
		return nil, err
	}
	return &comments[0], nil
}
