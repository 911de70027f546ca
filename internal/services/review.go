package services

import (
	"context"
	"strings"
	"time"

	"reviewservice/internal/logging"
	"reviewservice/internal/models"
	"reviewservice/internal/utils"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ReviewCreateInput struct {
	ReviewType    models.ReviewType
	Title         string
	Content       string // Markdown
	IPAddress     string
	Dept          string
	Role          string
	CompanyName   string
	Website       string
	IsEmployee    *bool
	WorkStartDate *time.Time
	WorkEndDate   *time.Time
	ReviewerName  string
}

// ReviewFilter 为空的字段不参与查询条件
type ReviewFilter struct {
	CompanyName string
	ReviewType  *models.ReviewType
}

var reviewSortColumns = map[string]string{
	"id":           "id",
	"createdAt":    "created_at",
	"updatedAt":    "updated_at",
	"likeCount":    "like_count",
	"dislikeCount": "dislike_count",
	"title":        "title",
	"companyName":  "company_name",
	"reviewType":   "review_type",
	"status":       "status",
}

type ReviewService struct {
	db    *gorm.DB
	cache *ListCache
}

func NewReviewService(db *gorm.DB, cache *ListCache) *ReviewService {
	return &ReviewService{db: db, cache: cache}
}

func (s *ReviewService) CreateReview(ctx context.Context, in ReviewCreateInput) (*ReviewResponse, error) {
	if !in.ReviewType.Valid() {
		return nil, badRequest("invalid review type: %s", in.ReviewType)
	}
	content := utils.RenderMarkdown(in.Content)
	if utils.IsBlank(content) {
		return nil, badRequest("review content cannot be blank")
	}

	review := models.Review{
		ReviewType:    in.ReviewType,
		Title:         strings.TrimSpace(in.Title),
		ContentHTML:   content,
		IPAddress:     in.IPAddress,
		Dept:          in.Dept,
		Role:          in.Role,
		CompanyName:   in.CompanyName,
		Website:       in.Website,
		WorkStartDate: in.WorkStartDate,
		WorkEndDate:   in.WorkEndDate,
		Status:        models.ReviewStatusPending,
		ReviewerName:  displayName(strings.TrimSpace(in.ReviewerName)),
	}
	if in.IsEmployee != nil {
		review.IsEmployee = *in.IsEmployee
	}

	if err := s.db.WithContext(ctx).Create(&review).Error; err != nil {
		logging.FromContext(ctx).WithError(err).Error("Failed to create review")
		return nil, errors.Wrap(err, "create review")
	}

	reviewsCreated.Inc()
	s.cache.purge()

	resp := toReviewResponse(&review)
	return &resp, nil
}

// GetReviewByID is a plain read; counters are never mutated through a
// loaded row, so no row lock is taken.
func (s *ReviewService) GetReviewByID(ctx context.Context, id uint) (*ReviewResponse, error) {
	review, err := findReview(s.db.WithContext(ctx), id)
	if err != nil {
		logNotFound(ctx, err, logrus.Fields{"review_id": id})
		return nil, err
	}
	resp := toReviewResponse(review)
	return &resp, nil
}

func (s *ReviewService) GetReviews(ctx context.Context, filter ReviewFilter, page Pageable) (*Page[ReviewResponse], error) {
	page = page.normalized()
	orders, err := page.orders(reviewSortColumns)
	if err != nil {
		return nil, err
	}

	key := reviewListKey(filter, page)
	if cached := s.cache.get(key); cached != nil {
		return cached, nil
	}
	gen := s.cache.generation()

	scopes := filter.scopes()
	tx := s.db.WithContext(ctx)

	var total int64
	if err := tx.Model(&models.Review{}).Scopes(scopes...).Count(&total).Error; err != nil {
		logging.FromContext(ctx).WithError(err).Error("Failed to count reviews")
		return nil, errors.Wrap(err, "count reviews")
	}

	var reviews []models.Review
	if err := tx.Scopes(scopes...).Scopes(paginate(page, orders)).Find(&reviews).Error; err != nil {
		logging.FromContext(ctx).WithError(err).Error("Failed to list reviews")
		return nil, errors.Wrap(err, "list reviews")
	}
	if err := fillCommentCounts(tx, reviews); err != nil {
		return nil, err
	}

	result := newPage(mapSlice(reviews, toReviewResponse), page, total)
	s.cache.set(key, &result, gen)
	return &result, nil
}

func (s *ReviewService) IncrementReviewLike(ctx context.Context, id uint) (*ReviewResponse, error) {
	return s.incrementCounter(ctx, id, likeVote)
}

func (s *ReviewService) IncrementReviewDislike(ctx context.Context, id uint) (*ReviewResponse, error) {
	return s.incrementCounter(ctx, id, dislikeVote)
}

// incrementCounter adds one in a single UPDATE matched on id. The affected
// row count is the only existence check; the response comes from a fresh
// read and may already include other concurrent votes.
func (s *ReviewService) incrementCounter(ctx context.Context, id uint, vote voteKind) (*ReviewResponse, error) {
	tx := s.db.WithContext(ctx)

	result := tx.Model(&models.Review{}).
		Where("id = ?", id).
		UpdateColumn(vote.column, gorm.Expr(vote.column+" + ?", 1))
	if result.Error != nil {
		logging.FromContext(ctx).WithError(result.Error).WithField("review_id", id).Error("Failed to increment review counter")
		return nil, errors.Wrapf(result.Error, "increment %s of review %d", vote.column, id)
	}
	if result.RowsAffected == 0 {
		err := notFound("review not found with id: %d to increment %s count", id, vote.label)
		logNotFound(ctx, err, logrus.Fields{"review_id": id})
		return nil, err
	}

	votesTotal.WithLabelValues("review", vote.label).Inc()
	s.cache.purge()

	review, err := findReview(tx, id)
	if err != nil {
		return nil, err
	}
	resp := toReviewResponse(review)
	return &resp, nil
}

func findReview(tx *gorm.DB, id uint) (*models.Review, error) {
	reviews := make([]models.Review, 1)
	if err := tx.First(&reviews[0], id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("review not found with id: %d", id)
		}
		return nil, errors.Wrapf(err, "load review %d", id)
	}
	if err := fillCommentCounts(tx, reviews); err != nil {
		return nil, err
	}
	return &reviews[0], nil
}

func reviewExists(tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.Model(&models.Review{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return errors.Wrapf(err, "check review %d", id)
	}
	if count == 0 {
		return notFound("review not found with id: %d", id)
	}
	return nil
}

func (f ReviewFilter) scopes() []func(*gorm.DB) *gorm.DB {
	var scopes []func(*gorm.DB) *gorm.DB
	if !utils.IsBlank(f.CompanyName) {
		scopes = append(scopes, companyNameContains(f.CompanyName))
	}
	if f.ReviewType != nil {
		scopes = append(scopes, reviewTypeIs(*f.ReviewType))
	}
	return scopes
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// companyNameContains is a case-insensitive substring match. LOWER on both
// sides keeps it portable across PostgreSQL and SQLite.
func companyNameContains(name string) func(*gorm.DB) *gorm.DB {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(name)) + "%"
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(`LOWER(company_name) LIKE ? ESCAPE '\'`, pattern)
	}
}

func reviewTypeIs(t models.ReviewType) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("review_type = ?", t)
	}
}

// logNotFound keeps expected misses at warn and everything else at error.
func logNotFound(ctx context.Context, err error, fields logrus.Fields) {
	entry := logging.FromContext(ctx).WithFields(fields)
	if errors.Is(err, ErrNotFound) {
		entry.Warn(err.Error())
		return
	}
	entry.WithError(err).Error("Store failure")
}
