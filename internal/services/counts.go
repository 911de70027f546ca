package services

import (
	"reviewservice/internal/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type countResult struct {
	OwnerID uint
	Count   int
}

// fillCommentCounts 批量填充评论总数 (one grouped COUNT for the whole page).
func fillCommentCounts(tx *gorm.DB, reviews []models.Review) error {
	if len(reviews) == 0 {
		return nil
	}

	ids := make([]uint, len(reviews))
	for i, r := range reviews {
		ids[i] = r.ID
	}

	var results []countResult
	if err := tx.Model(&models.Comment{}).
		Select("review_id AS owner_id, COUNT(*) AS count").
		Where("review_id IN ?", ids).
		Group("review_id").
		Scan(&results).Error; err != nil {
		return errors.Wrap(err, "count comments by review")
	}

	countMap := make(map[uint]int, len(results))
	for _, r := range results {
		countMap[r.OwnerID] = r.Count
	}
	for i := range reviews {
		reviews[i].TotalComments = countMap[reviews[i].ID]
	}
	return nil
}

// fillReplyCounts 批量填充回复数量
func fillReplyCounts(tx *gorm.DB, comments []models.Comment) error {
	if len(comments) == 0 {
		return nil
	}

	ids := make([]uint, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}

	var results []countResult
	if err := tx.Model(&models.Comment{}).
		Select("parent_id AS owner_id, COUNT(*) AS count").
		Where("parent_id IN ?", ids).
		Group("parent_id").
		Scan(&results).Error; err != nil {
		return errors.Wrap(err, "count replies by parent")
	}

	countMap := make(map[uint]int, len(results))
	for _, r := range results {
		countMap[r.OwnerID] = r.Count
	}
	for i := range comments {
		comments[i].TotalReplies = countMap[comments[i].ID]
	}
	return nil
}
