package services

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentThreadScenario(t *testing.T) {
	_, reviews, comments := setupServices(t)
	ctx := context.Background()

	r, err := reviews.CreateReview(ctx, ReviewCreateInput{
		ReviewType: "POSITIVE", Title: "T", Content: "c", CompanyName: "Acme",
	})
	require.NoError(t, err)

	top, err := comments.CreateComment(ctx, r.ID, nil, CommentCreateInput{Content: "hi"})
	require.NoError(t, err)
	assert.Nil(t, top.ParentID)
	assert.Equal(t, r.ID, top.ReviewID)
	assert.Zero(t, top.LikeCount)
	assert.Zero(t, top.DislikeCount)
	assert.Equal(t, "ACTIVE", string(top.Status))
	assert.Equal(t, "Anonymous", top.CommenterName)

	reply, err := comments.CreateComment(ctx, r.ID, &top.ID, CommentCreateInput{Content: "reply", CommenterName: "Lee"})
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, top.ID, *reply.ParentID)
	assert.Equal(t, "Lee", reply.CommenterName)

	replies, err := comments.GetRepliesOfComment(ctx, r.ID, top.ID, Pageable{Page: 0, Size: 10})
	require.NoError(t, err)
	require.Len(t, replies.Content, 1)
	assert.Equal(t, "reply", replies.Content[0].Content)
	assert.EqualValues(t, 1, replies.TotalElements)

	got, err := comments.GetComment(ctx, r.ID, top.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalReplies)
	assert.True(t, got.HasReplies)
}

func TestCreateCommentErrors(t *testing.T) {
	_, reviews, comments := setupServices(t)
	ctx := context.Background()
	a := createTestReview(t, reviews, "A")
	b := createTestReview(t, reviews, "B")
	onB, err := comments.CreateComment(ctx, b.ID, nil, CommentCreateInput{Content: "on b"})
	require.NoError(t, err)

	_, err = comments.CreateComment(ctx, 999, nil, CommentCreateInput{Content: "x"})
	assert.True(t, errors.Is(err, ErrNotFound))

	missing := uint(999)
	_, err = comments.CreateComment(ctx, a.ID, &missing, CommentCreateInput{Content: "x"})
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = comments.CreateComment(ctx, a.ID, &onB.ID, CommentCreateInput{Content: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadRequest))
	assert.Contains(t, err.Error(), "does not belong to review")

	_, err = comments.CreateComment(ctx, a.ID, nil, CommentCreateInput{Content: "<b></b>  "})
	assert.True(t, errors.Is(err, ErrBadRequest))

	// 评论对象不存在时先报 404
	_, err = comments.CreateComment(ctx, 999, nil, CommentCreateInput{Content: "<b></b>"})
	assert.True(t, errors.Is(err, ErrNotFound))

	// 失败的请求不落库
	page, err := comments.GetCommentsByReviewID(ctx, a.ID, Pageable{})
	require.NoError(t, err)
	assert.True(t, page.Empty)
}

func TestCreateCommentStripsMarkup(t *testing.T) {
	_, reviews, comments := setupServices(t)
	r := createTestReview(t, reviews, "Acme")

	c, err := comments.CreateComment(context.Background(), r.ID, nil, CommentCreateInput{Content: "<b>bold</b> <script>x()</script>claim"})
	require.NoError(t, err)
	assert.NotContains(t, c.Content, "<")
	assert.Contains(t, c.Content, "bold")
}

func TestCreateCommentKeepsPlainText(t *testing.T) {
	_, reviews, comments := setupServices(t)
	ctx := context.Background()
	r := createTestReview(t, reviews, "Acme")
	text := `Tom & Jerry don't think 1 < 2 "really"`

	c, err := comments.CreateComment(ctx, r.ID, nil, CommentCreateInput{Content: text})
	require.NoError(t, err)
	assert.Equal(t, text, c.Content)

	got, err := comments.GetComment(ctx, r.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, text, got.Content)
}

func TestGetCommentsByReviewIDTopLevelOnly(t *testing.T) {
	_, reviews, comments := setupServices(t)
	ctx := context.Background()
	r := createTestReview(t, reviews, "Acme")
	other := createTestReview(t, reviews, "Other")

	var tops []uint
	for i := 0; i < 3; i++ {
		c, err := comments.CreateComment(ctx, r.ID, nil, CommentCreateInput{Content: "top"})
		require.NoError(t, err)
		tops = append(tops, c.ID)
	}
	for i := 0; i < 2; i++ {
		_, err := comments.CreateComment(ctx, r.ID, &tops[0], CommentCreateInput{Content: "reply"})
		require.NoError(t, err)
	}
	_, err := comments.CreateComment(ctx, other.ID, nil, CommentCreateInput{Content: "elsewhere"})
	require.NoError(t, err)

	page, err := comments.GetCommentsByReviewID(ctx, r.ID, Pageable{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.TotalElements)
	require.Len(t, page.Content, 3)
	for _, c := range page.Content {
		assert.Nil(t, c.ParentID)
		assert.Equal(t, r.ID, c.ReviewID)
	}
	// newest first
	assert.Equal(t, tops[2], page.Content[0].ID)
	assert.Equal(t, tops[0], page.Content[2].ID)
	assert.Equal(t, 2, page.Content[2].TotalReplies)
	assert.True(t, page.Content[2].HasReplies)
	assert.False(t, page.Content[0].HasReplies)

	page, err = comments.GetCommentsByReviewID(ctx, r.ID, Pageable{Page: 1, Size: 2, Sort: []string{"createdAt,asc"}})
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, tops[2], page.Content[0].ID)

	_, err = comments.GetCommentsByReviewID(ctx, 999, Pageable{})
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = comments.GetCommentsByReviewID(ctx, r.ID, Pageable{Sort: []string{"companyName"}})
	assert.True(t, errors.Is(err, ErrBadRequest))
}

func TestGetRepliesOfCommentChecksOwnership(t *testing.T) {
	_, reviews, comments := setupServices(t)
	ctx := context.Background()
	a := createTestReview(t, reviews, "A")
	b := createTestReview(t, reviews, "B")
	onA, err := comments.CreateComment(ctx, a.ID, nil, CommentCreateInput{Content: "on a"})
	require.NoError(t, err)

	_, err = comments.GetRepliesOfComment(ctx, 999, onA.ID, Pageable{})
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = comments.GetRepliesOfComment(ctx, a.ID, 999, Pageable{})
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = comments.GetRepliesOfComment(ctx, b.ID, onA.ID, Pageable{})
	assert.True(t, errors.Is(err, ErrNotFound))

	page, err := comments.GetRepliesOfComment(ctx, a.ID, onA.ID, Pageable{})
	require.NoError(t, err)
	assert.True(t, page.Empty)
}

func TestGetCommentNotFound(t *testing.T) {
	_, reviews, comments := setupServices(t)
	ctx := context.Background()
	a := createTestReview(t, reviews, "A")
	b := createTestReview(t, reviews, "B")
	c, err := comments.CreateComment(ctx, a.ID, nil, CommentCreateInput{Content: "x"})
	require.NoError(t, err)

	_, err = comments.GetComment(ctx, b.ID, c.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestIncrementCommentCounters(t *testing.T) {
	_, reviews, comments := setupServices(t)
	ctx := context.Background()
	r := createTestReview(t, reviews, "Acme")
	c, err := comments.CreateComment(ctx, r.ID, nil, CommentCreateInput{Content: "x"})
	require.NoError(t, err)

	got, err := comments.IncrementCommentLike(ctx, r.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikeCount)

	got, err = comments.IncrementCommentDislike(ctx, r.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikeCount)
	assert.Equal(t, 1, got.DislikeCount)
}

func TestIncrementCommentLikeWrongReview(t *testing.T) {
	gdb, reviews, comments := setupServices(t)
	ctx := context.Background()
	a := createTestReview(t, reviews, "A")
	b := createTestReview(t, reviews, "B")
	c, err := comments.CreateComment(ctx, a.ID, nil, CommentCreateInput{Content: "x"})
	require.NoError(t, err)

	_, err = comments.IncrementCommentLike(ctx, b.ID, c.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = comments.IncrementCommentDislike(ctx, b.ID, c.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = comments.IncrementCommentLike(ctx, a.ID, 999)
	assert.True(t, errors.Is(err, ErrNotFound))

	var likes int
	require.NoError(t, gdb.Table("comments").Select("like_count").Where("id = ?", c.ID).Scan(&likes).Error)
	assert.Zero(t, likes)
}

// Statements are serialized by the single test connection; see
// TestConcurrentReviewLikesAreNotLost.
func TestConcurrentCommentVotesAreNotLost(t *testing.T) {
	_, reviews, comments := setupServices(t)
	ctx := context.Background()
	r := createTestReview(t, reviews, "Acme")
	c, err := comments.CreateComment(ctx, r.ID, nil, CommentCreateInput{Content: "x"})
	require.NoError(t, err)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = comments.IncrementCommentLike(ctx, r.ID, c.ID)
		}()
		go func() {
			defer wg.Done()
			_, _ = comments.IncrementCommentDislike(ctx, r.ID, c.ID)
		}()
	}
	wg.Wait()

	got, err := comments.GetComment(ctx, r.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, n, got.LikeCount)
	assert.Equal(t, n, got.DislikeCount)
}
