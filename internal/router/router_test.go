package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"reviewservice/internal/db/dbtest"
	"reviewservice/internal/handlers"
	"reviewservice/internal/middleware"
	"reviewservice/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var registerOnce sync.Once

func setupEngine(t *testing.T) *gin.Engine {
	t.Helper()
	registerOnce.Do(func() {
		require.NoError(t, handlers.RegisterValidators())
	})

	gdb := dbtest.Open(t)
	logger, _ := test.NewNullLogger()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(logger), gin.Recovery())
	RegisterRoutes(r,
		handlers.NewReviewHandler(services.NewReviewService(gdb, nil)),
		handlers.NewCommentHandler(services.NewCommentService(gdb, nil)),
	)
	return r
}

func call(t *testing.T, r *gin.Engine, method, path string, body interface{}, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec
}

func TestReviewCommentFlow(t *testing.T) {
	r := setupEngine(t)

	var review services.ReviewResponse
	rec := call(t, r, http.MethodPost, "/api/v1/reviews", map[string]string{
		"review_type":  "POSITIVE",
		"title":        "Solid employer",
		"content":      "Good benefits and reasonable hours.",
		"company_name": "Acme Corp",
	}, &review)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "PENDING", string(review.Status))
	assert.Equal(t, "Anonymous", review.ReviewerName)

	call(t, r, http.MethodPost, "/api/v1/reviews", map[string]string{
		"review_type":  "NEGATIVE",
		"title":        "Avoid",
		"content":      "Endless reorganisations every quarter.",
		"company_name": "Other Inc",
	}, nil)

	base := fmt.Sprintf("/api/v1/reviews/%d", review.ID)

	var top services.CommentResponse
	rec = call(t, r, http.MethodPost, base+"/comments", map[string]string{"content": "hi"}, &top)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Nil(t, top.ParentID)
	assert.Equal(t, review.ID, top.ReviewID)
	assert.Equal(t, fmt.Sprintf("%s/comments/%d", base, top.ID), rec.Header().Get("Location"))

	var reply services.CommentResponse
	rec = call(t, r, http.MethodPost, fmt.Sprintf("%s/comments?parentId=%d", base, top.ID), map[string]string{"content": "reply"}, &reply)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, top.ID, *reply.ParentID)

	var replies services.Page[services.CommentResponse]
	rec = call(t, r, http.MethodGet, fmt.Sprintf("%s/comments/%d/replies?page=0&size=10", base, top.ID), nil, &replies)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, replies.Content, 1)
	assert.Equal(t, "reply", replies.Content[0].Content)

	var topLevel services.Page[services.CommentResponse]
	call(t, r, http.MethodGet, base+"/comments", nil, &topLevel)
	require.Len(t, topLevel.Content, 1)
	assert.True(t, topLevel.Content[0].HasReplies)

	var liked services.ReviewResponse
	rec = call(t, r, http.MethodPut, base+"/like", nil, &liked)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, liked.LikeCount)
	assert.Equal(t, 2, liked.TotalComments)

	var listed services.Page[services.ReviewResponse]
	call(t, r, http.MethodGet, "/api/v1/reviews?companyName=acme&page=0&size=10", nil, &listed)
	require.Len(t, listed.Content, 1)
	assert.Equal(t, review.ID, listed.Content[0].ID)
	assert.EqualValues(t, 1, listed.TotalElements)
}

func TestNotFoundAndMismatch(t *testing.T) {
	r := setupEngine(t)

	rec := call(t, r, http.MethodPut, "/api/v1/reviews/999/like", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var a, b services.ReviewResponse
	for _, out := range []*services.ReviewResponse{&a, &b} {
		rec = call(t, r, http.MethodPost, "/api/v1/reviews", map[string]string{
			"review_type": "MIXED",
			"title":       "Mixed bag",
			"content":     "Some good, some bad, mostly fine.",
		}, out)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	var onA services.CommentResponse
	call(t, r, http.MethodPost, fmt.Sprintf("/api/v1/reviews/%d/comments", a.ID), map[string]string{"content": "on a"}, &onA)

	rec = call(t, r, http.MethodPut, fmt.Sprintf("/api/v1/reviews/%d/comments/%d/like", b.ID, onA.ID), nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(t, r, http.MethodPost, fmt.Sprintf("/api/v1/reviews/%d/comments?parentId=%d", b.ID, onA.ID), map[string]string{"content": "x"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, r, http.MethodGet, "/api/v1/reviews?sort=secret,asc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPingAndMetrics(t *testing.T) {
	r := setupEngine(t)

	rec := call(t, r, http.MethodGet, "/ping", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	rec = call(t, r, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
