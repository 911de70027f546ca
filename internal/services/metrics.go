package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// votesTotal counts successful increments by target (review, comment) and kind (like, dislike)
	votesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewservice_votes_total",
		Help: "Total successful votes by target and kind",
	}, []string{"target", "kind"})

	// commentsCreated counts new comments by kind (top_level, reply)
	commentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewservice_comments_created_total",
		Help: "Total comments created by kind",
	}, []string{"kind"})

	reviewsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviewservice_reviews_created_total",
		Help: "Total reviews created",
	})

	// listCacheLookups counts review listing cache hits and misses
	listCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewservice_list_cache_lookups_total",
		Help: "Review listing cache lookups by result",
	}, []string{"result"})
)
