package router

import (
	"reviewservice/internal/handlers"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(r *gin.Engine, reviewHandler *handlers.ReviewHandler, commentHandler *handlers.CommentHandler) {
	r.GET("/ping", handlers.Ping)                    // 健康检查
	r.GET("/metrics", gin.WrapH(promhttp.Handler())) // Prometheus 指标

	reviews := r.Group("/api/v1/reviews")
	{
		reviews.POST("", reviewHandler.Create)                   // 提交评价
		reviews.GET("", reviewHandler.List)                      // 评价列表（分页、过滤）
		reviews.GET("/:reviewId", reviewHandler.Get)             // 评价详情
		reviews.PUT("/:reviewId/like", reviewHandler.Like)       // 点赞
		reviews.PUT("/:reviewId/dislike", reviewHandler.Dislike) // 踩

		// 评论 (Comments)
		reviews.POST("/:reviewId/comments", commentHandler.Create)                    // 发表评论或回复 (?parentId=)
		reviews.GET("/:reviewId/comments", commentHandler.List)                       // 顶级评论列表
		reviews.GET("/:reviewId/comments/:commentId", commentHandler.Get)             // 单条评论
		reviews.GET("/:reviewId/comments/:commentId/replies", commentHandler.Replies) // 回复列表
		reviews.PUT("/:reviewId/comments/:commentId/like", commentHandler.Like)       // 评论点赞
		reviews.PUT("/:reviewId/comments/:commentId/dislike", commentHandler.Dislike) // 评论踩
	}
}
