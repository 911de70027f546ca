package handlers

import (
	"net/http"
	"strings"
	"time"

	"reviewservice/internal/logging"
	"reviewservice/internal/services"
	"reviewservice/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// errorBody is the JSON shape of every non-2xx answer.
type errorBody struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message,omitempty"`
	Messages  []string  `json:"messages,omitempty"`
	Path      string    `json:"path"`
}

func abortWith(c *gin.Context, code int, body errorBody) {
	body.Timestamp = time.Now()
	body.Status = code
	body.Path = c.Request.URL.Path
	c.AbortWithStatusJSON(code, body)
}

// respondError maps a service error to its HTTP status.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		abortWith(c, http.StatusNotFound, errorBody{Error: "Not Found", Message: err.Error()})
	case errors.Is(err, services.ErrBadRequest):
		abortWith(c, http.StatusBadRequest, errorBody{Error: "Bad Request", Message: err.Error()})
	default:
		// 内部错误不向客户端暴露细节
		logging.FromContext(c.Request.Context()).WithError(err).Error("Unexpected error")
		abortWith(c, http.StatusInternalServerError, errorBody{
			Error:   "Internal Server Error",
			Message: "An unexpected error occurred. Please try again later.",
		})
	}
}

func respondBadRequest(c *gin.Context, message string) {
	abortWith(c, http.StatusBadRequest, errorBody{Error: "Bad Request", Message: message})
}

// respondBindError separates field validation failures from bodies that
// could not be decoded at all.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		messages := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			messages = append(messages, fe.Field()+": "+fieldMessage(fe))
		}
		logging.FromContext(c.Request.Context()).WithField("messages", messages).Warn("Validation error")
		abortWith(c, http.StatusBadRequest, errorBody{Error: "Validation Error", Messages: messages})
		return
	}

	logging.FromContext(c.Request.Context()).WithError(err).Warn("Malformed JSON request")
	abortWith(c, http.StatusBadRequest, errorBody{
		Error:   "Malformed JSON",
		Message: "The request body is not valid JSON or cannot be processed.",
	})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be null"
	case "notblank":
		return "must not be blank"
	case "min":
		return "must be at least " + fe.Param() + " characters long"
	case "max":
		return "must not exceed " + fe.Param() + " characters"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "pastorpresent":
		return "must be in the past or present"
	case "url":
		return "must be a valid URL"
	case "ip":
		return "must be a valid IP address"
	}
	return "is invalid (" + fe.Tag() + ")"
}

// pathID reads a positive integer path parameter. On failure the response
// has already been written.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, ok := utils.ParseID(c.Param(name))
	if !ok {
		respondBadRequest(c, "invalid "+name+": "+c.Param(name))
	}
	return id, ok
}

// pageable reads page, size and the repeated sort parameter.
func pageable(c *gin.Context) services.Pageable {
	return services.Pageable{
		Page: utils.StringToInt(c.Query("page"), 0),
		Size: utils.StringToInt(c.Query("size"), services.DefaultPageSize),
		Sort: c.QueryArray("sort"),
	}
}

// Ping 健康检查
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
