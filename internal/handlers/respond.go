package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/ppsu-social/ppsu-social/internal/apperr"
	"github.com/ppsu-social/ppsu-social/pkg/logger"
)

// Validation errors must carry the JSON field names clients sent, not
// the Go ones.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// errorBody is the wire shape of every error response.
type errorBody struct {
	Message string              `json:"message"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

var log = logger.NewLogger()

// respondError maps a service error onto the JSON error envelope. Errors
// without a status are reported as 500 and logged with their cause.
func respondError(c *gin.Context, err error) {
	appErr := apperr.From(err)
	if appErr.Status == http.StatusInternalServerError {
		log.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
	}
	c.JSON(appErr.Status, errorBody{Message: appErr.Message, Errors: appErr.Fields})
}

// bindJSON binds the request body and, on failure, writes a validation
// envelope with per-field messages. Returns false when the request has
// already been answered.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]apperr.FieldError, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, apperr.FieldError{
					Field:   fieldName(fe),
					Message: fieldMessage(fe),
				})
			}
			c.JSON(http.StatusBadRequest, errorBody{Message: "Invalid input", Errors: fields})
			return false
		}
		c.JSON(http.StatusBadRequest, errorBody{Message: "Invalid request body"})
		return false
	}
	return true
}

// fieldName is normally the JSON tag via the registered tag name func;
// untagged fields fall back to the lowercased Go name.
func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "url":
		return "must be a valid URL"
	case "gtfield":
		return "must be after " + strings.ToLower(fe.Param()[:1]) + fe.Param()[1:]
	default:
		return "is invalid"
	}
}

// pageParams reads ?page= and ?limit= with sane bounds. Services clamp
// limit again against their configured maximum.
func pageParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "0"))
	if page < 1 {
		page = 1
	}
	if limit < 0 {
		limit = 0
	}
	return page, limit
}

// offsetParams reads ?page= and ?limit= and resolves them into an offset
// for endpoints that page by offset only.
func offsetParams(c *gin.Context, defaultLimit, maxLimit int) (offset, limit int) {
	page, limit := pageParams(c)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return (page - 1) * limit, limit
}
