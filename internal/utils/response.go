package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sanjeevni-health/sanjeevni/internal/logger"
	"gorm.io/gorm"
)

// FieldErrors maps a JSON field name to the rule it failed.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for field, msg := range f {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

func RespondError(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"error": message})
}

func RespondFieldErrors(ctx *gin.Context, fields FieldErrors) {
	ctx.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": fields})
}

func RespondNotFound(ctx *gin.Context, entity string) {
	ctx.JSON(http.StatusNotFound, gin.H{"error": entity + " not found"})
}

// RespondInternal logs err with the request context and answers with a
// generic 500.
func RespondInternal(ctx *gin.Context, err error, msg string, keysAndValues ...interface{}) {
	fields := append([]interface{}{
		"request_id", GetRequestID(ctx),
		"path", ctx.FullPath(),
		"error", err,
	}, keysAndValues...)

	if userID, uerr := GetCurrentUserID(ctx); uerr == nil {
		fields = append(fields, "user_id", userID)
	}

	logger.L().Errorw(msg, fields...)
	_ = ctx.Error(err)
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// RespondLookupError turns the error of an owned-row lookup into a 404 or a
// logged 500.
func RespondLookupError(ctx *gin.Context, err error, entity string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		RespondNotFound(ctx, entity)
		return
	}
	RespondInternal(ctx, err, "Failed to retrieve "+strings.ToLower(entity))
}

// RespondBindError reports a binding failure with field level detail when
// the validator produced it.
func RespondBindError(ctx *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := FieldErrors{}
		for _, fe := range verrs {
			fields[fieldName(fe)] = ruleMessage(fe)
		}
		RespondFieldErrors(ctx, fields)
		return
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		RespondFieldErrors(ctx, FieldErrors{typeErr.Field: "Invalid type, expected " + typeErr.Type.String() + "."})
	case errors.As(err, &syntaxErr):
		RespondError(ctx, http.StatusBadRequest, "Malformed JSON body")
	default:
		RespondError(ctx, http.StatusBadRequest, "Invalid request")
	}
}

func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value has at least %s items.", fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value has at most %s items.", fe.Param())
	case "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "lte":
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "gt":
		return fmt.Sprintf("Ensure this value is greater than %s.", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "eqfield":
		return fmt.Sprintf("Must match %s.", fe.Param())
	case "datetime":
		return fmt.Sprintf("Invalid format, expected %s.", fe.Param())
	case "hhmm":
		return "Invalid time, expected HH:MM."
	case "alphanumunicode", "username":
		return "Enter a valid username."
	default:
		return "Invalid value."
	}
}
