package http_utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

const ErrorMessage500 = "Something went wrong!"

// ValidateStruct runs v over s. ok is false when validation failed, in which case the
// returned response lists one message per failing field.
func ValidateStruct(v *validator.Validate, s interface{}) (response ValidationErrorResponse, ok bool) {
	err := v.Struct(s)
	if err == nil {
		return ValidationErrorResponse{}, true
	}

	response = ValidationErrorResponse{
		BaseResponse: NewBaseResponse(false, "invalid body, validation failed"),
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		response.Errors = lo.Map(verrs, func(item validator.FieldError, index int) string {
			return item.Error()
		})
	} else {
		response.Errors = []string{err.Error()}
	}

	return response, false
}

// BindJSON decodes the request body into dst and validates it, writing a 400 for an
// undecodable body and a 422 for a failed validation. It reports whether dst is usable.
func BindJSON(c *gin.Context, v *validator.Validate, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, NewBaseResponse(false, "invalid body"))
		return false
	}

	return validate(c, v, dst)
}

// BindQuery is BindJSON for query parameters.
func BindQuery(c *gin.Context, v *validator.Validate, dst interface{}) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		c.JSON(http.StatusBadRequest, NewBaseResponse(false, "invalid query"))
		return false
	}

	return validate(c, v, dst)
}

func validate(c *gin.Context, v *validator.Validate, dst interface{}) bool {
	if response, ok := ValidateStruct(v, dst); !ok {
		c.JSON(http.StatusUnprocessableEntity, response)
		return false
	}
	return true
}
