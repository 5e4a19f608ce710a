package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/SaeedAdam/MoviePro/internal/model"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators 注册自定义校验规则；失败时带 rating 标签的表单无法绑定
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("rating", validateRating); err != nil {
		return fmt.Errorf("register rating validator: %w", err)
	}
	return nil
}

func validateRating(fl validator.FieldLevel) bool {
	_, ok := model.ParseRating(fl.Field().String())
	return ok
}

// validationMessage 把绑定错误转成表单提示
func validationMessage(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return "The submitted form could not be read."
	}

	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required.", field))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters.", field, fe.Param()))
		case "gte", "lte":
			msgs = append(msgs, fmt.Sprintf("%s is out of range.", field))
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid URL.", field))
		case "rating":
			msgs = append(msgs, fmt.Sprintf("%s must be one of G, PG, PG13, R, NC17, NR.", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid.", field))
		}
	}
	return strings.Join(msgs, " ")
}
