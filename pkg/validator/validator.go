package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register 在 gin 的默认校验器上注册自定义规则
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return RegisterOn(v)
}

// RegisterOn 注册到指定校验器
func RegisterOn(v *validator.Validate) error {
	return v.RegisterValidation("notblank", notBlank)
}

// IsBlank 空串或只有空白字符
func IsBlank(s string) bool { return strings.TrimSpace(s) == "" }

// notBlank 字符串不能只有空白；指针为 nil 时视为空
func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.String:
		return !IsBlank(field.String())
	case reflect.Ptr:
		if field.IsNil() {
			return false
		}
		if field.Elem().Kind() == reflect.String {
			return !IsBlank(field.Elem().String())
		}
	}
	return true
}
