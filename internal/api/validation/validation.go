package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/model"
)

// 自定义校验标签
const (
	gradeLevelTag = "grade_level"
	notBlankTag   = "notblank"
)

var (
	once       sync.Once
	registerErr  error
	translator ut.Translator
)

// Register 在 gin 的绑定引擎上注册自定义校验规则与英文错误翻译，可重复调用
func Register() error {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin 绑定引擎不是 validator/v10")
			return
		}

		_en := en.New()
		uni := ut.New(_en, _en)
		translator, _ = uni.GetTranslator("en")
		if err := en_translations.RegisterDefaultTranslations(v, translator); err != nil {
			registerErr = fmt.Errorf("注册校验翻译失败: %w", err)
			return
		}

		// 错误信息使用 JSON / form 字段名
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})

		if err := v.RegisterValidation(gradeLevelTag, gradeLevelValidation); err != nil {
			registerErr = err
			return
		}
		if err := v.RegisterValidation(notBlankTag, notBlankValidation); err != nil {
			registerErr = err
			return
		}
		registerCustomTranslations(v, gradeLevelTag, notBlankTag)
	})
	return registerErr
}

func registerCustomTranslations(v *validator.Validate, tags ...string) {
	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range tags {
		_ = v.RegisterTranslation(tag, translator, registerFn, translateCustom)
	}
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case gradeLevelTag:
		return fe.Field() + " must be one of K1, K2, K3"
	case notBlankTag:
		return fe.Field() + " cannot be blank"
	default:
		return fe.Error()
	}
}

// Translate 将校验错误翻译为可读信息；非校验错误返回 false
func Translate(err error) (string, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "", false
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if translator != nil {
			msgs = append(msgs, fe.Translate(translator))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; "), true
}

// ── Custom Validators ──

func gradeLevelValidation(fl validator.FieldLevel) bool {
	level, ok := fl.Field().Interface().(string)
	return ok && model.IsValidLevel(level)
}

func notBlankValidation(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	return ok && strings.TrimSpace(s) != ""
}
