package handler

import (
	"errors"
	"net/http"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/raghava-0650/Attendeese/backend/internal/model"
	"github.com/raghava-0650/Attendeese/backend/internal/service"
	pkgerrors "github.com/raghava-0650/Attendeese/backend/pkg/errors"
	"github.com/raghava-0650/Attendeese/backend/pkg/response"
)

// 自定义校验标签
const (
	notBlankTag         = "notblank"
	weekdayTag          = "weekday"
	attendanceActionTag = "attendance_action"
)

var (
	registerOnce sync.Once
	registerErr  error
	translator   ut.Translator
)

// RegisterValidators 在 gin 的校验引擎上注册自定义规则与英文错误信息
// 重复调用只生效一次
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin 校验引擎不是 validator/v10")
			return
		}

		_en := en.New()
		uni := ut.New(_en, _en)
		translator, _ = uni.GetTranslator("en")
		if err := en_translations.RegisterDefaultTranslations(v, translator); err != nil {
			registerErr = err
			return
		}

		// 错误信息使用 JSON / form / uri 字段名
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form", "uri"} {
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

		for tag, fn := range map[string]validator.Func{
			notBlankTag:         notBlankValidation,
			weekdayTag:          weekdayValidation,
			attendanceActionTag: attendanceActionValidation,
		} {
			if err := v.RegisterValidation(tag, fn); err != nil {
				registerErr = err
				return
			}
			_ = v.RegisterTranslation(tag, translator, func(ut.Translator) error { return nil }, translateCustomValidationErrs)
		}
	})
	return registerErr
}

func translateCustomValidationErrs(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return fe.Field() + " cannot be blank"
	case weekdayTag:
		return fe.Field() + " must be one of " + strings.Join(model.Weekdays, ", ")
	case attendanceActionTag:
		return fe.Field() + " must be one of present, undoPresent, absent, undoAbsent"
	default:
		return fe.Error()
	}
}

// ── 自定义规则 ──

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return true
}

func weekdayValidation(fl validator.FieldLevel) bool {
	return model.IsWeekday(fl.Field().String())
}

func attendanceActionValidation(fl validator.FieldLevel) bool {
	return service.IsAttendanceAction(fl.Field().String())
}

// validationDetails 将绑定错误转为可读的字段说明
func validationDetails(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || translator == nil {
		return ""
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fe.Translate(translator))
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}

// respondBindError 参数绑定失败统一返回 400
func respondBindError(c *gin.Context, err error) {
	response.ErrorWithDetails(c, http.StatusBadRequest, 10001, pkgerrors.KindValidation, "参数校验失败", validationDetails(err))
}
