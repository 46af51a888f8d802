package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// 自定义校验标签
const (
	tagModuleType = "module_type"
	tagDripRule   = "drip_rule"
)

var (
	moduleTypes = map[string]bool{
		"video": true, "audio": true, "presentation": true, "text": true,
		"page": true, "quiz": true, "test": true, "assignment": true,
		"scorm": true, "xapi": true, "survey": true, "mixed": true,
	}
	dripRules = map[string]bool{"none": true, "delay": true}
)

// Validator 服务层结构体校验器，错误信息翻译为中文并以 json 字段名为键
type Validator struct {
	v     *validator.Validate
	trans ut.Translator
}

// New 创建校验器并注册中文翻译与自定义规则
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	zhLocale := zh.New()
	uni := ut.New(zhLocale, zhLocale)
	trans, _ := uni.GetTranslator("zh")
	_ = zh_translations.RegisterDefaultTranslations(v, trans)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(tagModuleType, func(fl validator.FieldLevel) bool {
		return moduleTypes[fl.Field().String()]
	})
	registerTranslation(v, trans, tagModuleType, "{0}不是受支持的单元类型")

	_ = v.RegisterValidation(tagDripRule, func(fl validator.FieldLevel) bool {
		return dripRules[fl.Field().String()]
	})
	registerTranslation(v, trans, tagDripRule, "{0}只能为 none 或 delay")

	return &Validator{v: v, trans: trans}
}

func registerTranslation(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(
		tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Struct 校验结构体，全部通过时返回 nil
// 返回值为 字段路径 -> 中文错误描述，嵌套字段形如 rules[0].module_id
func (v *Validator) Struct(s interface{}) map[string]string {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe.Namespace())] = fe.Translate(v.trans)
	}
	return fields
}

// fieldPath 去掉命名空间中的顶层结构体名
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
