package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

const (
	// LocaleZhCN 简体中文
	LocaleZhCN = "zh-CN"
	// LocaleEnUS 英文
	LocaleEnUS = "en-US"
	// DefaultLocale 默认语言
	DefaultLocale = LocaleZhCN

	localeQueryKey = "lang"
)

var supported = []language.Tag{
	language.SimplifiedChinese,
	language.AmericanEnglish,
}

var matcher = language.NewMatcher(supported)

// ResolveLocale 依次读取 ?lang= 与 Accept-Language，匹配不到时回退默认语言
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if lang := strings.TrimSpace(c.Query(localeQueryKey)); lang != "" {
		return NormalizeLocale(lang)
	}
	return NormalizeLocale(c.GetHeader("Accept-Language"))
}

// NormalizeLocale 将任意语言标签映射到受支持的语言
func NormalizeLocale(raw string) string {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), "_", "-")
	if raw == "" {
		return DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLocale
	}
	if supported[index] == language.AmericanEnglish {
		return LocaleEnUS
	}
	return LocaleZhCN
}

// T 翻译消息键，缺失时依次回退默认语言与键本身
func T(locale, key string) string {
	if table, ok := messages[locale]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := messages[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 翻译带参数的消息
func Sprintf(locale, key string, args ...interface{}) string {
	format := T(locale, key)
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
