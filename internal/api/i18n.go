package api

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// I18nManager in-memory message catalog keyed by language
type I18nManager struct {
	messages map[string]map[string]string // lang -> key -> message
}

var defaultI18nManager *I18nManager

func init() {
	defaultI18nManager = NewI18nManager()
	defaultI18nManager.LoadMessages("en", map[string]string{
		"error.not_found":      "Resource not found",
		"error.unauthorized":   "Unauthorized",
		"error.forbidden":      "Forbidden",
		"error.bad_request":    "Bad request",
		"error.internal_error": "Internal server error",
		"error.pin_required":   "Transaction PIN required",
		"error.pin_mismatch":   "Transaction PIN does not match",
		"success.created":      "Created successfully",
		"success.updated":      "Updated successfully",
		"success.deleted":      "Deleted successfully",
		"success.cancelled":    "Cancelled successfully",
	})
	defaultI18nManager.LoadMessages("id", map[string]string{
		"error.not_found":      "Data tidak ditemukan",
		"error.unauthorized":   "Tidak terautentikasi",
		"error.forbidden":      "Akses ditolak",
		"error.bad_request":    "Permintaan tidak valid",
		"error.internal_error": "Terjadi kesalahan pada server",
		"error.pin_required":   "PIN transaksi diperlukan",
		"error.pin_mismatch":   "PIN transaksi tidak cocok",
		"success.created":      "Berhasil dibuat",
		"success.updated":      "Berhasil diperbarui",
		"success.deleted":      "Berhasil dihapus",
		"success.cancelled":    "Berhasil dibatalkan",
	})
}

// NewI18nManager creates an empty catalog
func NewI18nManager() *I18nManager {
	return &I18nManager{
		messages: make(map[string]map[string]string),
	}
}

// LoadMessages registers a language catalog
func (m *I18nManager) LoadMessages(lang string, messages map[string]string) {
	m.messages[lang] = messages
}

// Translate resolves a key for a language, falling back to English and
// finally to the key itself.
func (m *I18nManager) Translate(lang, key string) string {
	if messages, ok := m.messages[lang]; ok {
		if message, ok := messages[key]; ok {
			return message
		}
	}
	if lang != "en" {
		if messages, ok := m.messages["en"]; ok {
			if message, ok := messages[key]; ok {
				return message
			}
		}
	}
	return key
}

// I18nMiddleware resolves the request language from ?lang= or Accept-Language
func I18nMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := "id" // Indonesian default

		if queryLang := c.Query("lang"); queryLang != "" {
			lang = normalizeLanguage(queryLang)
		} else if headerLang := c.GetHeader("Accept-Language"); headerLang != "" {
			lang = parseAcceptLanguage(headerLang)
		}

		c.Set("language", lang)

		c.Next()
	}
}

// GetLanguage returns the resolved request language
func GetLanguage(c *gin.Context) string {
	if lang, exists := c.Get("language"); exists {
		if l, ok := lang.(string); ok {
			return l
		}
	}
	return "id"
}

// T translates a key using the default catalog
func T(c *gin.Context, key string) string {
	lang := GetLanguage(c)
	return defaultI18nManager.Translate(lang, key)
}

// normalizeLanguage collapses regional variants
func normalizeLanguage(lang string) string {
	lang = strings.ToLower(lang)
	langMap := map[string]string{
		"id-id": "id",
		"en-us": "en",
		"en-gb": "en",
	}
	if normalized, ok := langMap[lang]; ok {
		return normalized
	}
	if strings.HasPrefix(lang, "id") {
		return "id"
	}
	if strings.HasPrefix(lang, "en") {
		return "en"
	}
	return lang
}

// parseAcceptLanguage takes the first entry of an Accept-Language header
func parseAcceptLanguage(header string) string {
	parts := strings.Split(header, ",")
	if len(parts) > 0 {
		lang := strings.TrimSpace(parts[0])
		if idx := strings.Index(lang, ";"); idx != -1 {
			lang = lang[:idx]
		}
		return normalizeLanguage(lang)
	}
	return "id"
}
