package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "&lt;script&gt;alert(1)&lt;/script&gt;", SanitizeString("<script>alert(1)</script>"))
	assert.Equal(t, "plain text", SanitizeString("plain text"))
	assert.Equal(t, "line1\nline2", SanitizeString("line1\nline2"), "newlines survive")
	assert.Equal(t, "ab", SanitizeString("a\x00\x08b"), "control characters stripped")
}

func TestValidateNamaKegiatan(t *testing.T) {
	assert.NoError(t, ValidateNamaKegiatan("Rapat Koordinasi"))
	assert.ErrorIs(t, ValidateNamaKegiatan(""), ErrEmptyName)
	assert.ErrorIs(t, ValidateNamaKegiatan("   "), ErrEmptyName)
	assert.ErrorIs(t, ValidateNamaKegiatan(strings.Repeat("a", 256)), ErrNameTooLong)
	assert.NoError(t, ValidateNamaKegiatan(strings.Repeat("a", 255)))
}

func TestValidateNIP(t *testing.T) {
	assert.NoError(t, ValidateNIP("198001012005011001"))
	assert.ErrorIs(t, ValidateNIP("12345"), ErrInvalidNIP)
	assert.ErrorIs(t, ValidateNIP("19800101200501100a"), ErrInvalidNIP)
	assert.ErrorIs(t, ValidateNIP("1980010120050110012"), ErrInvalidNIP, "19 digits")
	assert.ErrorIs(t, ValidateNIP(""), ErrInvalidNIP)
}

func TestValidateSortField(t *testing.T) {
	assert.NoError(t, ValidateSortField("created_at"))
	assert.NoError(t, ValidateSortField("updated_at"))
	assert.NoError(t, ValidateSortField("kegiatan.total_biaya"))

	assert.Error(t, ValidateSortField(""))
	assert.Error(t, ValidateSortField("nama; DROP TABLE kegiatan"))
	assert.Error(t, ValidateSortField("name'--"))
	assert.Error(t, ValidateSortField("drop"))
	assert.Error(t, ValidateSortField("union.select"))
}

func TestValidateSortOrder(t *testing.T) {
	assert.NoError(t, ValidateSortOrder("asc"))
	assert.NoError(t, ValidateSortOrder("DESC"))
	assert.Error(t, ValidateSortOrder("random"))
	assert.Error(t, ValidateSortOrder(""))
}
