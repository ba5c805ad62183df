package utils

import (
	"errors"
	"regexp"
	"strings"
)

// ValidateSortField guards user-supplied sort columns against injection
func ValidateSortField(field string) error {
	if field == "" {
		return errors.New("sort field cannot be empty")
	}

	// letters, digits, underscore, and dot for table.column
	matched, _ := regexp.MatchString(`^[a-zA-Z0-9_.]+$`, field)
	if !matched {
		return errors.New("invalid sort field format")
	}

	// reject full-word SQL keywords; substring checks would false-positive
	// on columns like created_at
	sqlKeywords := []string{
		"SELECT", "INSERT", "UPDATE", "DELETE", "DROP", "ALTER", "CREATE",
		"EXEC", "EXECUTE", "UNION", "SCRIPT", "DECLARE", "CAST", "CONVERT",
		"FROM", "WHERE", "ORDER", "BY", "GROUP", "HAVING", "JOIN",
	}

	upperField := strings.ToUpper(field)
	for _, keyword := range sqlKeywords {
		pattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(keyword) + `\b`)
		if pattern.MatchString(upperField) {
			return errors.New("sort field contains SQL keyword")
		}
	}

	return nil
}

// ValidateSortOrder accepts only asc/desc (any case)
func ValidateSortOrder(order string) error {
	switch strings.ToLower(order) {
	case "asc", "desc":
		return nil
	}
	return errors.New("sort order must be asc or desc")
}
