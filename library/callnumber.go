package library

import (
	"fmt"
	"strings"

	"netsoc/constants"
	"netsoc/database"
)

// callNumberBase builds the shelf locator stem: the first seven characters of
// the classification code, a space, and the first author's surname truncated
// and upper-cased.
func callNumberBase(ddc, authorName string) string {
	prefix := ddc
	if len(prefix) > 7 {
		prefix = prefix[:7]
	}

	surname := ""
	if fields := strings.Fields(authorName); len(fields) > 0 {
		surname = fields[len(fields)-1]
	}
	if runes := []rune(surname); len(runes) > constants.CALL_NUMBER_SURNAME_LEN {
		surname = string(runes[:constants.CALL_NUMBER_SURNAME_LEN])
	}

	return prefix + " " + strings.ToUpper(surname)
}

// nextCallNumber appends " (N)" with the lowest N that makes the call number
// unique in the catalog. The bare stem is tried first.
func (s *Service) nextCallNumber(ddc, authorName string) (string, error) {
	base := callNumberBase(ddc, authorName)

	cn := base
	for i := 1; ; i++ {
		var count int64
		err := s.db.Model(&database.Book{}).Where("callnumber = ?", cn).Count(&count).Error
		if err != nil {
			return "", err
		}
		if count == 0 {
			return cn, nil
		}
		cn = fmt.Sprintf("%s (%d)", base, i)
	}
}
