package keyboard

import (
	"strconv"

	"github.com/avrorra/storebot/internal/i18n"
)

// PaginationButtons returns up to three inline buttons (prev, current
// page, next) paginating a list under a shared action name.
func PaginationButtons(t i18n.Translator, action string, page, totalPages int) []InlineButton {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	buttons := make([]InlineButton, 0, 3)

	if page > 1 {
		buttons = append(buttons, InlineButton{
			Text:   translated(t, "pagination.prev", "«"),
			Unique: action,
			Data:   strconv.Itoa(page - 1),
		})
	}

	buttons = append(buttons, InlineButton{
		Text:   pageLabel(t, page, totalPages),
		Unique: action,
		Data:   strconv.Itoa(page),
	})

	if page < totalPages {
		buttons = append(buttons, InlineButton{
			Text:   translated(t, "pagination.next", "»"),
			Unique: action,
			Data:   strconv.Itoa(page + 1),
		})
	}

	return buttons
}

// TotalPages computes how many pages a list of n items spans at the
// given page size. Empty lists still render one page.
func TotalPages(n, perPage int) int {
	if perPage <= 0 {
		return 1
	}
	pages := (n + perPage - 1) / perPage
	if pages < 1 {
		pages = 1
	}
	return pages
}

// PageBounds returns the half-open slice bounds for one page of n items.
func PageBounds(n, page, perPage int) (int, int) {
	if perPage <= 0 || page < 1 {
		return 0, n
	}

	start := (page - 1) * perPage
	if start >= n {
		return n, n
	}

	end := start + perPage
	if end > n {
		end = n
	}
	return start, end
}

func translated(t i18n.Translator, key, fallback string) string {
	if t == nil {
		return fallback
	}

	text := t.T(key)
	if text == "" || text == key {
		return fallback
	}

	return text
}

func pageLabel(t i18n.Translator, page, total int) string {
	if t != nil {
		label := t.Tf("pagination.page", page, total)
		if label != "" && label != "pagination.page" {
			return label
		}
	}

	return strconv.Itoa(page) + "/" + strconv.Itoa(total)
}
