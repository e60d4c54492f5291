package keyboard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	CallbackDataSeparator  = ":"
	CallbackDataLimitBytes = 64
)

// Callback action names shared between keyboard builders and the router.
// Keeping them in one place guarantees the encoded payloads and the
// registered callback prefixes never drift apart.
const (
	ActionCategory      = "category"
	ActionBackToCatalog = "catalog"
	ActionProduct       = "product"
	ActionAddToCart     = "add"
	ActionCardInc       = "card_inc"
	ActionCardDec       = "card_dec"
	ActionNoop          = "noop"
	ActionCheckout      = "checkout"
	ActionContinue      = "continue"
	ActionCartEdit      = "cart_edit"
	ActionCartItem      = "cart_item"
	ActionCartInc       = "cart_inc"
	ActionCartDec       = "cart_dec"
	ActionCartDelete    = "cart_del"
	ActionCartSave      = "cart_save"
	ActionCartClear     = "cart_clear"

	ActionAdminMenu       = "adm"
	ActionAdminCategories = "adm_cats"
	ActionAdminCategory   = "adm_cat"
	ActionAdminCatAdd     = "adm_cat_add"
	ActionAdminCatRename  = "adm_cat_ren"
	ActionAdminCatDelete  = "adm_cat_del"
	ActionAdminProducts   = "adm_prods"
	ActionAdminProduct    = "adm_prod"
	ActionAdminProdAdd    = "adm_prod_add"
	ActionAdminProdCat    = "adm_prod_cat"
	ActionAdminProdEdit   = "adm_prod_edit"
	ActionAdminProdDelete = "adm_prod_del"
	ActionAdminSkipPhoto  = "adm_skip_photo"
	ActionAdminCancel     = "adm_cancel"
)

// EncodeCallback joins an action name with its payload, enforcing the
// Telegram callback data size limit.
func EncodeCallback(unique, data string) (string, error) {
	payload := unique
	if data != "" {
		payload = unique + CallbackDataSeparator + data
	}

	if len(payload) > CallbackDataLimitBytes {
		return "", fmt.Errorf("callback data exceeds %d byte limit: got %d", CallbackDataLimitBytes, len(payload))
	}

	return payload, nil
}

// DecodeCallback splits callback data back into action name and payload.
func DecodeCallback(callbackData string) (unique, data string, err error) {
	if callbackData == "" {
		return "", "", errors.New("callback data is empty")
	}

	idx := strings.Index(callbackData, CallbackDataSeparator)
	if idx == -1 {
		return callbackData, "", nil
	}

	return callbackData[:idx], callbackData[idx+len(CallbackDataSeparator):], nil
}

// ItemData encodes a numeric entity ID as callback payload.
func ItemData(id int64) string {
	return strconv.FormatInt(id, 10)
}

// ParseItemData recovers the entity ID from a callback payload.
func ParseItemData(data string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("callback payload is not an ID: %w", err)
	}
	return id, nil
}

// ParsePageData recovers a 1-based page number, defaulting to the first
// page when the payload is empty or malformed.
func ParsePageData(data string) int {
	page, err := strconv.Atoi(strings.TrimSpace(data))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
