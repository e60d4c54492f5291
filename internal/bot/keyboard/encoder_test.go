package keyboard_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avrorra/storebot/internal/bot/keyboard"
)

func TestEncodeCallback(t *testing.T) {
	tests := []struct {
		name      string
		unique    string
		data      string
		want      string
		wantError bool
	}{
		{
			name:   "with data",
			unique: keyboard.ActionAddToCart,
			data:   "42",
			want:   "add:42",
		},
		{
			name:   "without data",
			unique: keyboard.ActionCheckout,
			data:   "",
			want:   "checkout",
		},
		{
			name:      "exceeds limit",
			unique:    strings.Repeat("x", keyboard.CallbackDataLimitBytes+1),
			data:      "",
			wantError: true,
		},
		{
			name:      "payload pushes over limit",
			unique:    keyboard.ActionCategory,
			data:      strings.Repeat("y", keyboard.CallbackDataLimitBytes),
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := keyboard.EncodeCallback(tt.unique, tt.data)
			if tt.wantError {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeCallback(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantUnique string
		wantData   string
		wantErr    bool
	}{
		{
			name:       "unique and data",
			input:      "cart_item:3",
			wantUnique: "cart_item",
			wantData:   "3",
		},
		{
			name:       "only unique",
			input:      "checkout",
			wantUnique: "checkout",
			wantData:   "",
		},
		{
			name:       "separator inside payload",
			input:      "category:cakes:special",
			wantUnique: "category",
			wantData:   "cakes:special",
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unique, data, err := keyboard.DecodeCallback(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantUnique, unique)
			assert.Equal(t, tt.wantData, data)
		})
	}
}

func TestParseItemData(t *testing.T) {
	id, err := keyboard.ParseItemData("128")
	require.NoError(t, err)
	assert.Equal(t, int64(128), id)

	_, err = keyboard.ParseItemData("not-a-number")
	assert.Error(t, err)
}

func TestParsePageData(t *testing.T) {
	assert.Equal(t, 3, keyboard.ParsePageData("3"))
	assert.Equal(t, 1, keyboard.ParsePageData(""))
	assert.Equal(t, 1, keyboard.ParsePageData("0"))
	assert.Equal(t, 1, keyboard.ParsePageData("junk"))
}
