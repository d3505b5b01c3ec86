package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"9123456789", "(912) 345-6789"},
		{"79123456789", "+7 (912) 345-67 89"},
		{"89123456789", "8 (912) 345-67 89"},
		{"+7 912 345 67 89", "+7 (912) 345-67 89"},
		{"59123456789", "59123456789"},
		{"12345", "12345"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPhone(tt.in))
		})
	}
}

func TestPhoneDigits(t *testing.T) {
	assert.Equal(t, "79991234567", PhoneDigits("+7 (999) 123-45 67"))
	assert.Equal(t, "", PhoneDigits("n/a"))
}
