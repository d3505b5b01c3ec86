package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeValue(t *testing.T) {
	assert.Nil(t, NormalizeValue(nil))
	assert.Equal(t, "Ivan", NormalizeValue("  Ivan "))
	assert.Equal(t, "12A", NormalizeValue([]byte("12A ")))
	assert.Equal(t, int64(5), NormalizeValue(5))
	assert.Equal(t, int64(5), NormalizeValue(int32(5)))
	assert.Equal(t, int64(79991234567), NormalizeValue(int64(79991234567)))
}

func TestEqualValues(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"int and int64", 5, int64(5), true},
		{"numeric string and int", "5", int64(5), true},
		{"trimmed strings", " Ivan", "Ivan", true},
		{"different strings", "Ivan", "Ivan2", false},
		{"nil and nil", nil, nil, true},
		{"nil and empty", nil, "", false},
		{"non-numeric string and int", "five", int64(5), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EqualValues(tt.a, tt.b))
		})
	}
}

func TestRecordHelpers(t *testing.T) {
	r := Record{"entry_id": int64(3), "building": "12", "name_id": nil}

	id, ok := r.Int64("entry_id")
	assert.True(t, ok)
	assert.Equal(t, int64(3), id)

	_, ok = r.Int64("name_id")
	assert.False(t, ok)

	assert.Equal(t, "", r.Text("name_id"))
	assert.Equal(t, "3", r.Text("entry_id"))
	assert.Equal(t, []string{"entry_id", "name_id", "building"}, r.Keys([]string{"entry_id", "name_id", "surname_id", "building"}))

	c := r.Clone()
	c["building"] = "14"
	assert.Equal(t, "12", r["building"])
}
