package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFloat(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		valid bool
	}{
		{name: "plain number", input: "1500", want: 1500, valid: true},
		{name: "decimal", input: "12.5", want: 12.5, valid: true},
		{name: "thousands separator", input: "1,500,000", want: 1500000, valid: true},
		{name: "surrounding whitespace", input: "  42 ", want: 42, valid: true},
		{name: "empty", input: "", valid: false},
		{name: "garbage", input: "abc", valid: false},
		{name: "placeholder dash", input: "-", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseFloat(tt.input)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.Equal(t, tt.want, got.Value)
			}
		})
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
		valid bool
	}{
		{name: "plain", input: "12", want: 12, valid: true},
		{name: "whole float", input: "3.0", want: 3, valid: true},
		{name: "fractional rejected", input: "3.5", valid: false},
		{name: "empty", input: "", valid: false},
		{name: "text", input: "ten", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseInt(tt.input)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.Equal(t, tt.want, got.Value)
			}
		})
	}
}

func TestFloatMul_MissingPropagation(t *testing.T) {
	valid := FloatFrom(10)
	missing := ParseFloat("")

	assert.True(t, valid.Mul(FloatFrom(3)).Valid)
	assert.Equal(t, 30.0, valid.Mul(FloatFrom(3)).Value)

	assert.False(t, valid.Mul(missing).Valid)
	assert.False(t, missing.Mul(valid).Valid)
	assert.False(t, missing.Mul(missing).Valid)
}

func TestFloatJSON(t *testing.T) {
	data, err := json.Marshal(FloatFrom(12.5))
	require.NoError(t, err)
	assert.Equal(t, "12.5", string(data))

	data, err = json.Marshal(Float{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	var f Float
	require.NoError(t, json.Unmarshal([]byte("null"), &f))
	assert.False(t, f.Valid)
	require.NoError(t, json.Unmarshal([]byte("7.25"), &f))
	assert.True(t, f.Valid)
	assert.Equal(t, 7.25, f.Value)
}

func TestIntOrAndFloat(t *testing.T) {
	assert.Equal(t, int64(5), IntFrom(5).Or(9))
	assert.Equal(t, int64(9), Int{}.Or(9))

	f := IntFrom(4).Float()
	assert.True(t, f.Valid)
	assert.Equal(t, 4.0, f.Value)
	assert.False(t, Int{}.Float().Valid)
}
