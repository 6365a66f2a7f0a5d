package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidPhone(t *testing.T) {
	assert.True(t, ValidPhone("13800138000"))
	assert.False(t, ValidPhone("1380013800"))
	assert.False(t, ValidPhone("138001380001"))
	assert.False(t, ValidPhone("1380013800a"))
	assert.False(t, ValidPhone("１３８００１３８０００"))
	assert.False(t, ValidPhone(""))
}

func TestValidCode(t *testing.T) {
	assert.True(t, ValidCode("000000"))
	assert.True(t, ValidCode("482913"))
	assert.False(t, ValidCode("48291"))
	assert.False(t, ValidCode("48291x"))
	assert.False(t, ValidCode(" 48291"))
}
