package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateEmployeeID_Format(t *testing.T) {
	id, err := generateEmployeeID()
	require.NoError(t, err)
	assert.Regexp(t, `^EMP-\d+-\d{3}$`, id)
}
