package media

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
)

func TestObjectKey(t *testing.T) {
	key, err := ObjectKey("u1", "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "u1/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	other, err := ObjectKey("u1", "IMAGE/JPEG")
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
	assert.True(t, strings.HasSuffix(other, ".jpg"))

	_, err = ObjectKey("u1", "application/pdf")
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = ObjectKey("../u2", "image/png")
	assert.ErrorIs(t, err, internal.ErrValidation)
}
