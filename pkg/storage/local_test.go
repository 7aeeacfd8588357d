package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveOpenDelete(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	user := uuid.New()

	key, n, err := s.Save(user, "Plan.PDF", strings.NewReader("squat 5x5"), 1024)
	require.NoError(t, err)
	assert.Equal(t, int64(9), n)
	assert.True(t, strings.HasSuffix(key, ".pdf"))

	f, err := s.Open(user, key)
	require.NoError(t, err)
	body, _ := io.ReadAll(f)
	f.Close()
	assert.Equal(t, "squat 5x5", string(body))

	// another user cannot resolve the same key
	_, err = s.Path(uuid.New(), key)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(user, key))
	_, err = s.Path(user, key)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, s.Delete(user, key))
}

func TestSaveRejectsOversize(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, _, err = s.Save(uuid.New(), "big.txt", strings.NewReader("0123456789"), 5)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestPathRejectsTraversal(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../x", "a/b", ".."} {
		_, err := s.Path(uuid.New(), key)
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}
