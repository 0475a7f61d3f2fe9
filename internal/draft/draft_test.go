package draft

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	a := Key("/home/me/project")
	assert.Len(t, a, 64)
	assert.Equal(t, a, Key("/home/me/project/"))
	assert.Equal(t, a, Key("/home/me/./project"))
	assert.NotEqual(t, a, Key("/home/me/other"))
}

func TestSaveLoadDelete(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "drafts"))
	key := Key("/repo")

	_, ok, err := s.Load(key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(key, "/repo", "Fix the parser\n\nDetails"))
	msg, ok, err := s.Load(key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Fix the parser\n\nDetails", msg)

	require.NoError(t, s.Save(key, "/repo", "Fix the lexer"))
	msg, _, err = s.Load(key)
	require.NoError(t, err)
	assert.Equal(t, "Fix the lexer", msg)

	require.NoError(t, s.Delete(key))
	_, ok, err = s.Load(key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Delete(key), "deleting twice")
}

func TestSaveEmptyDeletes(t *testing.T) {
	s := NewStore(t.TempDir())
	key := Key("/repo")

	require.NoError(t, s.Save(key, "/repo", "wip"))
	require.NoError(t, s.Save(key, "/repo", ""))
	_, ok, err := s.Load(key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDisabledStore(t *testing.T) {
	var s *Store
	require.NoError(t, s.Save("k", "/repo", "msg"))
	_, ok, err := s.Load("k")
	require.NoError(t, err)
	assert.False(t, ok)

	empty := NewStore("")
	require.NoError(t, empty.Save("k", "/repo", "msg"))
}

func TestConcurrentSaves(t *testing.T) {
	s := NewStore(t.TempDir())
	key := Key("/repo")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Save(key, "/repo", "same message"))
		}()
	}
	wg.Wait()

	msg, ok, err := s.Load(key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "same message", msg)
}
