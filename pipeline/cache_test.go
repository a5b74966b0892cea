package pipeline

import (
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pivolan/stay_dashboard/domain/models"
)

func TestCache_LoadsOnce(t *testing.T) {
	path := writeFile(t, "data.csv", sampleCSV)
	c := NewCache(path, Options{}, zerolog.Nop())

	first, err := c.Get()
	require.NoError(t, err)
	second, err := c.Get()
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, c.Loads())
}

func TestCache_ReloadsWhenSourceChanges(t *testing.T) {
	path := writeFile(t, "data.csv", sampleCSV)
	c := NewCache(path, Options{}, zerolog.Nop())

	first, err := c.Get()
	require.NoError(t, err)
	assert.Equal(t, 5, first.Len())

	require.NoError(t, os.WriteFile(path, []byte(sampleCSV+"Western NY,0 to 17,M,2,Newborn,100\n"), 0644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	second, err := c.Get()
	require.NoError(t, err)
	assert.Equal(t, 6, second.Len())
	assert.Equal(t, 2, c.Loads())
}

func TestCache_Refresh(t *testing.T) {
	path := writeFile(t, "data.csv", sampleCSV)
	c := NewCache(path, Options{}, zerolog.Nop())

	first, err := c.Get()
	require.NoError(t, err)
	second, err := c.Refresh()
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, 2, c.Loads())
}

func TestCache_FailedLoadIsNotCached(t *testing.T) {
	path := writeFile(t, "data.csv", "Age Group\nA\n")
	c := NewCache(path, Options{}, zerolog.Nop())

	_, err := c.Get()
	var mce *MissingColumnError
	require.ErrorAs(t, err, &mce)

	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0644))
	ds, err := c.Get()
	require.NoError(t, err)
	assert.Equal(t, 5, ds.Len())
}

func TestCache_MissingSource(t *testing.T) {
	c := NewCache("/nonexistent/data.csv", Options{}, zerolog.Nop())
	_, err := c.Get()
	assert.ErrorIs(t, err, ErrSource)
	_, err = c.Refresh()
	assert.ErrorIs(t, err, ErrSource)
}

func TestCache_Replace(t *testing.T) {
	a := writeFile(t, "a.csv", sampleCSV)
	b := writeFile(t, "b.csv", "Length of Stay,Age Group,Gender,Type of Admission\n1,A,F,Urgent\n")
	c := NewCache(a, Options{}, zerolog.Nop())

	ds, err := c.Get()
	require.NoError(t, err)
	assert.Equal(t, 5, ds.Len())

	loaded, err := Load(b, Options{})
	require.NoError(t, err)
	require.NoError(t, c.Replace(loaded))
	assert.Equal(t, b, c.Source())

	ds, err = c.Get()
	require.NoError(t, err)
	assert.Same(t, loaded, ds)
	assert.Equal(t, 1, c.Loads(), "replaced dataset is served without loading the file again")

	assert.ErrorIs(t, c.Replace(&models.Dataset{Source: b + ".gone"}), ErrSource)
	assert.Equal(t, b, c.Source())
}
