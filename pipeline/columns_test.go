package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {
	assert.Equal(t, "length_of_stay", Slug("Length of Stay"))
	assert.Equal(t, "zip_code_3_digits", Slug("Zip Code - 3 digits"))
	assert.Equal(t, "duree_du_sejour", Slug("Durée du séjour"))
	assert.Equal(t, "", Slug(" -- "))
}

func TestColumnIDsMatchHeaderSlugs(t *testing.T) {
	require.Len(t, columnHeaders, len(AllColumns))
	for _, c := range AllColumns {
		assert.Equal(t, string(c), Slug(c.Header()), c.Header())
	}
}

func TestParseColumns(t *testing.T) {
	cols, err := ParseColumns([]string{"age_group", "Gender", "age_group", " ", "Length of Stay"})
	require.NoError(t, err)
	assert.Equal(t, []Column{ColumnAgeGroup, ColumnGender, ColumnLengthOfStay}, cols)

	_, err = ParseColumns([]string{"age_group", "shoe_size"})
	assert.ErrorIs(t, err, ErrUnknownColumn)
}
