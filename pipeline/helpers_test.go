package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pivolan/stay_dashboard/domain/models"
)

const sampleCSV = `Health Service Area,Age Group,Gender,Length of Stay,Type of Admission,Total Charges
Western NY,0 to 17,F,3,Newborn,1200.50
Western NY,18 to 29,M,120 +,Emergency,99000
Capital/Adiron,70 or Older,F,12,Elective,5400
Capital/Adiron,18 to 29,F,abc,Emergency,10
New York City,0 to 17,M,1,Newborn,800
New York City,70 or Older,M,7,Emergency,3100
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func loadString(t *testing.T, content string) *models.Dataset {
	t.Helper()
	ds, err := LoadReader(strings.NewReader(content), "test.csv", Options{})
	require.NoError(t, err)
	return ds
}

// exampleDataset is the three-row worked example: "5+"/A, "10"/B, "abc"/A.
func exampleDataset(t *testing.T) *models.Dataset {
	return loadString(t, "Length of Stay,Age Group,Gender,Type of Admission\n5+,A,F,Urgent\n10,B,M,Elective\nabc,A,F,Urgent\n")
}
