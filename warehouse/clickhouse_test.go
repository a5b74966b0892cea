package warehouse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pivolan/stay_dashboard/domain/models"
	"github.com/pivolan/stay_dashboard/pipeline"
)

func dataset(t *testing.T) *models.Dataset {
	t.Helper()
	csv := "Length of Stay,Age Group,Gender,Type of Admission,id,Facility Name\n" +
		"5+,0 to 17,F,Urgent,a,\"St. Mary's, Inc\"\n" +
		"10,18 to 29,M,Elective,b,Mercy\n" +
		"abc,0 to 17,F,Urgent,c,Mercy\n" +
		"120 +,70 or Older,M,Emergency,d,Mercy\n"
	ds, err := pipeline.LoadReader(strings.NewReader(csv), "/data/discharges.csv", pipeline.Options{})
	require.NoError(t, err)
	return ds
}

func TestTableName(t *testing.T) {
	ds := dataset(t)
	name := TableName(ds)
	assert.True(t, strings.HasPrefix(name, "discharges_"))
	assert.Len(t, name, len("discharges_")+6)
	assert.Equal(t, name, TableName(&models.Dataset{Source: "/data/discharges.csv"}))
	assert.NotEqual(t, name, TableName(&models.Dataset{Source: "/data/other.csv"}))
}

func TestCreateTableSQL(t *testing.T) {
	cols := Columns(dataset(t))
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"id", "length_of_stay", "age_group", "gender", "type_of_admission", "id_2", "facility_name", "batch_id"}, names)

	sql := CreateTableSQL("discharges_abc123", cols)
	assert.Equal(t, "CREATE TABLE discharges_abc123 (id UInt64,\n"+
		"length_of_stay Float64,\n"+
		"age_group String,\n"+
		"gender String,\n"+
		"type_of_admission String,\n"+
		"id_2 String,\n"+
		"facility_name String,\n"+
		"batch_id String) ENGINE = ReplacingMergeTree PRIMARY KEY (id) SETTINGS index_granularity = 8192", sql)
}

func TestInsertStatements(t *testing.T) {
	ds := dataset(t)
	cols := Columns(ds)

	statements, err := InsertStatements("t", cols, ds, "batch-1", 2)
	require.NoError(t, err)
	require.Len(t, statements, 2)
	assert.Equal(t, "INSERT INTO t FORMAT CSV \n"+
		"2,5,0 to 17,F,Urgent,a,\"St. Mary's, Inc\",batch-1\n"+
		"3,10,18 to 29,M,Elective,b,Mercy,batch-1\n", statements[0])
	assert.Equal(t, "INSERT INTO t FORMAT CSV \n"+
		"5,120,70 or Older,M,Emergency,d,Mercy,batch-1\n", statements[1])

	statements, err = InsertStatements("t", cols, ds, "batch-1", 0)
	require.NoError(t, err)
	assert.Len(t, statements, 1)
}

func TestAdmissionMeansSQL(t *testing.T) {
	sql := AdmissionMeansSQL("discharges_abc123")
	assert.Contains(t, sql, "avg(length_of_stay) AS mean")
	assert.Contains(t, sql, "FROM discharges_abc123")
	assert.Contains(t, sql, "GROUP BY type_of_admission")
}

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}
