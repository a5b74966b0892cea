// Package warehouse publishes the cleaned discharge Dataset to ClickHouse,
// which is reached through its MySQL protocol port with the gorm mysql driver.
package warehouse

import (
	"bytes"
	"crypto/md5"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	uuid "github.com/satori/go.uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pivolan/stay_dashboard/domain/models"
	"github.com/pivolan/stay_dashboard/pipeline"
)

const (
	BatchSize   = 5000
	tablePrefix = "discharges_"
)

type ColumnInfo struct {
	Name   string
	Type   string // UInt64 Float64 String
	Header string // source header, "" for generated columns
}

func Open(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DB_DSN is empty")
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("cannot connect to clickhouse: %w", err)
	}
	return db, nil
}

func getMD5String(input string) string {
	hasher := md5.New()
	hasher.Write([]byte(input))
	return hex.EncodeToString(hasher.Sum(nil))
}

// TableName is stable per source path, so republishing a file replaces its table.
func TableName(ds *models.Dataset) string {
	return tablePrefix + getMD5String(ds.Source)[:6]
}

// Columns maps the source header to table columns: a generated id, every
// source column under its slug, and the batch id of the publish run.
func Columns(ds *models.Dataset) []ColumnInfo {
	used := map[string]int{"id": 1, "batch_id": 1}
	cols := []ColumnInfo{{Name: "id", Type: "UInt64"}}
	for _, h := range ds.Columns {
		name := pipeline.Slug(h)
		if name == "" {
			name = "column"
		}
		if n := used[name]; n > 0 {
			used[name] = n + 1
			name = name + "_" + strconv.Itoa(n+1)
		}
		used[name]++
		typ := "String"
		if h == pipeline.ColumnLengthOfStay.Header() {
			typ = "Float64"
		}
		cols = append(cols, ColumnInfo{Name: name, Type: typ, Header: h})
	}
	return append(cols, ColumnInfo{Name: "batch_id", Type: "String"})
}

func CreateTableSQL(table string, cols []ColumnInfo) string {
	fields := make([]string, len(cols))
	for i, c := range cols {
		fields[i] = c.Name + " " + c.Type
	}
	return "CREATE TABLE " + table + " (" + strings.Join(fields, ",\n") +
		") ENGINE = ReplacingMergeTree PRIMARY KEY (id) SETTINGS index_granularity = 8192"
}

// InsertStatements renders the Dataset as "INSERT ... FORMAT CSV" statements
// of at most size rows each.
func InsertStatements(table string, cols []ColumnInfo, ds *models.Dataset, batchID string, size int) ([]string, error) {
	if size <= 0 {
		size = BatchSize
	}
	var (
		statements []string
		b          bytes.Buffer
		rows       int
	)
	w := csv.NewWriter(&b)
	flush := func() error {
		w.Flush()
		if err := w.Error(); err != nil {
			return err
		}
		statements = append(statements, fmt.Sprintf("INSERT INTO %s FORMAT CSV \n%s", table, b.String()))
		b.Reset()
		rows = 0
		return nil
	}

	for _, r := range ds.Records {
		values := make([]string, len(cols))
		for i, c := range cols {
			switch {
			case c.Name == "id":
				values[i] = strconv.Itoa(r.Line)
			case c.Name == "batch_id":
				values[i] = batchID
			case c.Header == pipeline.ColumnLengthOfStay.Header():
				values[i] = pipeline.FormatStay(r.Stay)
			default:
				values[i] = r.Get(c.Header)
			}
		}
		if err := w.Write(values); err != nil {
			return nil, err
		}
		rows++
		if rows == size {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if rows > 0 {
		if err := flush(); err != nil {
			return nil, err
		}
	}
	return statements, nil
}

// Publish recreates the Dataset's table and loads every record into it.
func Publish(db *gorm.DB, ds *models.Dataset, log zerolog.Logger) (string, error) {
	start := time.Now()
	table := TableName(ds)
	cols := Columns(ds)
	batchID := uuid.NewV4().String()

	if tx := db.Exec("DROP TABLE IF EXISTS " + table); tx.Error != nil {
		return "", fmt.Errorf("drop %s: %w", table, tx.Error)
	}
	if tx := db.Exec(CreateTableSQL(table, cols)); tx.Error != nil {
		return "", fmt.Errorf("create %s: %w", table, tx.Error)
	}
	statements, err := InsertStatements(table, cols, ds, batchID, BatchSize)
	if err != nil {
		return "", err
	}
	for i, sql := range statements {
		if tx := db.Exec(sql); tx.Error != nil {
			return "", fmt.Errorf("insert batch %d into %s: %w", i+1, table, tx.Error)
		}
	}
	log.Info().
		Str("table", table).
		Str("batch_id", batchID).
		Int("rows", ds.Len()).
		Int("batches", len(statements)).
		Dur("took", time.Since(start)).
		Msg("dataset published")
	return table, nil
}

func AdmissionMeansSQL(table string) string {
	col := string(pipeline.ColumnAdmissionType)
	return fmt.Sprintf(`
        SELECT
            %[1]s AS admission,
            avg(%[3]s) AS mean,
            count() AS cnt
        FROM %[2]s
        WHERE %[1]s != ''
        GROUP BY %[1]s
        ORDER BY %[1]s
    `, col, table, string(pipeline.ColumnLengthOfStay))
}

// AdmissionMeans recomputes the per admission type means inside ClickHouse.
func AdmissionMeans(db *gorm.DB, table string) ([]models.GroupMean, error) {
	var rows []struct {
		Admission string
		Mean      float64
		Cnt       int
	}
	if err := db.Raw(AdmissionMeansSQL(table)).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	groups := make([]models.GroupMean, len(rows))
	for i, r := range rows {
		groups[i] = models.GroupMean{Group: r.Admission, Mean: r.Mean, Count: r.Cnt}
	}
	return groups, nil
}
