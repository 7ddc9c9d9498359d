package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo describes one column of a catalog table. Field and Type are
// lower-cased so both dialects compare equal.
type ColumnInfo struct {
	Field   string
	Type    string
	Null    string
	Key     string
	Default *string
	Extra   string
}

// sqliteColumn is a row of PRAGMA table_info.
type sqliteColumn struct {
	Cid       int
	Name      string
	Type      string
	Notnull   int
	DfltValue *string
	Pk        int
}

// GetTableColumns lists the columns of tableName. A missing table yields no
// columns on sqlite and an error on MySQL.
func GetTableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	var (
		columns []ColumnInfo
		err     error
	)
	if db.Dialector.Name() == DriverSQLite {
		columns, err = sqliteColumns(db, tableName)
	} else {
		columns, err = mysqlColumns(db, tableName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}

	for i := range columns {
		columns[i].Field = strings.ToLower(columns[i].Field)
		columns[i].Type = strings.ToLower(columns[i].Type)
	}
	return columns, nil
}

// mysqlColumns keeps the exact MySQL type strings, e.g. varchar(255).
func mysqlColumns(db *gorm.DB, table string) ([]ColumnInfo, error) {
	var columns []ColumnInfo
	err := db.Raw(fmt.Sprintf("SHOW COLUMNS FROM `%s`", strings.ReplaceAll(table, "`", ""))).Scan(&columns).Error
	return columns, err
}

func sqliteColumns(db *gorm.DB, table string) ([]ColumnInfo, error) {
	var rows []sqliteColumn
	err := db.Raw(fmt.Sprintf("PRAGMA table_info('%s')", strings.ReplaceAll(table, "'", ""))).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	columns := make([]ColumnInfo, 0, len(rows))
	for _, r := range rows {
		col := ColumnInfo{Field: r.Name, Type: r.Type, Null: "YES", Default: r.DfltValue}
		if r.Notnull != 0 {
			col.Null = "NO"
		}
		if r.Pk != 0 {
			col.Key = "PRI"
		}
		columns = append(columns, col)
	}
	return columns, nil
}

// HasColumn reports whether columns contains a field named name.
func HasColumn(columns []ColumnInfo, name string) bool {
	name = strings.ToLower(name)
	for _, c := range columns {
		if c.Field == name {
			return true
		}
	}
	return false
}
