package dbtypes

import (
	"database/sql/driver"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Int64List is a bigint[] on postgres and its text literal ("{1,2,3}") elsewhere.
type Int64List pq.Int64Array

func (l Int64List) Value() (driver.Value, error) {
	return pq.Int64Array(l).Value()
}

func (l *Int64List) Scan(src any) error {
	return (*pq.Int64Array)(l).Scan(src)
}

func (Int64List) GormDataType() string { return "int64list" }

func (Int64List) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "bigint[]"
	}
	return "text"
}
