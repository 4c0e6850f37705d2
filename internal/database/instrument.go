package database

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// QueryRecorder 查询耗时上报，*metrics.Collector 满足该接口
type QueryRecorder interface {
	RecordDBQuery(database, operation string, duration time.Duration)
}

const queryStartKey = "mindflow:query_start"

// InstrumentQueries 在 GORM 回调链上挂载计时，按操作类型上报耗时
func InstrumentQueries(db *gorm.DB, name string, r QueryRecorder) error {
	before := func(tx *gorm.DB) {
		tx.InstanceSet(queryStartKey, time.Now())
	}
	after := func(op string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			v, ok := tx.InstanceGet(queryStartKey)
			if !ok {
				return
			}
			if start, ok := v.(time.Time); ok {
				r.RecordDBQuery(name, op, time.Since(start))
			}
		}
	}

	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register("mindflow:before_create", before),
		cb.Create().After("gorm:create").Register("mindflow:after_create", after("INSERT")),
		cb.Query().Before("gorm:query").Register("mindflow:before_query", before),
		cb.Query().After("gorm:query").Register("mindflow:after_query", after("SELECT")),
		cb.Update().Before("gorm:update").Register("mindflow:before_update", before),
		cb.Update().After("gorm:update").Register("mindflow:after_update", after("UPDATE")),
		cb.Delete().Before("gorm:delete").Register("mindflow:before_delete", before),
		cb.Delete().After("gorm:delete").Register("mindflow:after_delete", after("DELETE")),
		cb.Raw().Before("gorm:raw").Register("mindflow:before_raw", before),
		cb.Raw().After("gorm:raw").Register("mindflow:after_raw", after("RAW")),
	)
}
