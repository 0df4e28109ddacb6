package testutil

import (
	"errors"

	"gorm.io/gorm"
)

// ErrInjected is the error returned by injected faults.
var ErrInjected = errors.New("injected storage failure")

// FailDeletesOn makes every DELETE against table fail before it reaches the
// database, which simulates the store dropping out halfway through a batch.
func FailDeletesOn(db *gorm.DB, table string) error {
	return db.Callback().Delete().Before("gorm:delete").Register("testutil:fail_delete_"+table, failOn(table))
}

// FailUpdatesOn makes every UPDATE against table fail. gorm's Save on an
// existing row goes through these callbacks too.
func FailUpdatesOn(db *gorm.DB, table string) error {
	return db.Callback().Update().Before("gorm:update").Register("testutil:fail_update_"+table, failOn(table))
}

// FailCreatesOn makes every INSERT against table fail.
func FailCreatesOn(db *gorm.DB, table string) error {
	return db.Callback().Create().Before("gorm:create").Register("testutil:fail_create_"+table, failOn(table))
}

func failOn(table string) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		if tx.Statement.Schema != nil && tx.Statement.Schema.Table == table {
			_ = tx.AddError(ErrInjected)
		}
	}
}
