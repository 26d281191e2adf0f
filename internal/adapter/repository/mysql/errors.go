package mysql

import (
	"errors"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

const mysqlDuplicateEntry = 1062

// isDuplicate reports a unique-key violation, translated by gorm or raw from MySQL.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var me *mysqlDriver.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
