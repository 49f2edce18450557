package adapter

import (
	"database/sql"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"sql-to-er/internal/sqlparser"
)

// MySQLAdapter MySQL 适配器
type MySQLAdapter struct {
	db     *sql.DB
	schema string
}

// NewMySQLAdapter 创建 MySQL 适配器
func NewMySQLAdapter(connStr, schema string) (*MySQLAdapter, error) {
	db, err := sql.Open("mysql", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &MySQLAdapter{db: db, schema: schema}, nil
}

// IntrospectTables 获取元数据
func (a *MySQLAdapter) IntrospectTables() (map[string]*sqlparser.TableMeta, error) {
	tables, err := a.getTables()
	if err != nil {
		return nil, err
	}

	for name, meta := range tables {
		columns, pks, err := a.getColumns(name)
		if err != nil {
			return nil, err
		}
		meta.Columns = columns
		meta.PrimaryKeys = pks
	}

	if err := a.fillForeignKeys(tables); err != nil {
		return nil, err
	}

	return tables, nil
}

func (a *MySQLAdapter) getTables() (map[string]*sqlparser.TableMeta, error) {
	query := `
		SELECT TABLE_NAME, COALESCE(TABLE_COMMENT, '')
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME
	`
	rows, err := a.db.Query(query, a.schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := make(map[string]*sqlparser.TableMeta)
	for rows.Next() {
		var name, comment string
		if err := rows.Scan(&name, &comment); err != nil {
			return nil, err
		}
		tables[name] = &sqlparser.TableMeta{Comment: comment}
	}
	return tables, rows.Err()
}

func (a *MySQLAdapter) getColumns(table string) ([]sqlparser.Column, []string, error) {
	query := `
		SELECT
			COLUMN_NAME,
			COLUMN_TYPE,
			IS_NULLABLE = 'YES',
			COLUMN_KEY = 'PRI',
			COALESCE(COLUMN_DEFAULT, ''),
			COALESCE(COLUMN_COMMENT, ''),
			EXTRA LIKE '%auto_increment%'
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION
	`
	rows, err := a.db.Query(query, a.schema, table)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var columns []sqlparser.Column
	var pks []string
	for rows.Next() {
		var c sqlparser.Column
		if err := rows.Scan(&c.Name, &c.Type, &c.Nullable, &c.PK, &c.Default, &c.Comment, &c.AutoIncrement); err != nil {
			return nil, nil, err
		}
		c.Type = strings.ToUpper(c.Type)
		if c.PK {
			pks = append(pks, c.Name)
		}
		columns = append(columns, c)
	}
	return columns, pks, rows.Err()
}

func (a *MySQLAdapter) fillForeignKeys(tables map[string]*sqlparser.TableMeta) error {
	query := `
		SELECT
			kcu.TABLE_NAME,
			kcu.COLUMN_NAME,
			kcu.REFERENCED_TABLE_NAME,
			kcu.REFERENCED_COLUMN_NAME,
			kcu.CONSTRAINT_NAME
		FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
		WHERE kcu.TABLE_SCHEMA = ?
			AND kcu.REFERENCED_TABLE_NAME IS NOT NULL
		ORDER BY kcu.TABLE_NAME, kcu.ORDINAL_POSITION
	`
	rows, err := a.db.Query(query, a.schema)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var tableName, column, refTable, refColumn, constraint string
		if err := rows.Scan(&tableName, &column, &refTable, &refColumn, &constraint); err != nil {
			return err
		}
		meta, ok := tables[tableName]
		if !ok {
			continue
		}
		meta.ForeignKeys = append(meta.ForeignKeys, sqlparser.ForeignKey{
			Column:  column,
			Ref:     sqlparser.FKRef{Table: refTable, Column: refColumn},
			Comment: constraint,
		})
	}
	return rows.Err()
}

// Close 关闭连接
func (a *MySQLAdapter) Close() error {
	return a.db.Close()
}
