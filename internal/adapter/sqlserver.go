package adapter

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/denisenkom/go-mssqldb"

	"sql-to-er/internal/sqlparser"
)

// SQLServerAdapter SQL Server 适配器
type SQLServerAdapter struct {
	db *sql.DB
}

// NewSQLServerAdapter 创建 SQL Server 适配器
func NewSQLServerAdapter(connStr string) (*SQLServerAdapter, error) {
	db, err := sql.Open("sqlserver", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &SQLServerAdapter{db: db}, nil
}

// IntrospectTables 获取元数据
func (a *SQLServerAdapter) IntrospectTables() (map[string]*sqlparser.TableMeta, error) {
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

func (a *SQLServerAdapter) getTables() (map[string]*sqlparser.TableMeta, error) {
	query := `
		SELECT TABLE_NAME
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME
	`
	rows, err := a.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := make(map[string]*sqlparser.TableMeta)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables[name] = &sqlparser.TableMeta{}
	}
	return tables, rows.Err()
}

func (a *SQLServerAdapter) getColumns(table string) ([]sqlparser.Column, []string, error) {
	query := `
		SELECT
			c.COLUMN_NAME,
			c.DATA_TYPE,
			COALESCE(c.CHARACTER_MAXIMUM_LENGTH, 0) as LENGTH,
			CASE WHEN c.IS_NULLABLE = 'YES' THEN 1 ELSE 0 END as NULLABLE,
			CASE WHEN pk.COLUMN_NAME IS NOT NULL THEN 1 ELSE 0 END as IS_PK,
			COALESCE(c.COLUMN_DEFAULT, '') as COL_DEFAULT,
			COLUMNPROPERTY(OBJECT_ID(c.TABLE_SCHEMA + '.' + c.TABLE_NAME), c.COLUMN_NAME, 'IsIdentity') as IS_IDENTITY
		FROM INFORMATION_SCHEMA.COLUMNS c
		LEFT JOIN (
			SELECT ku.TABLE_SCHEMA, ku.TABLE_NAME, ku.COLUMN_NAME
			FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
			JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE ku
				ON tc.CONSTRAINT_NAME = ku.CONSTRAINT_NAME
			WHERE tc.CONSTRAINT_TYPE = 'PRIMARY KEY'
		) pk ON c.TABLE_SCHEMA = pk.TABLE_SCHEMA
			AND c.TABLE_NAME = pk.TABLE_NAME
			AND c.COLUMN_NAME = pk.COLUMN_NAME
		WHERE c.TABLE_NAME = @p1
		ORDER BY c.ORDINAL_POSITION
	`
	rows, err := a.db.Query(query, table)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var columns []sqlparser.Column
	var pks []string
	for rows.Next() {
		var c sqlparser.Column
		var dataType string
		var length, nullable, isPK int
		var isIdentity sql.NullInt64
		if err := rows.Scan(&c.Name, &dataType, &length, &nullable, &isPK, &c.Default, &isIdentity); err != nil {
			return nil, nil, err
		}
		c.Type = formatSQLServerType(dataType, length)
		c.Nullable = nullable == 1
		c.PK = isPK == 1
		c.AutoIncrement = isIdentity.Valid && isIdentity.Int64 == 1
		c.Default = strings.Trim(c.Default, "()'")
		if c.PK {
			pks = append(pks, c.Name)
		}
		columns = append(columns, c)
	}
	return columns, pks, rows.Err()
}

func (a *SQLServerAdapter) fillForeignKeys(tables map[string]*sqlparser.TableMeta) error {
	query := `
		SELECT
			fk.name,
			tp.name AS parent_table,
			cp.name AS parent_column,
			tr.name AS ref_table,
			cr.name AS ref_column
		FROM sys.foreign_keys fk
		JOIN sys.foreign_key_columns fkc ON fk.object_id = fkc.constraint_object_id
		JOIN sys.tables tp ON fkc.parent_object_id = tp.object_id
		JOIN sys.columns cp ON fkc.parent_object_id = cp.object_id AND fkc.parent_column_id = cp.column_id
		JOIN sys.tables tr ON fkc.referenced_object_id = tr.object_id
		JOIN sys.columns cr ON fkc.referenced_object_id = cr.object_id AND fkc.referenced_column_id = cr.column_id
		ORDER BY tp.name, fk.name
	`
	rows, err := a.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var constraint, tableName, column, refTable, refColumn string
		if err := rows.Scan(&constraint, &tableName, &column, &refTable, &refColumn); err != nil {
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

// formatSQLServerType 拼回带长度的类型串，nvarchar(max) 的长度是 -1
func formatSQLServerType(dataType string, length int) string {
	t := strings.ToUpper(dataType)
	switch {
	case length == -1:
		return t + "(MAX)"
	case length > 0:
		return fmt.Sprintf("%s(%d)", t, length)
	default:
		return t
	}
}

// Close 关闭连接
func (a *SQLServerAdapter) Close() error {
	return a.db.Close()
}
