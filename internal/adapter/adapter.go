package adapter

import "sql-to-er/internal/sqlparser"

// DBAdapter 数据库适配器接口。
// 把在线库的结构提取为与 DDL 解析结果相同的表元数据，
// 后续的 ER 构建、渲染对两种来源一视同仁。
type DBAdapter interface {
	// IntrospectTables 获取全部表元数据
	IntrospectTables() (map[string]*sqlparser.TableMeta, error)

	// Close 关闭连接
	Close() error
}
