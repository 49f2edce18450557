package analyzer

import (
	"testing"

	"sql-to-er/internal/sqlparser"
)

func TestDetectEnumTables(t *testing.T) {
	tables := map[string]*sqlparser.TableMeta{
		"order_status": {
			Columns: []sqlparser.Column{
				{Name: "status_code", Type: "VARCHAR(10)", PK: true},
				{Name: "status_name", Type: "VARCHAR(50)"},
			},
			PrimaryKeys: []string{"status_code"},
		},
		"orders": {
			Columns: []sqlparser.Column{
				{Name: "order_no", Type: "VARCHAR(32)", PK: true},
				{Name: "amount", Type: "DECIMAL(10,2)"},
				{Name: "status_code", Type: "VARCHAR(10)"},
			},
			PrimaryKeys: []string{"order_no"},
			ForeignKeys: []sqlparser.ForeignKey{
				{Column: "status_code", Ref: sqlparser.FKRef{Table: "order_status", Column: "status_code"}},
			},
		},
	}

	enums := NewEnumDetector().DetectEnumTables(tables)
	if len(enums) != 1 {
		t.Fatalf("got %d enum tables, want 1", len(enums))
	}

	et := enums[0]
	if et.Name != "order_status" {
		t.Errorf("enum table = %q, want order_status", et.Name)
	}
	if et.KeyColumn != "status_code" || et.ValueColumn != "status_name" {
		t.Errorf("key/value columns = %s/%s, want status_code/status_name", et.KeyColumn, et.ValueColumn)
	}
	if et.Confidence <= 0.6 {
		t.Errorf("confidence = %.2f, want > 0.6", et.Confidence)
	}
	if len(et.ReferencedBy) != 1 || et.ReferencedBy[0] != "orders" {
		t.Errorf("referenced by = %v, want [orders]", et.ReferencedBy)
	}
}

func TestDetectEnumTablesSkipsWideTables(t *testing.T) {
	tables := map[string]*sqlparser.TableMeta{
		"user_profile": {
			Columns: []sqlparser.Column{
				{Name: "id", Type: "INT", PK: true},
				{Name: "name", Type: "VARCHAR(50)"},
				{Name: "email", Type: "VARCHAR(100)"},
				{Name: "phone", Type: "VARCHAR(20)"},
				{Name: "address", Type: "VARCHAR(200)"},
				{Name: "created_at", Type: "DATETIME"},
			},
			PrimaryKeys: []string{"id"},
		},
	}

	if enums := NewEnumDetector().DetectEnumTables(tables); len(enums) != 0 {
		t.Errorf("got %d enum tables, want 0 for a wide table", len(enums))
	}
}

func TestDetectEnumTablesNeedsKeyColumn(t *testing.T) {
	tables := map[string]*sqlparser.TableMeta{
		"misc": {
			Columns: []sqlparser.Column{
				{Name: "foo", Type: "INT"},
				{Name: "bar", Type: "INT"},
			},
		},
	}

	if enums := NewEnumDetector().DetectEnumTables(tables); len(enums) != 0 {
		t.Errorf("got %d enum tables, want 0 without key-like columns", len(enums))
	}
}
