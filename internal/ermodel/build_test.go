package ermodel

import (
	"strings"
	"testing"

	"sql-to-er/internal/sqlparser"
)

func usersOrdersTables() map[string]*sqlparser.TableMeta {
	return map[string]*sqlparser.TableMeta{
		"users": {
			Comment: "用户表",
			Columns: []sqlparser.Column{
				{Name: "id", Type: "INT", PK: true, Nullable: true},
				{Name: "name", Type: "VARCHAR(50)", Comment: "姓名", Nullable: false},
			},
			PrimaryKeys: []string{"id"},
		},
		"orders": {
			Columns: []sqlparser.Column{
				{Name: "id", Type: "INT", PK: true, Nullable: true},
				{Name: "user_id", Type: "INT", Nullable: false},
			},
			PrimaryKeys: []string{"id"},
			ForeignKeys: []sqlparser.ForeignKey{
				{Column: "user_id", Ref: sqlparser.FKRef{Table: "users", Column: "id"}},
			},
		},
	}
}

func TestBuildEntities(t *testing.T) {
	entities, relationships := Build(usersOrdersTables())

	if len(entities) != 2 {
		t.Fatalf("got %d entities, want 2", len(entities))
	}

	users := entities["users"]
	if users == nil {
		t.Fatal("entity users not found")
	}
	if users.Comment != "用户表" {
		t.Errorf("users comment = %q, want 用户表", users.Comment)
	}
	if users.GetDisplayName() != "用户表" {
		t.Errorf("users display name = %q, want 用户表", users.GetDisplayName())
	}
	if len(users.Attributes) != 2 {
		t.Fatalf("users has %d attributes, want 2", len(users.Attributes))
	}
	if !users.Attributes[0].IsPK {
		t.Error("users.id should be marked PK")
	}
	// 有列注释时展示名取注释
	if users.Attributes[1].DisplayName != "姓名" {
		t.Errorf("name display name = %q, want 姓名", users.Attributes[1].DisplayName)
	}

	orders := entities["orders"]
	if orders == nil {
		t.Fatal("entity orders not found")
	}
	// 外键列不隐藏，只打 IsFK 标记
	userID := orders.Attributes[1]
	if userID.Name != "user_id" {
		t.Fatalf("attribute 1 = %q, want user_id", userID.Name)
	}
	if !userID.IsFK {
		t.Error("orders.user_id should be marked FK")
	}
	if userID.IsPK {
		t.Error("orders.user_id should not be marked PK")
	}
	// 没有注释的列展示名回退为列名
	if userID.DisplayName != "user_id" {
		t.Errorf("user_id display name = %q, want user_id", userID.DisplayName)
	}

	if len(relationships) != 1 {
		t.Fatalf("got %d relationships, want 1", len(relationships))
	}
	rel := relationships[0]
	if rel.FromEntity != "orders" || rel.ToEntity != "users" {
		t.Errorf("relationship %s→%s, want orders→users", rel.FromEntity, rel.ToEntity)
	}
	if rel.RelType != RelOneToMany {
		t.Errorf("rel type = %s, want %s", rel.RelType, RelOneToMany)
	}
	if rel.Name != "orders_to_users" {
		t.Errorf("rel name = %q, want orders_to_users", rel.Name)
	}
}

func TestBuildCardinality(t *testing.T) {
	tests := []struct {
		name     string
		table    *sqlparser.TableMeta
		wantRels map[string]string // to_entity → rel_type
	}{
		{
			"fk column is also pk gives one to one",
			&sqlparser.TableMeta{
				Columns: []sqlparser.Column{
					{Name: "user_id", Type: "INT", PK: true},
					{Name: "bio", Type: "TEXT"},
				},
				PrimaryKeys: []string{"user_id"},
				ForeignKeys: []sqlparser.ForeignKey{
					{Column: "user_id", Ref: sqlparser.FKRef{Table: "users", Column: "id"}},
				},
			},
			map[string]string{"users": RelOneToOne},
		},
		{
			"junction table gives many to many on both edges",
			&sqlparser.TableMeta{
				Columns: []sqlparser.Column{
					{Name: "student_id", Type: "INT", PK: true},
					{Name: "course_id", Type: "INT", PK: true},
				},
				PrimaryKeys: []string{"student_id", "course_id"},
				ForeignKeys: []sqlparser.ForeignKey{
					{Column: "student_id", Ref: sqlparser.FKRef{Table: "students", Column: "id"}},
					{Column: "course_id", Ref: sqlparser.FKRef{Table: "courses", Column: "id"}},
				},
			},
			map[string]string{"students": RelManyToMany, "courses": RelManyToMany},
		},
		{
			"two fks without composite pk stays one to many",
			&sqlparser.TableMeta{
				Columns: []sqlparser.Column{
					{Name: "id", Type: "INT", PK: true},
					{Name: "from_id", Type: "INT"},
					{Name: "to_id", Type: "INT"},
				},
				PrimaryKeys: []string{"id"},
				ForeignKeys: []sqlparser.ForeignKey{
					{Column: "from_id", Ref: sqlparser.FKRef{Table: "accounts", Column: "id"}},
					{Column: "to_id", Ref: sqlparser.FKRef{Table: "accounts2", Column: "id"}},
				},
			},
			map[string]string{"accounts": RelOneToMany, "accounts2": RelOneToMany},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables := map[string]*sqlparser.TableMeta{"subject": tt.table}
			_, relationships := Build(tables)
			if len(relationships) != len(tt.wantRels) {
				t.Fatalf("got %d relationships, want %d", len(relationships), len(tt.wantRels))
			}
			for _, rel := range relationships {
				want, ok := tt.wantRels[rel.ToEntity]
				if !ok {
					t.Errorf("unexpected relationship to %s", rel.ToEntity)
					continue
				}
				if rel.RelType != want {
					t.Errorf("relationship to %s has type %s, want %s", rel.ToEntity, rel.RelType, want)
				}
			}
		})
	}
}

func TestBuildRefColumnFallback(t *testing.T) {
	tables := map[string]*sqlparser.TableMeta{
		"orders": {
			Columns: []sqlparser.Column{{Name: "user_id", Type: "INT"}},
			ForeignKeys: []sqlparser.ForeignKey{
				{Column: "user_id", Ref: sqlparser.FKRef{Table: "users", Column: ""}},
			},
		},
	}
	_, relationships := Build(tables)
	if len(relationships) != 1 {
		t.Fatalf("got %d relationships, want 1", len(relationships))
	}
	if relationships[0].ToAttribute != "id" {
		t.Errorf("to attribute = %q, want fallback id", relationships[0].ToAttribute)
	}
}

func TestBuildDeterministicOrder(t *testing.T) {
	tables := usersOrdersTables()
	_, first := Build(tables)
	for i := 0; i < 10; i++ {
		_, again := Build(tables)
		if len(again) != len(first) {
			t.Fatalf("run %d produced %d relationships, want %d", i, len(again), len(first))
		}
		for j := range again {
			if again[j].Name != first[j].Name || again[j].RelType != first[j].RelType {
				t.Fatalf("run %d relationship %d differs: %+v vs %+v", i, j, again[j], first[j])
			}
		}
	}
}

func TestBuildFromParsedSQL(t *testing.T) {
	sql := `
		CREATE TABLE students (id INT PRIMARY KEY);
		CREATE TABLE courses (id INT PRIMARY KEY);
		CREATE TABLE enrollments (
			student_id INT,
			course_id INT,
			PRIMARY KEY (student_id, course_id),
			FOREIGN KEY (student_id) REFERENCES students(id),
			FOREIGN KEY (course_id) REFERENCES courses(id)
		);
	`
	tables, errMsg := sqlparser.Parse(sql)
	if errMsg != "" {
		t.Fatalf("Parse returned error: %s", errMsg)
	}

	entities, relationships := Build(tables)
	if len(entities) != 3 {
		t.Fatalf("got %d entities, want 3", len(entities))
	}
	if len(relationships) != 2 {
		t.Fatalf("got %d relationships, want 2", len(relationships))
	}
	// 中间表的两条边都是 M:N
	for _, rel := range relationships {
		if rel.RelType != RelManyToMany {
			t.Errorf("relationship %s has type %s, want %s", rel.Name, rel.RelType, RelManyToMany)
		}
		if rel.FromEntity != "enrollments" {
			t.Errorf("relationship from %s, want enrollments", rel.FromEntity)
		}
	}
}

func TestModelToJSON(t *testing.T) {
	entities, relationships := Build(usersOrdersTables())
	model := &Model{Entities: entities, Relationships: relationships}
	data, err := model.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	out := string(data)
	for _, key := range []string{`"entities"`, `"relationships"`, `"from_entity"`, `"rel_type"`, `"isPK"`, `"isFK"`} {
		if !strings.Contains(out, key) {
			t.Errorf("JSON output missing %s", key)
		}
	}
}
