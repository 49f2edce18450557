package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"sql-to-er/internal/adapter"
	"sql-to-er/internal/ai"
	"sql-to-er/internal/analyzer"
	"sql-to-er/internal/ermodel"
	"sql-to-er/internal/renderer"
	"sql-to-er/internal/sqlparser"
)

var (
	inputFile string
	outputDir string
	translate bool
	apiKey    string
	inferRel  bool

	dbType  string
	connStr string
	schema  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sql2er",
		Short: "SQL DDL 转 ER 模型工具",
		Long:  "解析 CREATE TABLE / ALTER TABLE 语句，构建实体关系模型，生成 ER 图和数据字典",
	}

	convertCmd := &cobra.Command{
		Use:   "convert",
		Short: "解析 SQL 文件并生成 ER 模型",
		Run:   runConvert,
	}
	convertCmd.Flags().StringVar(&inputFile, "input", "", "SQL 文件路径")
	convertCmd.Flags().StringVar(&outputDir, "output", "./output", "输出目录")
	convertCmd.Flags().BoolVar(&translate, "translate", false, "启用 AI 翻译显示名（需要 API Key）")
	convertCmd.Flags().StringVar(&apiKey, "api-key", "", "DeepSeek API Key（或使用环境变量 DEEPSEEK_API_KEY）")
	convertCmd.Flags().BoolVar(&inferRel, "infer", false, "对没有声明外键的表推断隐含关系")
	convertCmd.MarkFlagRequired("input")

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "扫描在线数据库并生成 ER 模型",
		Run:   runScan,
	}
	scanCmd.Flags().StringVar(&dbType, "type", "mysql", "数据库类型 (mysql/sqlserver)")
	scanCmd.Flags().StringVar(&connStr, "conn", "", "连接字符串")
	scanCmd.Flags().StringVar(&schema, "schema", "", "数据库 schema (MySQL 必需)")
	scanCmd.Flags().StringVar(&outputDir, "output", "./output", "输出目录")
	scanCmd.Flags().BoolVar(&inferRel, "infer", false, "对没有声明外键的表推断隐含关系")
	scanCmd.MarkFlagRequired("conn")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(scanCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runConvert(cmd *cobra.Command, args []string) {
	fmt.Printf("🔍 读取 SQL 文件 %s...\n", inputFile)

	data, err := os.ReadFile(inputFile)
	if err != nil {
		log.Fatalf("读取文件失败: %v", err)
	}

	tables, errMsg := sqlparser.Parse(string(data))
	if errMsg != "" {
		log.Fatal(errMsg)
	}
	fmt.Printf("✓ 解析出 %d 个表\n", len(tables))

	emitOutputs(tables)
}

func runScan(cmd *cobra.Command, args []string) {
	fmt.Println("🔍 开始扫描数据库...")

	var dbAdapter adapter.DBAdapter
	var err error

	switch dbType {
	case "mysql":
		if schema == "" {
			log.Fatal("MySQL 需要指定 --schema 参数")
		}
		dbAdapter, err = adapter.NewMySQLAdapter(connStr, schema)
	case "sqlserver":
		dbAdapter, err = adapter.NewSQLServerAdapter(connStr)
	default:
		log.Fatalf("不支持的数据库类型: %s", dbType)
	}

	if err != nil {
		log.Fatalf("连接数据库失败: %v", err)
	}
	defer dbAdapter.Close()

	fmt.Println("✓ 数据库连接成功")

	tables, err := dbAdapter.IntrospectTables()
	if err != nil {
		log.Fatalf("获取元数据失败: %v", err)
	}
	fmt.Printf("✓ 发现 %d 个表\n", len(tables))

	emitOutputs(tables)
}

// emitOutputs 构建 ER 模型并写出全部产物
func emitOutputs(tables map[string]*sqlparser.TableMeta) {
	fmt.Println("\n🔨 构建 ER 模型...")
	entities, relationships := ermodel.Build(tables)
	fmt.Printf("✓ %d 个实体，%d 个关系\n", len(entities), len(relationships))

	// AI 翻译（可选）
	if translate {
		key := apiKey
		if key == "" {
			key = os.Getenv("DEEPSEEK_API_KEY")
		}
		if key == "" {
			fmt.Println("⚠️  未提供 API Key，跳过翻译")
			fmt.Println("   提示：使用 --api-key 或设置环境变量 DEEPSEEK_API_KEY")
		} else {
			fmt.Println("\n🤖 AI 翻译显示名...")
			client := ai.NewDeepSeekClient(key)
			if err := ai.TranslateModel(client, entities, relationships); err != nil {
				fmt.Printf("⚠️  翻译失败: %v\n", err)
			} else {
				fmt.Println("✓ 翻译完成")
			}
		}
	}

	// 推断隐含关系（可选）
	if inferRel {
		fmt.Println("\n🔗 推断隐含关系...")
		inferer := analyzer.NewInferer()
		candidates := inferer.InferRelations(tables)
		fmt.Printf("✓ 发现 %d 个候选关系\n", len(candidates))
		for _, c := range candidates {
			fmt.Printf("  - %s.%s → %s.%s (置信度: %.2f)\n",
				c.Relationship.FromEntity, c.Relationship.FromAttribute,
				c.Relationship.ToEntity, c.Relationship.ToAttribute, c.Confidence)
			relationships = append(relationships, c.Relationship)
		}
	}

	// 检测枚举表
	enumDetector := analyzer.NewEnumDetector()
	enumTables := enumDetector.DetectEnumTables(tables)
	if len(enumTables) > 0 {
		fmt.Printf("\n📋 发现 %d 个可能的枚举/码表\n", len(enumTables))
		for _, et := range enumTables {
			fmt.Printf("  - %s (key: %s, 置信度: %.2f)\n", et.Name, et.KeyColumn, et.Confidence)
		}
	}

	fmt.Println("\n📝 生成输出文件...")
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		log.Fatalf("创建输出目录失败: %v", err)
	}

	model := &ermodel.Model{Entities: entities, Relationships: relationships}
	jsonData, err := model.ToJSON()
	if err != nil {
		log.Fatalf("序列化模型失败: %v", err)
	}
	writeOutput("model.json", jsonData)

	mermaidRenderer := renderer.NewMermaidRenderer()
	writeOutput("er.mmd", []byte(mermaidRenderer.Render(entities, relationships)))

	dotRenderer := renderer.NewDotRenderer("ER_Diagram")
	writeOutput("er.dot", []byte(dotRenderer.Render(entities, relationships)))

	mdRenderer := renderer.NewMarkdownRenderer()
	writeOutput("dict.md", []byte(mdRenderer.Render(tables)))

	fmt.Println("\n✅ 转换完成！")
}

func writeOutput(name string, data []byte) {
	path := filepath.Join(outputDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Fatalf("写入 %s 失败: %v", path, err)
	}
	fmt.Printf("✓ %s\n", path)
}
