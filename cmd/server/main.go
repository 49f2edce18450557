package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"sql-to-er/internal/ai"
	"sql-to-er/internal/analyzer"
	"sql-to-er/internal/ermodel"
	"sql-to-er/internal/renderer"
	"sql-to-er/internal/sqlparser"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许跨域
	},
}

// ConvertRequest 转换请求
type ConvertRequest struct {
	SQL               string `json:"sql"`               // DDL 文本
	EnableTranslation bool   `json:"enableTranslation"` // 是否启用 AI 翻译
	APIKey            string `json:"api_key"`           // DeepSeek API Key，缺省读环境变量
	InferRelations    bool   `json:"infer_relations"`   // 是否推断隐含关系
}

// ConvertTask 转换任务
type ConvertTask struct {
	ID        string         `json:"id"`
	Status    string         `json:"status"` // pending/running/completed/failed
	Progress  int            `json:"progress"`
	Message   string         `json:"message"`
	Result    *ConvertResult `json:"result,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`

	request ConvertRequest
}

// ConvertResult 转换结果
type ConvertResult struct {
	ModelJSON string         `json:"model_json"`
	ErMermaid string         `json:"er_mermaid"`
	ErDot     string         `json:"er_dot"`
	DictMD    string         `json:"dict_md"`
	Stats     map[string]int `json:"stats"`
}

var (
	tasks   = make(map[string]*ConvertTask)
	tasksMu sync.RWMutex
)

func main() {
	// 静态文件
	http.Handle("/", http.FileServer(http.Dir("web/static")))

	// API 路由
	http.HandleFunc("/api/convert", handleConvert)
	http.HandleFunc("/api/task/", handleTaskStatus)
	http.HandleFunc("/api/ws", handleWebSocket)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	fmt.Printf("🚀 SQL to ER Web Server\n")
	fmt.Printf("📡 服务地址: http://localhost:%s\n", port)
	fmt.Printf("📊 POST /api/convert 提交 SQL 开始转换\n\n")

	log.Fatal(http.ListenAndServe(":"+port, nil))
}

// handleConvert 处理转换请求
func handleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	taskID := fmt.Sprintf("task_%d", time.Now().UnixNano())
	task := &ConvertTask{
		ID:        taskID,
		Status:    "pending",
		Progress:  0,
		Message:   "任务已创建，等待执行...",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		request:   req,
	}

	tasksMu.Lock()
	tasks[taskID] = task
	tasksMu.Unlock()

	// 异步执行转换
	go runConvert(task)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"task_id": taskID,
		"status":  "pending",
	})
}

// handleTaskStatus 查询任务状态
func handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	taskID := filepath.Base(r.URL.Path)

	tasksMu.RLock()
	task, exists := tasks[taskID]
	tasksMu.RUnlock()

	if !exists {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(task)
}

// handleWebSocket WebSocket 连接，持续推送任务状态
func handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}
	defer conn.Close()

	taskID := r.URL.Query().Get("task_id")
	if taskID == "" {
		return
	}

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		tasksMu.RLock()
		task, exists := tasks[taskID]
		tasksMu.RUnlock()

		if !exists {
			break
		}

		if err := conn.WriteJSON(task); err != nil {
			break
		}

		if task.Status == "completed" || task.Status == "failed" {
			break
		}
	}
}

// runConvert 执行解析-建模-渲染流水线。
// 每个任务持有独立的模型实例，翻译原地改写也不会影响其他请求。
func runConvert(task *ConvertTask) {
	updateTask := func(status string, progress int, message string) {
		tasksMu.Lock()
		task.Status = status
		task.Progress = progress
		task.Message = message
		task.UpdatedAt = time.Now()
		tasksMu.Unlock()
	}

	req := task.request

	updateTask("running", 10, "正在解析 SQL...")

	tables, errMsg := sqlparser.Parse(req.SQL)
	if errMsg != "" {
		updateTask("failed", 10, withHint(errMsg))
		return
	}

	updateTask("running", 40, fmt.Sprintf("解析出 %d 个表，构建 ER 模型...", len(tables)))

	entities, relationships := ermodel.Build(tables)

	// AI 翻译（可选）
	if req.EnableTranslation {
		key := req.APIKey
		if key == "" {
			key = os.Getenv("DEEPSEEK_API_KEY")
		}
		if key != "" {
			updateTask("running", 55, "AI 翻译显示名...")
			client := ai.NewDeepSeekClient(key)
			if err := ai.TranslateModel(client, entities, relationships); err != nil {
				// 翻译失败不影响主流程
				log.Printf("翻译失败: %v", err)
			}
		}
	}

	inferredCount := 0
	if req.InferRelations {
		updateTask("running", 70, "推断隐含关系...")
		inferer := analyzer.NewInferer()
		for _, c := range inferer.InferRelations(tables) {
			relationships = append(relationships, c.Relationship)
			inferredCount++
		}
	}

	updateTask("running", 85, "生成输出...")

	model := &ermodel.Model{Entities: entities, Relationships: relationships}
	modelJSON, err := model.ToJSON()
	if err != nil {
		updateTask("failed", 85, fmt.Sprintf("序列化模型失败: %v", err))
		return
	}

	result := &ConvertResult{
		ModelJSON: string(modelJSON),
		ErMermaid: renderer.NewMermaidRenderer().Render(entities, relationships),
		ErDot:     renderer.NewDotRenderer("ER_Diagram").Render(entities, relationships),
		DictMD:    renderer.NewMarkdownRenderer().Render(tables),
		Stats: map[string]int{
			"tables":             len(tables),
			"relations":          len(relationships),
			"inferred_relations": inferredCount,
		},
	}

	tasksMu.Lock()
	task.Result = result
	tasksMu.Unlock()

	updateTask("completed", 100, "转换完成！")
}

// withHint 给可识别的解析错误附上排查提示
func withHint(errMsg string) string {
	switch {
	case strings.Contains(errMsg, "Expecting )"):
		return errMsg + "（提示：请检查 SQL 中的括号是否成对）"
	case errMsg == sqlparser.ErrNoTables:
		return errMsg + "（提示：请确认输入包含 CREATE TABLE 语句）"
	default:
		return errMsg
	}
}
