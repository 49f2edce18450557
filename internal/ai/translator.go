package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"sql-to-er/internal/ermodel"
)

// Translator 名称翻译客户端接口
type Translator interface {
	// TranslateTerms 批量把英文标识符翻译为中文显示名
	TranslateTerms(terms []string) (map[string]string, error)
}

// DeepSeekClient DeepSeek 翻译客户端
type DeepSeekClient struct {
	apiKey     string
	endpoint   string
	model      string
	httpClient *http.Client
}

// NewDeepSeekClient 创建 DeepSeek 客户端
func NewDeepSeekClient(apiKey string) *DeepSeekClient {
	return &DeepSeekClient{
		apiKey:     apiKey,
		endpoint:   "https://api.deepseek.com/v1/chat/completions",
		model:      "deepseek-chat",
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// TranslateTerms 批量翻译表名/列名，返回 原文 -> 中文 的映射
func (c *DeepSeekClient) TranslateTerms(terms []string) (map[string]string, error) {
	if len(terms) == 0 {
		return map[string]string{}, nil
	}

	prompt := fmt.Sprintf(`你是数据库建模专家。请把下面的数据库标识符翻译为简洁的中文名称：

%s

请以 JSON 对象格式返回，键是原标识符，值是中文名称（5字以内）：
{
  "user_id": "用户ID"
}

注意：
1. 只返回 JSON，不要其他文字
2. 保持键与输入完全一致
3. 按数据库命名惯例理解缩写（如 qty=数量, amt=金额）`, strings.Join(terms, "\n"))

	response, err := c.callAPI(prompt)
	if err != nil {
		return nil, err
	}

	translated := make(map[string]string)
	if err := json.Unmarshal([]byte(stripCodeFence(response)), &translated); err != nil {
		return nil, fmt.Errorf("解析翻译结果失败: %v", err)
	}
	return translated, nil
}

// callAPI 调用 DeepSeek API（OpenAI 兼容格式）
func (c *DeepSeekClient) callAPI(prompt string) (string, error) {
	requestBody := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{
				"role":    "system",
				"content": "你是数据库建模专家，精通数据库表结构设计和字段命名惯例。",
			},
			{
				"role":    "user",
				"content": prompt,
			},
		},
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest("POST", c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API 调用失败: %s, 响应: %s", resp.Status, string(body))
	}

	var apiResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("解析响应失败: %v", err)
	}
	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("API 返回空响应")
	}

	return apiResp.Choices[0].Message.Content, nil
}

// TranslateModel 给缺少注释的实体/属性/关系补上中文显示名，原地修改。
// 翻译失败时模型保持原样，调用方可以把错误当警告处理。
func TranslateModel(t Translator, entities map[string]*ermodel.Entity, relationships []*ermodel.Relationship) error {
	termSet := make(map[string]bool)
	for _, entity := range entities {
		if entity.Comment == "" {
			termSet[entity.Name] = true
		}
		for _, attr := range entity.Attributes {
			if attr.Comment == "" {
				termSet[attr.Name] = true
			}
		}
	}
	for _, rel := range relationships {
		if rel.Comment == "" {
			termSet[rel.Name] = true
		}
	}

	if len(termSet) == 0 {
		return nil
	}

	terms := make([]string, 0, len(termSet))
	for term := range termSet {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	translated, err := t.TranslateTerms(terms)
	if err != nil {
		return err
	}

	for _, entity := range entities {
		if entity.Comment == "" {
			if v := translated[entity.Name]; v != "" {
				entity.Comment = v
			}
		}
		for _, attr := range entity.Attributes {
			if attr.Comment == "" {
				if v := translated[attr.Name]; v != "" {
					attr.DisplayName = v
				}
			}
		}
	}
	for _, rel := range relationships {
		if rel.Comment == "" {
			if v := translated[rel.Name]; v != "" {
				rel.Comment = v
			}
		}
	}

	return nil
}

// stripCodeFence 去掉模型偶尔包上的 ```json 代码块
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
