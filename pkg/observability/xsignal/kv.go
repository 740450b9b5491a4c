package xsignal

import "encoding/json"

// KV 扩展字段键值对。
//
// 序列化为 JSON 文本后写入 Extra/Labels/Tags 列。
// schema-less 设计：新增键不需要表结构迁移。
type KV map[string]any

// Text 将键值对序列化为 JSON 文本。
//
// 序列化失败时返回 "{}"，保证写入路径永远不会因扩展字段失败。
// 失败仅在值包含不可序列化类型（如 channel、func）时发生。
func (kv KV) Text() string {
	if len(kv) == 0 {
		return "{}"
	}
	data, err := json.Marshal(kv)
	if err != nil {
		return "{}"
	}
	return string(data)
}
