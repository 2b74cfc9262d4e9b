package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SidecarPath 返回输出文件旁的实体文件路径 <name>_entities.json
func SidecarPath(outputPath string) string {
	base := filepath.Base(outputPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(outputPath), name+"_entities.json")
}

// SaveSidecar 把实体列表写到输出文件旁，返回写入路径
func SaveSidecar(outputPath string, entities []Entity) (string, error) {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create sidecar directory: %w", err)
	}

	if entities == nil {
		entities = []Entity{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entities); err != nil {
		return "", fmt.Errorf("failed to encode entities: %w", err)
	}

	path := SidecarPath(outputPath)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write sidecar: %w", err)
	}
	return path, nil
}

// LoadSidecar 读取 SaveSidecar 写出的实体文件
func LoadSidecar(path string) ([]Entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entities []Entity
	if err := json.Unmarshal(data, &entities); err != nil {
		return nil, fmt.Errorf("failed to decode sidecar %s: %w", path, err)
	}
	return entities, nil
}
