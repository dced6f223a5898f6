package layout

import (
	"encoding/json"
	"fmt"
	"os"
)

// MarshalDebugJSON 将布局快照编码为缩进 JSON。
func MarshalDebugJSON(res *Result) ([]byte, error) {
	if res == nil {
		return nil, fmt.Errorf("布局结果为空")
	}
	return json.MarshalIndent(res, "", "  ")
}

// WriteDebugJSON 将布局快照写入文件，便于调试或可视化。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	data, err := MarshalDebugJSON(res)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
