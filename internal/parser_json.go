package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// ParseBillsJSON reads bills from JSON. Three shapes are accepted:
//
//	[{"id": 1, "name": "Rent", ...}]                 a bare GET /bills array
//	{"success": true, "data": [...]}                 a saved API response
//	{"bills": [...], "payments": [...]}              a billview export
func ParseBillsJSON(path string) (Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("reading file: %w", err)
	}
	return decodeBillsJSON(data)
}

func decodeBillsJSON(data []byte) (Dataset, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Dataset{}, fmt.Errorf("empty file")
	}

	if trimmed[0] == '[' {
		var bills []Bill
		if err := json.Unmarshal(trimmed, &bills); err != nil {
			return Dataset{}, fmt.Errorf("parsing JSON: %w", err)
		}
		return Dataset{Bills: bills}, nil
	}

	var doc struct {
		Dataset
		Success *bool  `json:"success"`
		Data    []Bill `json:"data"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return Dataset{}, fmt.Errorf("parsing JSON: %w", err)
	}
	if doc.Success != nil {
		if !*doc.Success {
			return Dataset{}, fmt.Errorf("saved API response reports failure: %s", doc.Error)
		}
		return Dataset{Bills: doc.Data}, nil
	}
	return doc.Dataset, nil
}

func init() {
	RegisterParser("json", ParserFunc(ParseBillsJSON))
}
