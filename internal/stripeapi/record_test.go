package stripeapi

import (
	"encoding/json"
	"testing"
)

func TestRecordID(t *testing.T) {
	rec := Record{
		"bare":     "cus_1",
		"expanded": map[string]any{"id": "cus_2", "email": "a@b.c"},
		"number":   int64(7),
	}
	if got := rec.ID("bare"); got != "cus_1" {
		t.Errorf("ID(bare) = %q", got)
	}
	if got := rec.ID("expanded"); got != "cus_2" {
		t.Errorf("ID(expanded) = %q", got)
	}
	if got := rec.ID("number"); got != "" {
		t.Errorf("ID(number) = %q, want empty", got)
	}
	if got := rec.ID("absent"); got != "" {
		t.Errorf("ID(absent) = %q, want empty", got)
	}
}

func TestRecordInt64(t *testing.T) {
	rec := Record{
		"number": json.Number("1790000000"),
		"float":  float64(42),
		"int":    7,
		"text":   "nope",
	}
	tests := []struct {
		key  string
		want int64
	}{
		{"number", 1790000000},
		{"float", 42},
		{"int", 7},
		{"text", 0},
		{"absent", 0},
	}
	for _, tt := range tests {
		if got := rec.Int64(tt.key); got != tt.want {
			t.Errorf("Int64(%q) = %d, want %d", tt.key, got, tt.want)
		}
	}
}

func TestRecordMetadataNeverNil(t *testing.T) {
	if got := (Record{}).Metadata(); got == nil {
		t.Error("Metadata() = nil")
	}
	rec := Record{"metadata": map[string]any{"k": "v"}}
	if got := rec.Metadata().String("k"); got != "v" {
		t.Errorf("Metadata().String(k) = %q", got)
	}
}

func TestRecordCloneIsDeep(t *testing.T) {
	rec := Record{
		"nested": map[string]any{"k": "v"},
		"list":   []any{map[string]any{"i": "1"}},
	}
	clone := rec.Clone()
	clone.Map("nested")["k"] = "changed"
	clone.Slice("list")[0].(map[string]any)["i"] = "2"

	if rec.Map("nested").String("k") != "v" {
		t.Error("clone shares nested map with original")
	}
	if Record(rec.Slice("list")[0].(map[string]any)).String("i") != "1" {
		t.Error("clone shares slice element with original")
	}
}

func TestRecordData(t *testing.T) {
	rec := Record{"data": []any{
		map[string]any{"id": "a"},
		"not an object",
		map[string]any{"id": "b"},
	}}
	data := rec.Data()
	if len(data) != 2 || data[0].String("id") != "a" || data[1].String("id") != "b" {
		t.Errorf("Data() = %v", data)
	}
}
