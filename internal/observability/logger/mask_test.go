package logger

import "testing"

func TestMaskAuthorization(t *testing.T) {
	got := MaskAuthorization("Bearer abcdef1234")
	want := "Bearer ****1234"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestMaskAPIKey(t *testing.T) {
	if got := MaskAPIKey("key_12345678"); got != "****5678" {
		t.Fatalf("expected masked key, got %q", got)
	}
	if got := MaskAPIKey("abc"); got != "****abc" {
		t.Fatalf("expected short value fully masked, got %q", got)
	}
}

func TestMaskJSON(t *testing.T) {
	input := map[string]any{
		"password":   "hunter2pass",
		"id-token":   "abc12345",
		"page_count": 4,
		"nested": map[string]any{
			"api_key": "key_12345678",
		},
	}
	masked := MaskJSON(input)
	if masked["password"] != "****pass" {
		t.Fatalf("expected masked password, got %v", masked["password"])
	}
	if masked["id-token"] != "****2345" {
		t.Fatalf("expected masked token, got %v", masked["id-token"])
	}
	if masked["page_count"] != 4 {
		t.Fatalf("expected non-sensitive value untouched, got %v", masked["page_count"])
	}
	nested, ok := masked["nested"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested map")
	}
	if nested["api_key"] != "****5678" {
		t.Fatalf("expected masked api_key, got %v", nested["api_key"])
	}
}
