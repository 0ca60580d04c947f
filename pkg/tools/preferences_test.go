package tools

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agentforge/agentforge/pkg/memory"
)

func newPrefTools(t *testing.T) (*getPreferencesTool, *savePreferenceTool, *deletePreferenceTool) {
	t.Helper()
	store, err := memory.NewStore(filepath.Join(t.TempDir(), "memory.db"), 0)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	const token = "test-token"
	return &getPreferencesTool{store: store, authToken: token},
		&savePreferenceTool{store: store, authToken: token},
		&deletePreferenceTool{store: store, authToken: token}
}

func TestPreferenceToolsRoundTrip(t *testing.T) {
	get, save, del := newPrefTools(t)
	ctx := context.Background()

	out, err := get.Execute(ctx, nil)
	if err != nil {
		t.Fatalf("get error = %v", err)
	}
	if !strings.Contains(out, "No preferences saved") {
		t.Errorf("empty store output = %q", out)
	}

	if _, err := save.Execute(ctx, map[string]any{"key": "base_currency", "value": "EUR"}); err != nil {
		t.Fatalf("save error = %v", err)
	}
	if _, err := save.Execute(ctx, map[string]any{"key": "reporting_period", "value": "ytd"}); err != nil {
		t.Fatalf("save error = %v", err)
	}

	out, err = get.Execute(ctx, nil)
	if err != nil {
		t.Fatalf("get error = %v", err)
	}
	if !strings.Contains(out, "base_currency: EUR") || !strings.Contains(out, "reporting_period: ytd") {
		t.Errorf("output = %q, want both preferences listed", out)
	}

	if _, err := del.Execute(ctx, map[string]any{"key": "base_currency"}); err != nil {
		t.Fatalf("delete error = %v", err)
	}
	out, _ = get.Execute(ctx, nil)
	if strings.Contains(out, "base_currency") {
		t.Errorf("deleted preference still listed: %q", out)
	}
}

func TestSavePreferenceRequiresArgs(t *testing.T) {
	_, save, del := newPrefTools(t)
	ctx := context.Background()

	if _, err := save.Execute(ctx, map[string]any{"key": "only_key"}); err == nil {
		t.Error("save without value should fail")
	}
	if _, err := del.Execute(ctx, map[string]any{}); err == nil {
		t.Error("delete without key should fail")
	}
}
