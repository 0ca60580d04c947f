package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/agentforge/agentforge/pkg/memory"
)

// getPreferencesTool returns everything the user has asked the assistant
// to remember.
type getPreferencesTool struct {
	store     *memory.Store
	authToken string
}

func (t *getPreferencesTool) Name() string { return "get_user_preferences" }

func (t *getPreferencesTool) Description() string {
	return "List the preferences the user has previously asked the assistant to remember."
}

func (t *getPreferencesTool) Parameters() map[string]any {
	return objectSchema(map[string]any{})
}

func (t *getPreferencesTool) Execute(_ context.Context, _ map[string]any) (string, error) {
	prefs, err := t.store.Preferences(t.authToken)
	if err != nil {
		return "", fmt.Errorf("preferences: %w", err)
	}
	if len(prefs) == 0 {
		return "No preferences saved.", nil
	}

	keys := make([]string, 0, len(prefs))
	for k := range prefs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("Saved preferences:\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %s\n", k, prefs[k])
	}
	return b.String(), nil
}

// savePreferenceTool records a key/value preference for the user.
type savePreferenceTool struct {
	store     *memory.Store
	authToken string
}

func (t *savePreferenceTool) Name() string { return "save_user_preference" }

func (t *savePreferenceTool) Description() string {
	return "Remember a preference for the user, e.g. preferred currency or reporting period."
}

func (t *savePreferenceTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"key":   stringProp("Short preference name, e.g. base_currency"),
		"value": stringProp("Preference value, e.g. EUR"),
	}, "key", "value")
}

func (t *savePreferenceTool) Execute(_ context.Context, args map[string]any) (string, error) {
	key := stringArg(args, "key", "")
	value := stringArg(args, "value", "")
	if key == "" || value == "" {
		return "", fmt.Errorf("key and value are required")
	}
	if err := t.store.SetPreference(t.authToken, key, value); err != nil {
		return "", fmt.Errorf("save preference: %w", err)
	}
	return fmt.Sprintf("Preference saved: %s = %s", key, value), nil
}

// deletePreferenceTool forgets a saved preference.
type deletePreferenceTool struct {
	store     *memory.Store
	authToken string
}

func (t *deletePreferenceTool) Name() string { return "delete_user_preference" }

func (t *deletePreferenceTool) Description() string {
	return "Forget a previously saved user preference."
}

func (t *deletePreferenceTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"key": stringProp("Name of the preference to forget"),
	}, "key")
}

func (t *deletePreferenceTool) Execute(_ context.Context, args map[string]any) (string, error) {
	key := stringArg(args, "key", "")
	if key == "" {
		return "", fmt.Errorf("key is required")
	}
	if err := t.store.DeletePreference(t.authToken, key); err != nil {
		return "", fmt.Errorf("delete preference: %w", err)
	}
	return fmt.Sprintf("Preference %s deleted.", key), nil
}
