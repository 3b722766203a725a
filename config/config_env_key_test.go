package config

import "testing"

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"autosave": map[string]any{
			"bulkDebounce": "15s",
			"maxRetries":   5,
		},
		"handleStore": map[string]any{
			"path": "",
		},
		"secretKey": map[string]any{
			"session": "",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "AUTOSAVE_BULKDEBOUNCE", want: "autosave.bulkDebounce"},
		{envKey: "AUTOSAVE_MAXRETRIES", want: "autosave.maxRetries"},
		{envKey: "HANDLESTORE_PATH", want: "handleStore.path"},
		{envKey: "SECRETKEY_SESSION", want: "secretKey.session"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}
