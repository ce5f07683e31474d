package logger

import "testing"

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	kv := sanitizeKVs([]any{
		"refresh_token", "abc",
		"password", "hunter2",
		"client_email", "a@b.co",
		"path", "/api/clients",
	})
	want := map[string]any{
		"refresh_token": "[REDACTED]",
		"password":      "[REDACTED]",
		"client_email":  "[REDACTED]",
		"path":          "/api/clients",
	}
	for i := 0; i < len(kv); i += 2 {
		key := kv[i].(string)
		if kv[i+1] != want[key] {
			t.Fatalf("%s: got %v want %v", key, kv[i+1], want[key])
		}
	}
}

func TestSanitizeKVsHashesUserIDs(t *testing.T) {
	kv := sanitizeKVs([]any{"user_id", "6f1c0c5e-1111-2222-3333-444455556666"})
	got, _ := kv[1].(string)
	if len(got) != len("hash:")+12 || got[:5] != "hash:" {
		t.Fatalf("unexpected hashed value %q", got)
	}
}

func TestSanitizeKVsRedactsJWTLookingValues(t *testing.T) {
	jwt := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.signature"
	kv := sanitizeKVs([]any{"header", jwt})
	if kv[1] != "[REDACTED]" {
		t.Fatalf("expected jwt-like value to be redacted, got %v", kv[1])
	}
}

func TestSanitizeKVsOddLength(t *testing.T) {
	kv := sanitizeKVs([]any{"path", "/x", "dangling"})
	if len(kv) != 3 || kv[2] != "dangling" {
		t.Fatalf("unexpected output: %v", kv)
	}
}
