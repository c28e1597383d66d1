package dotenv

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseLine(t *testing.T) {
	cases := []struct {
		line string
		key  string
		val  string
		ok   bool
	}{
		{"FOO=bar", "FOO", "bar", true},
		{"  FOO = bar  ", "FOO", "bar", true},
		{`FOO="quoted value"`, "FOO", "quoted value", true},
		{"FOO='single'", "FOO", "single", true},
		{"export FOO=bar", "FOO", "bar", true},
		{"FOO=", "FOO", "", true},
		{"# comment", "", "", false},
		{"", "", "", false},
		{"=nokey", "", "", false},
		{"no equals sign", "", "", false},
	}
	for _, tc := range cases {
		key, val, ok := parseLine(tc.line)
		if key != tc.key || val != tc.val || ok != tc.ok {
			t.Errorf("parseLine(%q) = (%q, %q, %v), want (%q, %q, %v)", tc.line, key, val, ok, tc.key, tc.val, tc.ok)
		}
	}
}

func TestLoadPreservesExistingEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "DOTENV_TEST_NEW=from_file\nDOTENV_TEST_EXISTING=from_file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("DOTENV_TEST_EXISTING", "from_env")
	os.Unsetenv("DOTENV_TEST_NEW")
	defer os.Unsetenv("DOTENV_TEST_NEW")

	if err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := os.Getenv("DOTENV_TEST_NEW"); got != "from_file" {
		t.Errorf("DOTENV_TEST_NEW = %q, want from_file", got)
	}
	if got := os.Getenv("DOTENV_TEST_EXISTING"); got != "from_env" {
		t.Errorf("DOTENV_TEST_EXISTING = %q, want from_env", got)
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	if err := Load(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Errorf("Load on missing file = %v, want nil", err)
	}
}
