package command

import (
	"context"
	"strings"
	"testing"
)

func TestCheck_Valid(t *testing.T) {
	dir := writeConfigDir(t, "SYSTEM_VALIDATOR_DSN="+testDSN+"\n", "API_BIND_PORT: 8000\n")

	run := runApp(context.Background(), "--dir", dir, "check")
	if run.err != nil {
		t.Fatalf("check error = %v", run.err)
	}

	out := run.stdout.String()
	for _, want := range []string{"✓ configuration is valid", "db.internal:5432", "database: app", "user:     svc"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "s3cret") {
		t.Errorf("output leaks the password:\n%s", out)
	}
}

func TestCheck_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		env, doc string
		wantCode int
	}{
		{"validation", "SYSTEM_VALIDATOR_DSN=postgres://h/db\n", "", ExitValidation},
		{"parse", "SYSTEM_VALIDATOR_DSN=" + testDSN + "\n", "k: \"unterminated\n", ExitParse},
		{"yaml overrides with null", "SYSTEM_VALIDATOR_DSN=" + testDSN + "\n", "SYSTEM_VALIDATOR_DSN: null\n", ExitValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeConfigDir(t, tt.env, tt.doc)

			run := runApp(context.Background(), "--dir", dir, "check")
			if got := exitCode(run.err); got != tt.wantCode {
				t.Errorf("exit code = %d, want %d (err %v)", got, tt.wantCode, run.err)
			}
			if strings.Contains(run.stdout.String(), "✓") {
				t.Errorf("failed check printed success:\n%s", run.stdout.String())
			}
		})
	}
}

func TestCheck_PrefixOnlyDSN(t *testing.T) {
	// Both pass the prefix check, but pgx cannot parse them.
	tests := []struct {
		name string
		dsn  string
	}{
		{"bare prefix", "postgresql"},
		{"bad port", "postgresql://h:notaport/db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeConfigDir(t, "SYSTEM_VALIDATOR_DSN="+tt.dsn+"\n", "")

			run := runApp(context.Background(), "--dir", dir, "check")
			if run.err != nil {
				t.Fatalf("check error = %v", run.err)
			}
			if !strings.Contains(run.stdout.String(), "✓ configuration is valid") {
				t.Errorf("stdout = %q", run.stdout.String())
			}
			if !strings.Contains(run.stderr.String(), "warning: SYSTEM_VALIDATOR_DSN is not a usable connection string") {
				t.Errorf("stderr = %q", run.stderr.String())
			}

			run = runApp(context.Background(), "--dir", dir, "check", "--ping")
			if got := exitCode(run.err); got != ExitError {
				t.Errorf("check --ping exit code = %d, want %d (err %v)", got, ExitError, run.err)
			}
		})
	}
}

func TestCheck_PingUnreachable(t *testing.T) {
	dir := writeConfigDir(t, "SYSTEM_VALIDATOR_DSN=postgresql://svc:pw@127.0.0.1:1/app?sslmode=disable\n", "")

	run := runApp(context.Background(), "--dir", dir, "check", "--ping", "--timeout", "2s")
	if got := exitCode(run.err); got != ExitError {
		t.Fatalf("exit code = %d, want %d (err %v)", got, ExitError, run.err)
	}
	if !strings.Contains(run.stderr.String(), "database unreachable") {
		t.Errorf("stderr = %q", run.stderr.String())
	}
	if strings.Contains(run.err.Error(), ":pw@") {
		t.Errorf("ping error leaks the password: %v", run.err)
	}
}
