package confloader

import (
	"testing"
)

func TestMapping_Settings(t *testing.T) {
	m := Mapping{
		DSNKey:           String(testDSN),
		"API_BIND_HOST":  String("127.0.0.1"),
		"API_BIND_PORT":  Int(9000),
		"UI_DIST_DIR":    String("/srv/ui"),
		"LOG_LEVEL":      String("debug"),
		"BLUEGREEN_SLOT": String("green"),
	}

	s, err := m.Settings()
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}

	want := Settings{
		DSN:           testDSN,
		APIBindHost:   "127.0.0.1",
		APIBindPort:   9000,
		UIDistDir:     "/srv/ui",
		LogLevel:      "debug",
		BlueGreenSlot: "green",
	}
	if s != want {
		t.Errorf("Settings() = %+v, want %+v", s, want)
	}
	if got := s.BindAddr(); got != "127.0.0.1:9000" {
		t.Errorf("BindAddr() = %q", got)
	}
}

func TestMapping_Settings_Defaults(t *testing.T) {
	s, err := Mapping{DSNKey: String(testDSN)}.Settings()
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}

	if s.APIBindHost != "0.0.0.0" {
		t.Errorf("APIBindHost = %q, want 0.0.0.0", s.APIBindHost)
	}
	if s.APIBindPort != 8000 {
		t.Errorf("APIBindPort = %d, want 8000", s.APIBindPort)
	}
	if s.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", s.LogLevel)
	}
	if s.BlueGreenSlot != "blue" {
		t.Errorf("BlueGreenSlot = %q, want blue", s.BlueGreenSlot)
	}
	if s.BindAddr() != "0.0.0.0:8000" {
		t.Errorf("BindAddr() = %q", s.BindAddr())
	}
}

func TestMapping_Settings_StringPort(t *testing.T) {
	s, err := Mapping{DSNKey: String(testDSN), "API_BIND_PORT": String("8123")}.Settings()
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}
	if s.APIBindPort != 8123 {
		t.Errorf("APIBindPort = %d, want 8123", s.APIBindPort)
	}
}

func TestMapping_Settings_Errors(t *testing.T) {
	tests := []struct {
		name string
		m    Mapping
	}{
		{"missing dsn", Mapping{}},
		{"bad port", Mapping{DSNKey: String(testDSN), "API_BIND_PORT": String("http")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.m.Settings(); err == nil {
				t.Error("Settings() expected error")
			}
		})
	}
}

func TestMapping_Settings_IgnoresProcessEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")

	s, err := Mapping{DSNKey: String(testDSN)}.Settings()
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}
	if s.LogLevel != "info" {
		t.Errorf("LogLevel = %q, process environment leaked in", s.LogLevel)
	}
}
