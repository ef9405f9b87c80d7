package types

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Backend: "", DataDir: "/tmp/data"},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Backend: "postgres", DataDir: "/tmp/data"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:    "valid sqlite config",
			config:  Config{Backend: BackendSQLite, DataDir: "/tmp/data"},
			wantErr: nil,
		},
		{
			name:    "memory backend needs no data dir",
			config:  Config{Backend: BackendMemory},
			wantErr: nil,
		},
		{
			name:    "remote without url is rejected",
			config:  Config{Backend: BackendRemote},
			wantErr: ErrRemoteURLEmpty,
		},
		{
			name:    "remote with url is valid",
			config:  Config{Backend: BackendRemote, RemoteURL: "http://localhost:8420"},
			wantErr: nil,
		},
		{
			name:    "unknown key encoding",
			config:  Config{Backend: BackendMemory, KeyEncoding: "base64"},
			wantErr: ErrKeyEncodingUnknown,
		},
		{
			name:    "percent key encoding",
			config:  Config{Backend: BackendMemory, KeyEncoding: KeyEncodingPercent},
			wantErr: nil,
		},
		{
			name:    "firm with path separator",
			config:  Config{Backend: BackendSQLite, Firm: "../etc"},
			wantErr: ErrFirmInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.FirmName() != DefaultFirm {
		t.Errorf("FirmName() = %q, want %q", cfg.FirmName(), DefaultFirm)
	}
	if (Config{}).FirmName() != DefaultFirm {
		t.Errorf("empty firm should fall back to %q", DefaultFirm)
	}
}
