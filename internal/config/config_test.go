package config

import (
	"errors"
	"testing"
)

func envGetter(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestLoadMissingTableLBIsFatal(t *testing.T) {
	_, err := Load(envGetter(map[string]string{"table_sps": "1"}))
	if !errors.Is(err, ErrMissingTable) {
		t.Fatalf("expected ErrMissingTable, got %v", err)
	}
	var cerr *ConfigError
	if !errors.As(err, &cerr) || cerr.Key != "table_lb" {
		t.Fatalf("expected a ConfigError naming table_lb, got %v", err)
	}
}

func TestLoadMissingTableSPSIsFatal(t *testing.T) {
	_, err := Load(envGetter(map[string]string{"table_lb": "0"}))
	if !errors.Is(err, ErrMissingTable) {
		t.Fatalf("expected ErrMissingTable, got %v", err)
	}
	var cerr *ConfigError
	if !errors.As(err, &cerr) || cerr.Key != "table_sps" {
		t.Fatalf("expected a ConfigError naming table_sps, got %v", err)
	}
}

func TestLoadParsesInstancesOptional(t *testing.T) {
	cfg, err := Load(envGetter(map[string]string{"table_lb": "0", "table_sps": "1"}))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TableLB != 0 || cfg.TableSPS != 1 || cfg.Instances != "" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadFull(t *testing.T) {
	cfg, err := Load(envGetter(map[string]string{
		"table_lb": "0", "table_sps": "1",
		"instances": "10.0.0.100 02:00:00:00:00:64 10.0.0.1,10.0.0.2",
	}))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Instances == "" {
		t.Fatalf("expected instances to be populated")
	}
}
