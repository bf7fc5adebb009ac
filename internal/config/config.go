// Package config loads the two module-init configuration keys: the
// T_lb/T_sps flow table ids and the VIP instance registry grammar (parsed
// by internal/lb). Uses hand-rolled, field-splitting parsing rather than a
// generic config-file library: these are two compact scalar keys, not a
// document format.
package config

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrMissingTable is the sentinel a ConfigError from Load wraps when a
// table id is absent or unparseable. Together with equal table ids
// (pipeline.ErrTablesEqual) this is one of the only fatal conditions in
// the whole core: module init reports failure and the controller refuses
// to start this module.
var ErrMissingTable = errors.New("config: table id required for both lb and sps")

// A ConfigError reports which configuration key failed to load and why.
// It wraps ErrMissingTable so callers can still match on the sentinel with
// errors.Is.
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: key %q: %s", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Config is the parsed module-init configuration.
type Config struct {
	TableLB   uint8
	TableSPS  uint8
	Instances string
}

// Load parses the table_lb, table_sps and instances keys out of a
// key/value getter (typically backed by environment variables or a
// process supervisor's config map). table_lb and table_sps must both be
// present and parse as a byte; instances may be empty (no VIPs
// configured).
func Load(get func(key string) (string, bool)) (Config, error) {
	lbRaw, ok := get("table_lb")
	if !ok {
		return Config{}, &ConfigError{Key: "table_lb", Err: ErrMissingTable}
	}
	spsRaw, ok := get("table_sps")
	if !ok {
		return Config{}, &ConfigError{Key: "table_sps", Err: ErrMissingTable}
	}

	lb, err := strconv.ParseUint(lbRaw, 10, 8)
	if err != nil {
		return Config{}, &ConfigError{Key: "table_lb", Err: ErrMissingTable}
	}
	sps, err := strconv.ParseUint(spsRaw, 10, 8)
	if err != nil {
		return Config{}, &ConfigError{Key: "table_sps", Err: ErrMissingTable}
	}

	instances, _ := get("instances")

	return Config{TableLB: uint8(lb), TableSPS: uint8(sps), Instances: instances}, nil
}
