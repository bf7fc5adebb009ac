// Command sdncore is the module's standalone entry point: it loads the
// table_lb/table_sps/instances configuration, fails fast on a missing or
// unparseable table id or on equal table ids (the only fatal conditions
// in the core), and assembles the
// dispatcher. The switch and device services it wires here are
// placeholders — in a real deployment the host framework supplies its own
// ofsvc.SwitchService/ofsvc.DeviceService implementations and calls
// internal/app.New directly instead of going through this binary.
package main

import (
	"log"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ovn-sdncore/sdncore/internal/app"
	"github.com/ovn-sdncore/sdncore/internal/config"
)

func main() {
	ll := log.New(os.Stderr, "sdncore: ", log.LstdFlags)

	cfg, err := config.Load(func(key string) (string, bool) { return os.LookupEnv("SDNCORE_" + key) })
	if err != nil {
		ll.Fatalf("module init: %v", err)
	}

	_, err = app.New(cfg, noopServices{}, noopServices{}, nil, prometheus.DefaultRegisterer, ll)
	if err != nil {
		ll.Fatalf("module init: %v", err)
	}

	ll.Printf("core assembled: table_lb=%d table_sps=%d", cfg.TableLB, cfg.TableSPS)
}
