package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"nodepulse/models"
	"nodepulse/services"
)

// Demo agent: runs the reporter against a collector and feeds it
// synthetic telemetry. Usage: go run scripts/agent.go -url http://127.0.0.1:8080/rpc
func main() {
	url := flag.String("url", "http://127.0.0.1:8080/rpc", "collector JSON-RPC endpoint")
	interval := flag.Uint("interval", 5, "report interval in seconds")
	flag.Parse()

	if level, err := log.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	} else {
		log.SetLevel(log.DebugLevel)
	}

	store := services.NewStatusStore()
	reporter := services.NewReporter(store, *url, *interval)
	reporter.Start()
	defer reporter.Stop()

	fmt.Println("=== nodepulse demo agent ===")
	fmt.Printf("Collector: %s, interval: %ds\n", *url, *interval)

	start := time.Now()
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for i := 0; ; i++ {
		<-ticker.C

		// Leave the identity empty for the first few seconds so the
		// readiness-gate skip is visible in the logs.
		if i == 3 {
			deviceID := fmt.Sprintf("0x%032x", rand.Uint64())
			store.SetIdentity(deviceID, "demo-owner", fmt.Sprintf("12D3Koo%08x", rand.Uint32()))
			store.SetDeviceVersion("1.2.0")
			log.Printf("identity set: %s", deviceID)
		}

		store.SetPeersCount(uint32(rand.Intn(50)))
		store.SetBestBlockNumber(uint64(1_000_000 + i*3))
		store.SetFinalizedBlockNumber(uint64(1_000_000 + i*3 - 2))
		store.SetUptime(int64(time.Since(start).Seconds()))
		store.AddUpload(uint64(rand.Intn(4096)))
		store.AddDownload(uint64(rand.Intn(16384)))

		if i%10 == 0 {
			store.SetMonitorSyncStatus(1, []models.SyncChain{
				{ChainID: 0, Height: uint64(1_000_000 + i*3)},
				{ChainID: 2, Height: uint64(900_000 + i*2)},
			})
		}
	}
}
