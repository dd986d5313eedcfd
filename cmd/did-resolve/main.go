// did-resolve is a small demonstration CLI: it resolves the first sample
// DID with a local client, then every sample DID with a second client that
// runs against a resolver server if -network-address is given and locally
// otherwise, printing each resolved document.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/affinidi/did-cache-go/internal/resolver"
)

var sampleDIDs = []string{
	"did:key:z6MkiToqovww7vYtxm1xNM15u9JzqzUFZ1k7s7MazYJUyAxv",
	"did:web:affinidi.com",
	"did:ethr:0x1:0xb9c5714089478a327f09197987f16f9e5d936e8a",
	"did:pkh:solana:4sGjMW1sUnHzSxGspuhpqLDx6wiyjNtZ:CKg5d12Jhpej1JqtmxLJgaFqqeYjxgPqToJ4LBdvG9Ev",
}

func main() {
	networkAddress := flag.String("network-address", "", "resolver server address, e.g. ws://127.0.0.1:8787/did/v1/ws")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctx := context.Background()

	fmt.Println()
	fmt.Println(" ****************************** ")
	fmt.Println(" *  Local Resolver Example    * ")
	fmt.Println(" ****************************** ")
	fmt.Println()

	localCfg := resolver.DefaultConfig()
	if err := resolveAndPrint(ctx, localCfg, logger, sampleDIDs[0]); err != nil {
		fmt.Printf("Error: %v\n", err)
	}

	fmt.Println()
	fmt.Println(" ****************************** ")
	fmt.Println(" *  Network Resolver Example  * ")
	fmt.Println(" ****************************** ")
	fmt.Println()

	networkCfg := resolver.DefaultConfig()
	networkCfg.CacheTTLSeconds = 60
	networkCfg.NetworkTimeoutMS = 20_000
	if *networkAddress != "" {
		fmt.Printf("Running in network mode with address: %s\n", *networkAddress)
		networkCfg.ServiceAddress = *networkAddress
	} else {
		fmt.Println("Running in local mode.")
	}

	client, err := resolver.New(ctx, networkCfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build client: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	for _, did := range sampleDIDs {
		fmt.Println()
		fmt.Printf(" *  %s\n", did)
		fmt.Println()
		resolveOne(ctx, client, did)
	}
}

func resolveAndPrint(ctx context.Context, cfg resolver.Config, logger *slog.Logger, did string) error {
	client, err := resolver.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer client.Close()
	resolveOne(ctx, client, did)
	return nil
}

func resolveOne(ctx context.Context, client *resolver.Client, did string) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp, err := client.Resolve(ctx, did)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	pretty, err := json.MarshalIndent(json.RawMessage(resp.Document.Raw), "", "  ")
	if err != nil {
		fmt.Printf("Resolved DID (%s) did_hash(%s), but failed to format document: %v\n", resp.DID, resp.DIDHash, err)
		return
	}
	fmt.Printf("Resolved DID (%s) did_hash(%s) cache_hit(%v) Document:\n%s\n", resp.DID, resp.DIDHash, resp.CacheHit, pretty)
}
