package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/AgimDur/produu/internal/api/middleware"
)

func main() {
	keyFlag := flag.String("key", "", "Admin API key to hash")
	flag.Parse()

	key := strings.TrimSpace(*keyFlag)
	if key == "" && flag.NArg() >= 1 {
		key = strings.TrimSpace(flag.Arg(0))
	}
	if key == "" {
		fmt.Println("Usage:")
		fmt.Println("  go run cmd/hash-admin-key/main.go --key \"your-admin-key\"")
		fmt.Println("Put the output into ADMIN_API_KEY_HASH.")
		os.Exit(1)
	}

	hash, err := middleware.HashAPIKey(key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash key: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
