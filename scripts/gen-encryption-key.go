package main

import (
	"fmt"
	"os"

	"github.com/therapyassist/dashboard-go/internal/util"
)

// Prints a fresh ENCRYPTION_KEY for the credential store.
func main() {
	key, err := util.GenerateToken()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("ENCRYPTION_KEY=%s\n", key)
}
