package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"pecron-mqtt-bridge/pkg/config"
	"pecron-mqtt-bridge/pkg/setup"
)

// Checks every account in the configuration against the Pecron cloud:
// logs in, lists devices, logs out. Exit code 0 only when all accounts
// validate and have at least one device.
func main() {
	configPath := "config.yaml"
	if len(os.Args) > 1 {
		if os.Args[1] == "--help" || os.Args[1] == "-h" {
			fmt.Printf("Usage: %s [config_path]\n", os.Args[0])
			return
		}
		configPath = os.Args[1]
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Configuration error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	failed := 0
	for _, account := range cfg.Accounts {
		settings := config.NewAccountSettings(account)
		result, err := setup.ValidateCredentials(ctx, nil, settings.Email, settings.Password, settings.Region)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ %s (%s): %v\n", settings.Email, settings.Region, err)
			failed++
			continue
		}
		fmt.Printf("✅ %s (%s): %d device(s)\n", result.Account, result.Region, len(result.Devices))
		for _, device := range result.Devices {
			fmt.Printf("   - %s (%s, firmware %s)\n", device.DeviceName, device.ProductName, device.FirmwareVersion)
		}
	}

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "❌ %d account(s) failed validation\n", failed)
		os.Exit(1)
	}
	fmt.Println("✅ All accounts validated")
}
