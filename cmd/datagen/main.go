package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/vanshika/profilegraph/internal/generator"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		profiles        = flag.Int("profiles", cfg.NumProfiles, "number of profiles to generate")
		friends         = flag.Int("friends", cfg.FriendsPerProfile, "friends sampled per profile")
		availableChance = flag.Float64("available-chance", cfg.AvailableChance, "probability a profile is marked available")
		seed            = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		outputDir       = flag.String("output-dir", "data", "directory to write profiles.json and friendships.json")
		writeStdout     = flag.Bool("stdout", false, "write combined dataset to stdout instead of files")
	)
	flag.Parse()

	genCfg := generator.Config{
		NumProfiles:       *profiles,
		FriendsPerProfile: *friends,
		AvailableChance:   clampProbability(*availableChance),
		Seed:              *seed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dataset, err := generator.New(genCfg).Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *writeStdout {
		if err := json.NewEncoder(os.Stdout).Encode(dataset); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write dataset to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := generator.WriteDataset(dataset, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated %d profiles and %d friendships into %s\n", len(dataset.Profiles), len(dataset.Friendships), *outputDir)
}

func clampProbability(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
