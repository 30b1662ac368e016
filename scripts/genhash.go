// genhash prints credential digests for seeding accounts by hand.
//
//	go run ./scripts -cost 10 secret-one secret-two
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"job-portal-backend/pkg/password"
)

func main() {
	cost := flag.Int("cost", 10, "bcrypt cost")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: genhash [-cost n] password...")
		os.Exit(2)
	}

	hasher, err := password.NewBcrypt(password.Config{Cost: *cost, MaxConcurrent: 1})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	for _, plaintext := range flag.Args() {
		digest, err := hasher.Hash(context.Background(), plaintext)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			continue
		}
		fmt.Println(digest)
	}
}
