// cmd/verify is a standalone CLI wrapping internal/verify.Verify for
// offline or third-party audit, reading a verify.Request as JSON from
// stdin. Grounded on the pack's zeroplay-io-backgammon_provably_fair
// cmd/verifier: read stdin, verify, exit 1 on failure.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/paddla/game-core/internal/verify"
)

func main() {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to read stdin:", err)
		os.Exit(1)
	}

	var req verify.Request
	if err := json.Unmarshal(data, &req); err != nil {
		fmt.Fprintln(os.Stderr, "invalid request JSON:", err)
		os.Exit(1)
	}

	result := verify.Verify(req)
	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))

	if !result.Valid {
		os.Exit(1)
	}
}
