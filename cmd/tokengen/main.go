package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/tendant/simple-authz/pkg/client"
)

// Mints an HS256 access token the authz service will accept, for local
// development and API poking.
func main() {
	secret := flag.String("secret", "your-secret-key", "Secret key for signing the token")
	issuer := flag.String("issuer", "simple-authz", "Issuer of the token")
	audience := flag.String("audience", "public", "Audience of the token")
	subject := flag.String("subject", "", "Subject of the token (user ID, a UUID)")
	expiry := flag.Duration("expiry", 30*time.Minute, "Token expiry duration (e.g., 30m, 1h, 24h)")
	extraClaimsJSON := flag.String("claims", "{}", "Extra claims in JSON format")
	flag.Parse()

	if *subject == "" {
		fmt.Fprintln(os.Stderr, "Error: -subject is required")
		os.Exit(1)
	}

	var extraClaims map[string]interface{}
	if err := json.Unmarshal([]byte(*extraClaimsJSON), &extraClaims); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to parse extra claims JSON: %v\n", err)
		os.Exit(1)
	}

	tokenGen := client.NewTokenGenerator(*secret, *issuer, *audience)
	tokenStr, expiryTime, err := tokenGen.GenerateToken(*subject, *expiry, extraClaims)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to generate token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(tokenStr)
	fmt.Fprintf(os.Stderr, "Expires: %s\n", expiryTime.Format(time.RFC3339))
}
