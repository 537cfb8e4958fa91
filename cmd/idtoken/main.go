// Command idtoken mints identity tokens for local development, standing in for the
// hosted identity provider's sign-in popup.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/config"
	"github.com/fastygo/taskboard/pkg/idtoken"
)

func main() {
	email := flag.String("email", "", "email asserted by the token")
	name := flag.String("name", "", "display name")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	signer, err := idtoken.NewHMAC(cfg.Identity.Secret, cfg.Identity.Issuer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v (set IDENTITY_SECRET)\n", err)
		os.Exit(1)
	}
	token, err := signer.Sign(domain.Identity{Email: *email, DisplayName: *name}, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
