// Command sdjwtutil is a thin CLI around pkg/sdjwt and pkg/sdjwtvc: decode a
// compact SD-JWT(-VC) without verifying it, or verify one against a JWK.
// Grounded on the teacher's cmd/*/main.go pattern of a thin main wiring
// pkg/logger and pkg/* business logic together; unlike the teacher's
// long-running servers, this binary runs one operation and exits, so it
// reaches for the standard library's flag package rather than a CLI
// framework (none of the example repos import one for a short-lived tool
// like this).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/eudiwallet/go-sdjwt/pkg/apperr"
	"github.com/eudiwallet/go-sdjwt/pkg/jwtbackend"
	"github.com/eudiwallet/go-sdjwt/pkg/logger"
	"github.com/eudiwallet/go-sdjwt/pkg/sdjwt"
	"github.com/eudiwallet/go-sdjwt/pkg/sdjwtvc"
)

func main() {
	log := logger.NewSimple("sdjwtutil")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "decode":
		err = runDecode(os.Args[2:])
	case "verify":
		err = runVerify(context.Background(), os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Info("command failed", "error", apperr.FromError(err))
		fmt.Fprintln(os.Stderr, apperr.FromError(err).Error())
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: sdjwtutil decode <compact-sd-jwt>")
	fmt.Fprintln(os.Stderr, "       sdjwtutil verify -jwk <path> [-kb] <compact-sd-jwt>")
}

type decodeOutput struct {
	Claims      map[string]any `json:"claims"`
	Disclosures int            `json:"disclosure_count"`
	HasKeyBinding bool          `json:"has_key_binding"`
}

func runDecode(args []string) error {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("sdjwtutil: decode takes exactly one argument")
	}

	parsed, err := sdjwt.ParseCompact(fs.Arg(0))
	if err != nil {
		return err
	}

	payload, err := sdjwtvc.DecodeUnverifiedJWTClaims(parsed.JWT)
	if err != nil {
		return err
	}

	disclosures := make([]*sdjwt.Disclosure, 0, len(parsed.Disclosures))
	for _, raw := range parsed.Disclosures {
		d, err := sdjwt.ParseDisclosure(raw)
		if err != nil {
			return err
		}
		disclosures = append(disclosures, d)
	}

	result, err := sdjwt.Recreate(payload, disclosures, false)
	if err != nil {
		return err
	}

	out := decodeOutput{
		Claims:        result.Claims,
		Disclosures:   len(parsed.Disclosures),
		HasKeyBinding: parsed.HasKeyBinding,
	}
	return printJSON(out)
}

func runVerify(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	jwkPath := fs.String("jwk", "", "path to the issuer's public JWK (JSON)")
	requireKeyBinding := fs.Bool("kb", false, "require and verify a key-binding JWT")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("sdjwtutil: verify takes exactly one argument")
	}
	if *jwkPath == "" {
		return fmt.Errorf("sdjwtutil: -jwk is required")
	}

	raw, err := os.ReadFile(*jwkPath)
	if err != nil {
		return err
	}
	var jwkMap map[string]any
	if err := json.Unmarshal(raw, &jwkMap); err != nil {
		return fmt.Errorf("sdjwtutil: parsing jwk file: %w", err)
	}

	pub, err := jwtbackend.PublicKeyFromJWK(jwkMap)
	if err != nil {
		return err
	}

	policy := sdjwt.KeyBindingOptional
	if *requireKeyBinding {
		policy = sdjwt.KeyBindingMustBePresent
	}

	result, err := sdjwt.Verify(ctx, fs.Arg(0), jwtbackend.NewVerifier(pub), jwtbackend.NewKeyBindingVerifier(), sdjwt.VerifyOptions{
		KeyBindingPolicy: policy,
	})
	if err != nil {
		return err
	}

	return printJSON(result.Recreated.Claims)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
