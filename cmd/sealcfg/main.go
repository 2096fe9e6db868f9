// sealcfg seals and unseals the dashboard configuration file. The sealed
// form is what gets distributed; the plaintext YAML only ever exists on the
// machine of whoever runs this tool.
//
//	sealcfg --in config.yaml --out config.yaml.age
//	sealcfg --decrypt --in config.yaml.age --out config.yaml
//
// The passphrase comes from RTBOARD_PASSPHRASE when set, otherwise from an
// interactive prompt.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/odhsupport/rtboard/pkg/sealed"
)

func main() {
	var (
		decrypt bool
		inPath  string
		outPath string
	)
	pflag.BoolVar(&decrypt, "decrypt", false, "unseal instead of seal")
	pflag.StringVar(&inPath, "in", "", "input file")
	pflag.StringVar(&outPath, "out", "", "output file")
	pflag.Parse()

	if inPath == "" || outPath == "" {
		pflag.Usage()
		os.Exit(2)
	}

	if err := run(decrypt, inPath, outPath); err != nil {
		fmt.Fprintln(os.Stderr, "sealcfg:", err)
		os.Exit(1)
	}
}

func run(decrypt bool, inPath, outPath string) error {
	input, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}

	passphrase, err := readPassphrase(!decrypt)
	if err != nil {
		return err
	}

	var output []byte
	if decrypt {
		output, err = sealed.Open(input, passphrase)
	} else {
		output, err = sealed.Seal(input, passphrase)
	}
	if err != nil {
		return err
	}

	// Plaintext config carries the RT secret; keep it owner-only.
	if err := os.WriteFile(outPath, output, 0o600); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}

// readPassphrase takes the passphrase from the environment or prompts for
// it on the terminal without echo. Sealing prompts twice to catch typos.
func readPassphrase(confirm bool) (string, error) {
	if env := os.Getenv("RTBOARD_PASSPHRASE"); env != "" {
		return env, nil
	}

	fmt.Fprint(os.Stderr, "Passphrase: ")
	first, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	if len(first) == 0 {
		return "", fmt.Errorf("passphrase must not be empty")
	}
	if !confirm {
		return string(first), nil
	}

	fmt.Fprint(os.Stderr, "Confirm passphrase: ")
	second, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	if string(first) != string(second) {
		return "", fmt.Errorf("passphrases do not match")
	}
	return string(first), nil
}
