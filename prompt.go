package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/gigurra/billview/internal"
	"golang.org/x/term"
)

// askPassphrase reads a passphrase from the environment or, failing that, the
// terminal without echo. confirm asks twice, for new encryptions.
func askPassphrase(confirm bool) (string, error) {
	if v := os.Getenv(internal.EnvPassphrase); v != "" {
		return v, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("stdin is not a terminal; set %s to supply the passphrase", internal.EnvPassphrase)
	}

	pass, err := readPassword(fd, "Passphrase: ")
	if err != nil {
		return "", err
	}
	if pass == "" {
		return "", errors.New("empty passphrase")
	}
	if confirm {
		again, err := readPassword(fd, "Repeat passphrase: ")
		if err != nil {
			return "", err
		}
		if again != pass {
			return "", errors.New("passphrases do not match")
		}
	}
	return pass, nil
}

func readPassword(fd int, prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(b), nil
}
