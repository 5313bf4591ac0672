// Package main prints a bcrypt hash for a user entry of the auth.users configuration.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/abgdnv/stockguard/internal/auth"
	"golang.org/x/term"
)

func main() {
	user := flag.String("user", "admin", "user name the hash is printed for")
	flag.Parse()

	password, err := readPassword()
	if err != nil {
		log.Fatalf("stockguard-passwd: %v", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("stockguard-passwd: %v", err)
	}

	fmt.Printf("auth:\n  users:\n    %s: %q\n", *user, hash)
	// single quotes keep godotenv from expanding the $ signs of the hash
	fmt.Fprintf(os.Stderr, "or in .env: STOCKGUARD_AUTH_USERS_%s='%s'\n", strings.ToUpper(*user), hash)
}

// readPassword asks twice on a terminal and reads one line from piped input otherwise.
func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Fprint(os.Stderr, "Repeat password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(first), nil
}
