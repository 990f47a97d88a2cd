// Package main provides a CLI tool for turning at-rest encryption of the
// fingenius data directory on or off.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"fingenius/internal/config"
	"fingenius/internal/logger"
	"fingenius/internal/services/storage"
)

func main() {
	disable := flag.Bool("disable", false, "Decrypt the data directory instead of encrypting it")
	status := flag.Bool("status", false, "Print whether the data directory is encrypted and exit")
	dataDir := flag.String("data", "", "Data directory (defaults to the configured one)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}
	logger.SetGlobal(logger.New(logger.Options{Level: cfg.LogLevel, Pretty: true}))

	dir := cfg.DataDirectory
	if *dataDir != "" {
		dir = *dataDir
	}

	s, err := storage.New(dir)
	if err != nil {
		fail(err)
	}

	if *status {
		if s.IsEncrypted() {
			fmt.Printf("%s is encrypted\n", dir)
		} else {
			fmt.Printf("%s is not encrypted\n", dir)
		}
		return
	}

	if *disable {
		if !s.IsEncrypted() {
			fail(errors.New("encryption is not enabled"))
		}
		password, err := readPassword("Current password: ")
		if err != nil {
			fail(err)
		}
		if err := s.DisableEncryption(password); err != nil {
			fail(err)
		}
		fmt.Printf("Decrypted %s\n", dir)
		return
	}

	password, err := readPassword("New password: ")
	if err != nil {
		fail(err)
	}
	if len(password) < storage.MinPasswordLength {
		fail(fmt.Errorf("password must be at least %d characters", storage.MinPasswordLength))
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fail(err)
	}
	if password != confirm {
		fail(errors.New("passwords do not match"))
	}

	if err := s.EnableEncryption(password); err != nil {
		fail(err)
	}
	fmt.Printf("Encrypted %s\n", dir)
	fmt.Println("Set FINGENIUS_PASSWORD when starting the server to unlock it.")
}

// readPassword prompts without echo on a terminal and reads a plain line
// otherwise, so the tool also works with piped input
func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var stdin = bufio.NewReader(os.Stdin)

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
