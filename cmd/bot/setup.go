package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// setupPrompt is one value the setup wizard asks for
type setupPrompt struct {
	key      string
	question string
	required bool
}

var setupPrompts = []setupPrompt{
	{"DATABASE_URL", "PostgreSQL URL (postgres://user@host:5432/db)", true},
	{"DATABASE_KEY", "Database password (leave empty if the URL has one)", false},
	{"GROQ_API_KEY", "Groq API key", true},
}

var gitignoreEntries = []string{".env", "auth_info/"}

func setupCmd() *cobra.Command {
	var envPath, gitignorePath string

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Write a .env file with the database and LLM credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			existing, err := readEnv(envPath)
			if err != nil {
				return err
			}

			values, err := askSetup(cmd.InOrStdin(), cmd.OutOrStdout(), existing)
			if err != nil {
				return err
			}
			if err := godotenv.Write(values, envPath); err != nil {
				return fmt.Errorf("failed to write %s: %w", envPath, err)
			}
			if err := os.Chmod(envPath, 0o600); err != nil {
				return fmt.Errorf("failed to restrict %s: %w", envPath, err)
			}

			added, err := ensureGitignore(gitignorePath, gitignoreEntries)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %s\n", envPath)
			if len(added) > 0 {
				fmt.Fprintf(out, "Added %s to %s\n", strings.Join(added, ", "), gitignorePath)
			}
			fmt.Fprintln(out, "Next: run `migrate up`, then `bot run` and scan the QR code.")
			return nil
		},
	}
	cmd.Flags().StringVar(&envPath, "env-file", ".env", "file to write")
	cmd.Flags().StringVar(&gitignorePath, "gitignore", ".gitignore", "gitignore to update")
	return cmd
}

func readEnv(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return values, nil
}

// askSetup prompts for each setup value. An empty answer keeps the existing
// value. Keys not asked about are carried over unchanged.
func askSetup(in io.Reader, out io.Writer, existing map[string]string) (map[string]string, error) {
	values := make(map[string]string, len(existing)+len(setupPrompts))
	for k, v := range existing {
		values[k] = v
	}

	scanner := bufio.NewScanner(in)
	for _, p := range setupPrompts {
		current := values[p.key]
		if current != "" {
			fmt.Fprintf(out, "%s [keep current]: ", p.question)
		} else {
			fmt.Fprintf(out, "%s: ", p.question)
		}

		answer := ""
		if scanner.Scan() {
			answer = strings.TrimSpace(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}

		switch {
		case answer != "":
			values[p.key] = answer
		case current == "" && p.required:
			return nil, fmt.Errorf("%s is required", p.key)
		}
	}

	if v := values["DATABASE_URL"]; !strings.HasPrefix(v, "postgres://") && !strings.HasPrefix(v, "postgresql://") {
		return nil, fmt.Errorf("DATABASE_URL must be a postgres:// URL")
	}
	return values, nil
}

// ensureGitignore appends entries missing from path and returns those added
func ensureGitignore(path string, entries []string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	present := make(map[string]bool)
	for _, line := range strings.Split(string(content), "\n") {
		present[strings.TrimSpace(line)] = true
	}

	var added []string
	for _, e := range entries {
		if !present[e] {
			added = append(added, e)
		}
	}
	if len(added) == 0 {
		return nil, nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var b strings.Builder
	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		b.WriteString("\n")
	}
	for _, e := range added {
		b.WriteString(e + "\n")
	}
	if _, err := f.WriteString(b.String()); err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", path, err)
	}
	return added, nil
}
