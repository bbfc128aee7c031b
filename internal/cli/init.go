package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"goodcheck/internal/config"
)

const initTemplate = `rules:
  - id: com.example.1
    pattern: Github
    message: Do you want to write GitHub?
    glob:
      - "**/*.rb"
      - "**/*.yaml"
      - "**/*.yml"
      - "**/*.html"
    fail:
      - Signup via Github
    pass:
      - Signup via GitHub
`

func newInitCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a starter goodcheck.yml",
		Long: `Write a starter goodcheck.yml with one example rule to the working directory.

An existing goodcheck.yml is never overwritten.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfg.ConfigPath()
			created, err := writeStarterConfig(path)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s to the current directory\n", path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists in the current directory; left unchanged\n", path)
			}
			return nil
		},
	}
}

// writeStarterConfig creates path with the starter rules. It reports false,
// without touching the file, when path already exists.
func writeStarterConfig(path string) (bool, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := f.WriteString(initTemplate); err != nil {
		_ = f.Close()
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("close %s: %w", path, err)
	}
	return true, nil
}
