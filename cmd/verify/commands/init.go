package commands

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"go.trai.ch/verify/internal/adapters/config"
)

// exampleConfig seeds a new project with a representative verify.yaml,
// grounded on original_source/src/config.rs::generate_example_config.
const exampleConfig = `# verify configuration file
# Run ` + "`verify run`" + ` to execute all stale checks, or ` + "`verify status`" + ` to see check states

verifications:
  - name: build
    command: go build ./...
    cache_paths:
      - "**/*.go"
      - "go.mod"
      - "go.sum"

  - name: lint
    command: golangci-lint run
    cache_paths:
      - "**/*.go"
      - ".golangci.yml"

  - name: test
    command: go test ./...
    depends_on: [build]
    cache_paths:
      - "**/*.go"
`

const gitignorePattern = "**/.verify/"
const gitattributesPattern = "verify.lock merge=ours"

// newInitCmd implements the original_source-supplemented `verify init`:
// it scaffolds a new project's verify.yaml and idempotently appends the
// lock file's merge strategy and cache directory ignore pattern (spec.md
// §1 excludes init/clean/status command surfaces beyond the core's
// exit-code contract from the *engine*; this is orchestrator-layer
// scaffolding that never touches internal/core or internal/engine).
func (c *CLI) newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new project's verify.yaml and git metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			force, _ := cmd.Flags().GetBool("force")
			root := projectRoot(cmd)

			configPath := filepath.Join(root, config.Filename)
			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", configPath)
			}
			if err := os.WriteFile(configPath, []byte(exampleConfig), 0o644); err != nil {
				return fmt.Errorf("write config file: %w", err)
			}

			if err := appendIfAbsent(filepath.Join(root, ".gitignore"), gitignorePattern); err != nil {
				return err
			}
			if err := appendIfAbsent(filepath.Join(root, ".gitattributes"), gitattributesPattern); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", configPath)
			return nil
		},
	}
	cmd.Flags().Bool("force", false, "overwrite an existing verify.yaml")
	return cmd
}

// appendIfAbsent appends line to path, creating path if needed, unless a
// line already matches it exactly after trimming whitespace.
func appendIfAbsent(path, line string) error {
	if data, err := os.ReadFile(path); err == nil {
		scanner := bufio.NewScanner(strings.NewReader(string(data)))
		for scanner.Scan() {
			if strings.TrimSpace(scanner.Text()) == line {
				return nil
			}
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if info, statErr := f.Stat(); statErr == nil && info.Size() > 0 {
		if data, readErr := os.ReadFile(path); readErr == nil && len(data) > 0 && data[len(data)-1] != '\n' {
			if _, err := f.WriteString("\n"); err != nil {
				return err
			}
		}
	}
	_, err = f.WriteString(line + "\n")
	return err
}
