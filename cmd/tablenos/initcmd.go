package main

import (
	"context"
	"fmt"
	"os"

	"github.com/samber/oops"
	"github.com/urfave/cli/v3"
)

const starterConfig = `# tablenos configuration.
# Settings here can be overridden per document with tablenos-* metadata.

# Clever references: spell out the caption name in front of reference
# numbers ("table 1" instead of "1").
cleveref-default = false

# Capitalize the name clever references use ("Table 1").
capitalise = false

# Caption prefix name and the separator between number and caption
# text. Separators: none, colon, period, space, quad, newline.
caption-name = "Table"
caption-separator = "colon"

# Names used by + and * references, as [singular, plural].
# plus-name = ["table", "tables"]
# star-name = ["Table", "Tables"]

# Restart numbering at every top-level heading, as "section.number".
number-by-section = false
# section-number-offset = 0

# 0 = silent, 1 = warnings, 2 = warnings and info.
warning-level = 2
`

func newInitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Create a starter tablenos.toml in the current directory",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing config file",
			},
		},
		Action: initAction,
	}
}

func initAction(_ context.Context, cmd *cli.Command) error {
	const path = "tablenos.toml"

	if _, err := os.Stat(path); err == nil && !cmd.Bool("force") {
		return oops.
			Code("CONFIG_EXISTS").
			With("path", path).
			Hint("Pass --force to overwrite it").
			Errorf("%s already exists", path)
	}

	if err := os.WriteFile(path, []byte(starterConfig), 0o644); err != nil {
		return oops.
			Code("WRITE_FAILED").
			With("path", path).
			Wrapf(err, "writing config file")
	}

	fmt.Printf("Wrote %s\n", path)
	return nil
}
