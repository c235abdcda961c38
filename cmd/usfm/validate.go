// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/digitallegionke/USFM/internal/usfm"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Structurally validate an existing USFM file",
	Long: `Validate runs the structural checks over a USFM file (or stdin): presence
of the required header markers and balanced footnote, cross-reference, and
study-note pairs. It is a shallow token check, not a full USFM parse.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, name, err := readInput(args)
		if err != nil {
			return err
		}
		if name == "" {
			name = "stdin"
		}

		if err := usfm.Validate(string(doc)); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		fmt.Fprintf(os.Stderr, "%s: structurally valid USFM\n", name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
