package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marovi/papertrans/internal/parse"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <pdf>",
	Short: "Parse a PDF and print its blocks without translating",
	Long: `Inspect runs only the parse stage and prints every extracted block
with its page, ordinal, kind, and text. Useful for tuning template rules
against a new paper layout before spending translation calls.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	rulesPath, _ := cmd.Flags().GetString("rules")
	preview, _ := cmd.Flags().GetInt("preview")

	rules := parse.DefaultRules()
	if rulesPath != "" {
		var err error
		rules, err = parse.LoadRules(rulesPath)
		if err != nil {
			return err
		}
	}

	doc, err := parse.NewExtractor(rules).Extract(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d page(s), %d block(s), %d image(s)\n", doc.SourcePath, doc.PageCount, len(doc.Blocks), len(doc.Images))
	if doc.Title != "" {
		fmt.Printf("title: %s\n", doc.Title)
	}
	fmt.Println()

	for _, b := range doc.Blocks {
		text := b.Text
		if preview > 0 && len(text) > preview {
			text = text[:preview] + "…"
		}
		fmt.Printf("%4d  p%-3d %-10s %s\n", b.Ordinal, b.Page, b.Kind, text)
	}

	for _, img := range doc.Images {
		fmt.Printf("      p%-3d image      %s (%d bytes)\n", img.Page, img.FileName(), len(img.Data))
	}
	return nil
}

func init() {
	inspectCmd.Flags().String("rules", "", "template rules YAML file (default: built-in NeurIPS rules)")
	inspectCmd.Flags().Int("preview", 80, "truncate block text to this many bytes (0 = full text)")

	rootCmd.AddCommand(inspectCmd)
}
