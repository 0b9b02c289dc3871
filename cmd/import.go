package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file.json|->",
	Short: "Import a word book from a JSON file",
	Long: `Import reads a JSON array of entries such as

  [{"word": "abandon", "translation": "放弃", "phonetic": "/əˈbændən/"}]

into the selected book. Re-importing refreshes content and keeps progress.
Use "-" to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var r io.Reader = cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open word book: %w", err)
			}
			defer f.Close()
			r = f
		}

		d, err := openDeps(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer d.Close()

		book := settings.Study.Book
		n, err := d.words.Import(cmd.Context(), r, book)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d words into %q.\n", n, book)

		if enrich, _ := cmd.Flags().GetBool("enrich"); enrich {
			return enrichBook(cmd, d, book)
		}
		return nil
	},
}

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Generate example sentences and definitions for a book",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer d.Close()
		return enrichBook(cmd, d, settings.Study.Book)
	},
}

func enrichBook(cmd *cobra.Command, d *deps, book string) error {
	if d.enricher == nil {
		return fmt.Errorf("no LLM provider configured: set llm.provider or an API key")
	}
	n, err := d.words.EnrichBook(cmd.Context(), book)
	fmt.Fprintf(cmd.OutOrStdout(), "Enriched %d words in %q.\n", n, book)
	return err
}

func init() {
	importCmd.Flags().Bool("enrich", false, "Generate missing sentences and definitions after import")
}
