package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/promptvaultapp/promptvault-server/internal/api"
	"github.com/promptvaultapp/promptvault-server/internal/cli"
)

var (
	addTitle       string
	addContent     string
	addFile        string
	addSlug        string
	addDescription string
	addCategory    string
	addTags        []string
	addSourceURL   string
	addRelated     []string
	addTemplate    bool

	getTrack bool

	listSearch   string
	listCategory string
	listTags     []string
	listSort     string
	listLimit    int
	listOffset   int

	updateTitle       string
	updateContent     string
	updateFile        string
	updateDescription string
	updateCategory    string
	updateTags        []string
	updateSourceURL   string
	updateRelated     []string
	updateNote        string

	noteSuccess string
	noteFailure string

	randomCategory string
	randomTag      string

	rmForce bool
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new prompt",
	Long: `Add a new prompt to the library.

Content comes from --content, --file, or stdin, in that order of
preference. Template markers like {{ name }} are detected automatically.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := readContent(addContent, addFile)
		if err != nil {
			return err
		}

		req := api.CreatePromptRequest{
			Title:        addTitle,
			Content:      content,
			Slug:         addSlug,
			Description:  addDescription,
			Category:     addCategory,
			Tags:         addTags,
			SourceURL:    addSourceURL,
			RelatedSlugs: addRelated,
		}
		if cmd.Flags().Changed("template") {
			req.IsTemplate = &addTemplate
		}

		p, err := newClient().CreatePrompt(cmd.Context(), req)
		if err != nil {
			return err
		}

		fmt.Printf("Created %s (version %d)\n", p.Slug, p.Version)
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <slug>",
	Short: "Print a prompt's content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newClient().GetPrompt(cmd.Context(), args[0], getTrack)
		if err != nil {
			return err
		}

		fmt.Print(p.Content)
		if !strings.HasSuffix(p.Content, "\n") {
			fmt.Println()
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <slug>",
	Short: "Show a prompt with all its metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newClient().GetPrompt(cmd.Context(), args[0], false)
		if err != nil {
			return err
		}
		return cli.Output(p)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List prompts",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := newClient().ListPrompts(cmd.Context(), cli.ListOptions{
			Search:   listSearch,
			Category: listCategory,
			Tags:     listTags,
			Sort:     listSort,
			Limit:    listLimit,
			Offset:   listOffset,
		})
		if err != nil {
			return err
		}
		return cli.Output(resp)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search prompts by title, content, and description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := newClient().ListPrompts(cmd.Context(), cli.ListOptions{
			Search: args[0],
		})
		if err != nil {
			return err
		}
		return cli.Output(resp)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <slug>",
	Short: "Update a prompt",
	Long: `Update a prompt's fields. Only given flags are changed.

Changing the content opens a new version in the ledger; use --note to
record why.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := api.UpdatePromptRequest{ChangeNote: updateNote}

		if cmd.Flags().Changed("title") {
			req.Title = &updateTitle
		}
		if cmd.Flags().Changed("content") || cmd.Flags().Changed("file") {
			content, err := readContent(updateContent, updateFile)
			if err != nil {
				return err
			}
			req.Content = &content
		}
		if cmd.Flags().Changed("description") {
			req.Description = &updateDescription
		}
		if cmd.Flags().Changed("category") {
			req.Category = &updateCategory
		}
		if cmd.Flags().Changed("tags") {
			req.Tags = updateTags
		}
		if cmd.Flags().Changed("source-url") {
			req.SourceURL = &updateSourceURL
		}
		if cmd.Flags().Changed("related") {
			req.RelatedSlugs = updateRelated
		}

		p, err := newClient().UpdatePrompt(cmd.Context(), args[0], req)
		if err != nil {
			return err
		}

		fmt.Printf("Updated %s (version %d)\n", p.Slug, p.Version)
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <slug>",
	Short: "Delete a prompt and its history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !rmForce {
			fmt.Printf("Delete %q and all its versions? [y/N] ", args[0])
			var answer string
			fmt.Scanln(&answer)
			if answer != "y" && answer != "Y" {
				fmt.Println("Aborted")
				return nil
			}
		}

		if err := newClient().DeletePrompt(cmd.Context(), args[0]); err != nil {
			return err
		}

		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

var renderCmd = &cobra.Command{
	Use:   "render <slug> [var=value ...]",
	Short: "Render a template prompt with variables",
	Long: `Render a template prompt, substituting the given variables.

Variables are passed as name=value pairs. Values are strings; specs with
defaults fill in anything omitted.

Examples:
  pv render code-review language=go code="$(cat main.go)"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		variables := make(map[string]any)
		for _, arg := range args[1:] {
			name, value, found := strings.Cut(arg, "=")
			if !found {
				return fmt.Errorf("invalid variable %q, expected name=value", arg)
			}
			variables[name] = value
		}

		resp, err := newClient().RenderPrompt(cmd.Context(), args[0], variables)
		if err != nil {
			return err
		}

		fmt.Print(resp.Rendered)
		if !strings.HasSuffix(resp.Rendered, "\n") {
			fmt.Println()
		}
		return nil
	},
}

var randomCmd = &cobra.Command{
	Use:   "random",
	Short: "Show a random prompt",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newClient().RandomPrompt(cmd.Context(), randomCategory, randomTag)
		if err != nil {
			return err
		}
		return cli.Output(p)
	},
}

var noteCmd = &cobra.Command{
	Use:   "note <slug>",
	Short: "Record what worked or failed with a prompt",
	Long: `Append to a prompt's success or failure notes. Each log only
grows; earlier entries are never overwritten.

Examples:
  pv note code-review -s "great on Go diffs"
  pv note code-review -f "hallucinated line numbers on long files"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if noteSuccess == "" && noteFailure == "" {
			return fmt.Errorf("provide --success or --failure")
		}

		p, err := newClient().AddNote(cmd.Context(), args[0], noteSuccess, noteFailure)
		if err != nil {
			return err
		}

		fmt.Printf("Noted on %s\n", p.Slug)
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check template syntax",
	Long:  `Check template syntax of a file, or stdin when no file is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file := ""
		if len(args) == 1 {
			file = args[0]
		}
		content, err := readContent("", file)
		if err != nil {
			return err
		}

		resp, err := newClient().ValidateTemplate(cmd.Context(), content)
		if err != nil {
			return err
		}

		if !resp.Valid {
			return fmt.Errorf("invalid template: %s", resp.Error)
		}
		if !resp.IsTemplate {
			fmt.Println("Valid (not a template)")
			return nil
		}

		fmt.Printf("Valid template, variables: %s\n", strings.Join(resp.Variables, ", "))
		return nil
	},
}

// readContent resolves prompt content from a flag value, a file, or stdin.
func readContent(flagValue, file string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if file != "" {
		data, err := os.ReadFile(file) //#nosec G304 -- file path comes from the user
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", file, err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("no content given: use --content, --file, or pipe to stdin")
	}
	return string(data), nil
}

func init() {
	addCmd.Flags().StringVar(&addTitle, "title", "", "prompt title (required)")
	addCmd.Flags().StringVar(&addContent, "content", "", "prompt content")
	addCmd.Flags().StringVar(&addFile, "file", "", "read content from file")
	addCmd.Flags().StringVar(&addSlug, "slug", "", "explicit slug (derived from title when omitted)")
	addCmd.Flags().StringVar(&addDescription, "description", "", "short description")
	addCmd.Flags().StringVar(&addCategory, "category", "", "category name")
	addCmd.Flags().StringSliceVar(&addTags, "tags", nil, "comma-separated tags")
	addCmd.Flags().StringVar(&addSourceURL, "source-url", "", "where the prompt came from")
	addCmd.Flags().StringSliceVar(&addRelated, "related", nil, "slugs of related prompts")
	addCmd.Flags().BoolVar(&addTemplate, "template", false, "pin template detection instead of deriving it")
	_ = addCmd.MarkFlagRequired("title")

	getCmd.Flags().BoolVar(&getTrack, "track", false, "record a use of this prompt")

	listCmd.Flags().StringVar(&listSearch, "q", "", "substring search")
	listCmd.Flags().StringVar(&listCategory, "category", "", "filter by category")
	listCmd.Flags().StringSliceVar(&listTags, "tag", nil, "filter by tag (repeatable, all must match)")
	listCmd.Flags().StringVar(&listSort, "sort", "", "sort order: recent, popular, updated, or created")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "maximum prompts to return")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "prompts to skip")

	updateCmd.Flags().StringVar(&updateTitle, "title", "", "prompt title")
	updateCmd.Flags().StringVar(&updateContent, "content", "", "prompt content")
	updateCmd.Flags().StringVar(&updateFile, "file", "", "read content from file")
	updateCmd.Flags().StringVar(&updateDescription, "description", "", "short description")
	updateCmd.Flags().StringVar(&updateCategory, "category", "", "category name")
	updateCmd.Flags().StringSliceVar(&updateTags, "tags", nil, "replacement tag set")
	updateCmd.Flags().StringVar(&updateSourceURL, "source-url", "", "where the prompt came from")
	updateCmd.Flags().StringSliceVar(&updateRelated, "related", nil, "replacement related slug set")
	updateCmd.Flags().StringVar(&updateNote, "note", "", "change note for the new version")

	noteCmd.Flags().StringVarP(&noteSuccess, "success", "s", "", "note to append to the success log")
	noteCmd.Flags().StringVarP(&noteFailure, "failure", "f", "", "note to append to the failure log")

	rmCmd.Flags().BoolVarP(&rmForce, "force", "f", false, "skip confirmation")

	randomCmd.Flags().StringVar(&randomCategory, "category", "", "filter by category")
	randomCmd.Flags().StringVar(&randomTag, "tag", "", "filter by tag")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(randomCmd)
	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(validateCmd)
}
