package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/promptvaultapp/promptvault-server/internal/api"
	"github.com/promptvaultapp/promptvault-server/internal/backup"
	"github.com/promptvaultapp/promptvault-server/internal/domain"
)

// OutputFormat defines the output format for CLI commands.
type OutputFormat string

const (
	OutputFormatYAML  OutputFormat = "yaml"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatTable OutputFormat = "table"
)

// globalOutputFormat is set by the root command's --output flag.
var globalOutputFormat = OutputFormatTable

// SetOutputFormat sets the global output format.
func SetOutputFormat(format string) {
	switch format {
	case "json":
		globalOutputFormat = OutputFormatJSON
	case "yaml":
		globalOutputFormat = OutputFormatYAML
	default:
		globalOutputFormat = OutputFormatTable
	}
}

// Output writes data to stdout in the configured format. Table output
// is only defined for a few known shapes; everything else falls back
// to YAML.
func Output(data any) error {
	return OutputTo(os.Stdout, globalOutputFormat, data)
}

// OutputTo writes data to the given writer in the specified format.
func OutputTo(w io.Writer, format OutputFormat, data any) error {
	switch format {
	case OutputFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case OutputFormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	case OutputFormatTable:
		return outputTable(w, data)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

func outputTable(w io.Writer, data any) error {
	switch v := data.(type) {
	case *api.ListPromptsResponse:
		return promptTable(w, v.Prompts, v.Total)
	case []api.PromptResponse:
		return promptTable(w, v, len(v))
	case *api.ListVersionsResponse:
		return versionTable(w, v.Versions)
	case *api.ListTagsResponse:
		return countTable(w, "TAG", v.Tags)
	case *api.ListCategoriesResponse:
		return categoryTable(w, v.Categories)
	case *domain.Stats:
		return statsTable(w, v)
	case *api.ListBackupsResponse:
		return backupTable(w, v.Backups)
	default:
		return OutputTo(w, OutputFormatYAML, data)
	}
}

func promptTable(w io.Writer, prompts []api.PromptResponse, total int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLUG\tTITLE\tCATEGORY\tTAGS\tVER\tUSES\tUPDATED")
	for _, p := range prompts {
		kind := ""
		if p.IsTemplate {
			kind = " *"
		}
		fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			p.Slug, kind, p.Title, p.Category, joinTags(p.Tags),
			p.Version, p.UseCount, p.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if total > len(prompts) {
		fmt.Fprintf(w, "\n%d of %d prompts shown (* = template)\n", len(prompts), total)
	}
	return nil
}

func versionTable(w io.Writer, versions []api.VersionResponse) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VER\tCREATED\tNOTE")
	for _, v := range versions {
		fmt.Fprintf(tw, "%d\t%s\t%s\n",
			v.Version, v.CreatedAt.Local().Format("2006-01-02 15:04"), v.ChangeNote)
	}
	return tw.Flush()
}

func backupTable(w io.Writer, backups []backup.Info) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSIZE\tCREATED")
	for _, b := range backups {
		fmt.Fprintf(tw, "%s\t%s\t%s\n",
			b.ID, formatSize(b.Size), b.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

// formatSize renders a byte count in human units.
func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func categoryTable(w io.Writer, categories []domain.CategoryCount) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tPROMPTS")
	for _, c := range categories {
		fmt.Fprintf(tw, "%s\t%d\n", c.Category, c.Count)
	}
	return tw.Flush()
}

func countTable(w io.Writer, header string, counts map[string]int) error {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\tPROMPTS\n", header)
	for _, name := range names {
		fmt.Fprintf(tw, "%s\t%d\n", name, counts[name])
	}
	return tw.Flush()
}

func statsTable(w io.Writer, stats *domain.Stats) error {
	fmt.Fprintf(w, "Prompts:   %d (%d templates)\n", stats.TotalPrompts, stats.TotalTemplates)
	fmt.Fprintf(w, "Total uses: %d\n", stats.TotalUses)

	if len(stats.MostUsed) > 0 {
		fmt.Fprintln(w, "\nMost used:")
		for _, ref := range stats.MostUsed {
			fmt.Fprintf(w, "  %-30s %d uses\n", ref.Slug, ref.UseCount)
		}
	}
	if len(stats.RecentlyUsed) > 0 {
		fmt.Fprintln(w, "\nRecently used:")
		for _, ref := range stats.RecentlyUsed {
			fmt.Fprintf(w, "  %-30s %s\n", ref.Slug, formatWhen(ref.LastUsedAt))
		}
	}
	if len(stats.RecentlyAdded) > 0 {
		fmt.Fprintln(w, "\nRecently added:")
		for _, ref := range stats.RecentlyAdded {
			fmt.Fprintf(w, "  %-30s %s\n", ref.Slug, ref.CreatedAt.Local().Format("2006-01-02"))
		}
	}
	return nil
}

func formatWhen(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}
