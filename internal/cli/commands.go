package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/helixir/scholinfra-service/internal/domain"
	"github.com/helixir/scholinfra-service/internal/scholinfra"
)

type recordOutput struct {
	Provider  string         `json:"provider"`
	Found     bool           `json:"found"`
	Record    *domain.Record `json:"record"`
	ElapsedMS float64        `json:"elapsed_ms"`
}

type recordsOutput struct {
	Provider  string           `json:"provider"`
	Records   []*domain.Record `json:"records"`
	ElapsedMS float64          `json:"elapsed_ms"`
}

type handleOutput struct {
	Provider  string         `json:"provider"`
	Found     bool           `json:"found"`
	Handle    string         `json:"handle"`
	Record    *domain.Record `json:"record,omitempty"`
	ElapsedMS float64        `json:"elapsed_ms"`
}

func (c *CLI) providersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List providers and the lookups they support",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, p := range c.registry.Providers() {
				caps := make([]string, 0, len(p.Capabilities()))
				for _, cp := range p.Capabilities() {
					caps = append(caps, string(cp))
				}
				fmt.Fprintf(out, "%-11s %-17s %s\n", p.ProviderName(), p.Name(), strings.Join(caps, ","))
			}
			return nil
		},
	}
}

func (c *CLI) titleCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "title <provider> <title>",
		Short:   "Find the record whose title matches",
		Example: `  scholapi title europepmc "Attention Is All You Need"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			searcher, err := c.registry.TitleSearcher(args[0])
			if err != nil {
				return err
			}
			result, err := searcher.TitleSearch(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd, newRecordOutput(searcher, result))
		},
	}
}

func (c *CLI) lookupCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "lookup <provider> <identifier>",
		Short:   "Fetch metadata by identifier, typically a DOI",
		Example: `  scholapi lookup unpaywall 10.1038/nature12373`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lookuper, err := c.registry.PublicationLookuper(args[0])
			if err != nil {
				return err
			}
			result, err := lookuper.PublicationLookup(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd, newRecordOutput(lookuper, result))
		},
	}
}

func (c *CLI) fullTextCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "fulltext <provider> <term>",
		Short:   "Run an unfiltered full-text search",
		Example: `  scholapi fulltext dimensions "graphene oxide"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			searcher, err := c.registry.FullTextSearcher(args[0])
			if err != nil {
				return err
			}
			result, err := searcher.FullTextSearch(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			records := result.Records
			if records == nil {
				records = []*domain.Record{}
			}
			return printJSON(cmd, recordsOutput{
				Provider:  searcher.Name(),
				Records:   records,
				ElapsedMS: result.ElapsedMillis(),
			})
		},
	}
}

func (c *CLI) repecCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repec",
		Short: "Resolve titles to RePEc handles and handles to metadata",
	}

	resolver := func() (scholinfra.HandleResolver, error) {
		return c.registry.HandleResolver(domain.ProviderRePEc.String())
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "handle <title>",
		Short: "Find the RePEc handle of the first search hit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := resolver()
			if err != nil {
				return err
			}
			result, err := r.GetHandle(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, handleOutput{
				Provider:  r.Name(),
				Found:     result.Found(),
				Handle:    result.Handle,
				ElapsedMS: result.ElapsedMillis(),
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "meta <handle>",
		Short: "Fetch RePEc metadata for a handle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := resolver()
			if err != nil {
				return err
			}
			result, err := r.GetMeta(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, newRecordOutput(r, result))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "lookup <title>",
		Short: "Resolve a title to a handle and the handle to metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := resolver()
			if err != nil {
				return err
			}
			result, err := r.Lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, handleOutput{
				Provider:  r.Name(),
				Found:     result.Found(),
				Handle:    result.Handle,
				Record:    result.Record,
				ElapsedMS: result.ElapsedMillis(),
			})
		},
	})

	return cmd
}

func (c *CLI) configCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the loaded credential keys with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			file := c.cfg.File
			if file == "" {
				file = "(none)"
			}
			fmt.Fprintf(out, "file: %s\n", file)
			for _, s := range c.cfg.Masked() {
				fmt.Fprintf(out, "%s = %s\n", s.Key, s.Value)
			}
			return nil
		},
	}
}

func newRecordOutput(p scholinfra.Provider, result *scholinfra.Result) recordOutput {
	rec := result.Record
	if rec == nil {
		rec = domain.NewRecord()
	}
	return recordOutput{
		Provider:  p.Name(),
		Found:     result.Found(),
		Record:    rec,
		ElapsedMS: result.ElapsedMillis(),
	}
}
