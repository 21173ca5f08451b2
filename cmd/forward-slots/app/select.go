package app

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/stacklok/forward-slots/internal/pattern"
	"github.com/stacklok/forward-slots/internal/service"
)

type selectOptions struct {
	only         []string
	except       []string
	native       []string
	filterNative bool
	format       string
}

func newSelectCmd() *cobra.Command {
	opts := &selectOptions{}
	cmd := &cobra.Command{
		Use:   "select NAME...",
		Short: "Decide which channels would be forwarded",
		Long: `Decide, for every channel name given as an argument, whether it would be
forwarded to the inner component. Patterns are literals ("header"), wildcards
("prepend*", "*.one"), globs ("glob:item.{a,b}") or regular expressions
("/^prepend\./i").`,
		Example: `  forward-slots select default prepend prepend.one --only 'prepend*'
  forward-slots select default header --except header --native header --filter-native`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelect(cmd, opts, args)
		},
	}

	// StringArray keeps commas inside regular expressions intact
	cmd.Flags().StringArrayVar(&opts.only, "only", nil, "Forward only channels matching this pattern (repeatable)")
	cmd.Flags().StringArrayVar(&opts.except, "except", nil, "Do not forward channels matching this pattern (repeatable)")
	cmd.Flags().StringArrayVar(&opts.native, "native", nil, "Channel the inner component declares itself (repeatable)")
	cmd.Flags().BoolVar(&opts.filterNative, "filter-native", false, "Apply only/except to native channels too")
	cmd.Flags().StringVar(&opts.format, "format", formatTable, "Output format (table, json or yaml)")

	return cmd
}

func runSelect(cmd *cobra.Command, opts *selectOptions, names []string) error {
	only, err := pattern.ParseSet(opts.only...)
	if err != nil {
		return fmt.Errorf("invalid --only: %w", err)
	}
	except, err := pattern.ParseSet(opts.except...)
	if err != nil {
		return fmt.Errorf("invalid --except: %w", err)
	}

	result, err := service.New().Select(cmd.Context(), &service.SelectRequest{
		Names:        names,
		Only:         only,
		Except:       except,
		Native:       opts.native,
		FilterNative: opts.filterNative,
	})
	if err != nil {
		return err
	}

	if opts.format != formatTable {
		return writeStructured(cmd.OutOrStdout(), opts.format, result)
	}

	rows := make([][]string, 0, len(result.Decisions))
	for _, d := range result.Decisions {
		rows = append(rows, []string{
			d.Name,
			strconv.FormatBool(d.Included),
			strconv.FormatBool(d.Native),
			d.Reason,
		})
	}
	return writeTable(cmd.OutOrStdout(), []string{"NAME", "FORWARDED", "NATIVE", "REASON"}, rows)
}
