package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chazu/arraycreate/store"
	"github.com/chazu/arraycreate/vm/snapshot"
)

func newStatsCmd(g *globalOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show a call-site snapshot from a file or the profile store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				snap *snapshot.Snapshot
				err  error
			)
			if file != "" {
				data, rerr := os.ReadFile(file)
				if rerr != nil {
					return fmt.Errorf("failed to read snapshot: %w", rerr)
				}
				snap, err = snapshot.Unmarshal(data)
			} else {
				snap, err = latestFromStore(cmd, g)
			}
			if err != nil {
				return err
			}
			printSnapshot(cmd.OutOrStdout(), snap)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Read a CBOR snapshot file instead of the profile store")
	return cmd
}

func newHistoryCmd(g *globalOptions) *cobra.Command {
	var (
		site  int
		limit int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show stored history for one call site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(g)
			if err != nil {
				return err
			}
			defer s.Close()

			hist, err := s.History(cmd.Context(), site, limit)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SNAPSHOT\tLEVEL\tLAST\tHITS\tMISSES\tCALLS\tHOT")
			for _, e := range hist {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\t%v\n",
					e.SnapshotID, e.Level, e.Last, e.Hits, e.Misses, e.Invocations, e.Hot)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&site, "site", 0, "Call-site key")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum entries")
	return cmd
}

func openStore(g *globalOptions) (*store.Store, error) {
	path := g.cfg.StorePath()
	if path == "" {
		return nil, fmt.Errorf("no [store] path configured")
	}
	return store.Open(path)
}

func latestFromStore(cmd *cobra.Command, g *globalOptions) (*snapshot.Snapshot, error) {
	s, err := openStore(g)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Latest(cmd.Context())
}

func printSnapshot(out io.Writer, snap *snapshot.Snapshot) {
	fmt.Fprintf(out, "context %s at %s\n", snap.ContextID, snap.Time().UTC().Format("2006-01-02T15:04:05Z"))
	fmt.Fprintf(out, "created: dense %d, sparse %d, errors %d\n", snap.Totals.Dense, snap.Totals.Sparse, snap.Totals.Errors)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SITE\tLEVEL\tACTIVE\tLAST\tHITS\tMISSES\tCALLS\tHOT")
	for _, r := range snap.Sites {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%v\n",
			r.Site, r.Level, strings.Join(r.Active, ","), r.Last, r.Hits, r.Misses, r.Invocations, r.Hot)
	}
	w.Flush()
}
