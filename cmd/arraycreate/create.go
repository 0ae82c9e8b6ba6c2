package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/chazu/arraycreate/store"
	"github.com/chazu/arraycreate/vm"
	"github.com/chazu/arraycreate/vm/snapshot"
)

type createOptions struct {
	site         int
	snapshotFile string
	save         bool
	stats        bool
}

func newCreateCmd(g *globalOptions) *cobra.Command {
	o := &createOptions{}
	cmd := &cobra.Command{
		Use:   "create LENGTH...",
		Short: "Run ArrayCreate for each length literal at one call site",
		Example: `  arraycreate create -- 0 10 2147483648 -1 4294967296
  arraycreate create --site 3 --stats 1 2 3 1.5
  arraycreate create --snapshot run.cbor --save 10 NaN`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd.Context(), cmd.OutOrStdout(), g, o, args)
		},
	}
	cmd.Flags().IntVar(&o.site, "site", vm.DefaultSite, "Call-site key shared by every invocation")
	cmd.Flags().StringVar(&o.snapshotFile, "snapshot", "", "Write a CBOR snapshot of call-site state to this file")
	cmd.Flags().BoolVar(&o.save, "save", false, "Persist the snapshot to the configured profile store")
	cmd.Flags().BoolVar(&o.stats, "stats", false, "Print call-site statistics after running")
	return cmd
}

func runCreate(ctx context.Context, out io.Writer, g *globalOptions, o *createOptions, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	rt := vm.NewRuntime(g.cfg.RuntimeOptions())

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if isTerminal(out) {
		fmt.Fprintln(w, "LENGTH\tRESULT\tID")
	}
	for _, arg := range args {
		length, err := parseLiteral(arg)
		if err != nil {
			return err
		}
		arr, err := rt.ArrayCreateAt(o.site, length)
		if err != nil {
			fmt.Fprintf(w, "%s\t%v\t-\n", length, err)
			continue
		}
		fmt.Fprintf(w, "%s\t%s length=%d\t%d\n", length, arr.Representation(), arr.Length(), arr.ID())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if o.stats {
		printStats(out, rt.CallSites().Stats())
	}

	if o.snapshotFile == "" && !o.save {
		return nil
	}
	snap := snapshot.Take(rt, time.Now())

	if o.snapshotFile != "" {
		data, err := snapshot.Marshal(snap)
		if err != nil {
			return fmt.Errorf("failed to encode snapshot: %w", err)
		}
		if err := os.WriteFile(o.snapshotFile, data, 0644); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
	}

	if o.save {
		path := g.cfg.StorePath()
		if path == "" {
			return fmt.Errorf("--save requires [store] path in the config")
		}
		s, err := store.Open(path)
		if err != nil {
			return err
		}
		defer s.Close()
		if _, err := s.Save(ctx, snap); err != nil {
			return err
		}
	}
	return nil
}

func printStats(out io.Writer, stats vm.SpecializationStats) {
	fmt.Fprintf(out, "call sites: %d (monomorphic %d, polymorphic %d, uninitialized %d)\n",
		stats.TotalCallSites, stats.Monomorphic, stats.Polymorphic, stats.Uninitialized)
	fmt.Fprintf(out, "branches:   dense %d, sparse %d, invalid %d\n",
		stats.DenseSites, stats.SparseSites, stats.InvalidSites)
	fmt.Fprintf(out, "hints:      %d hits, %d misses (%.1f%%)\n",
		stats.TotalHits, stats.TotalMisses, stats.HitRate)
}
