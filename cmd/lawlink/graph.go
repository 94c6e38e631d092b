package main

import (
	"fmt"

	"github.com/coolbeans/lawlink/pkg/graph"
	"github.com/coolbeans/lawlink/pkg/node"
	"github.com/coolbeans/lawlink/pkg/store"
	"github.com/spf13/cobra"
)

func graphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "List the referrers, targets or parts of a node",
		Long: `Answer a neighbour query over the reference graph of a node list,
or of every document in a stored run.

Queries:
  referrers  nodes with a reference to the node
  targets    nodes the node refers to
  parts      direct children of the node

Example:
  lawlink graph --nodes dedup.json --id 산업안전보건법-3 --query referrers
  lawlink graph --store lawlink.db --id 산업안전보건법-3 --query parts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			nodesPath, _ := cmd.Flags().GetString("nodes")
			storePath, _ := cmd.Flags().GetString("store")
			runID, _ := cmd.Flags().GetString("run")
			id, _ := cmd.Flags().GetString("id")
			query, _ := cmd.Flags().GetString("query")

			if id == "" {
				return fmt.Errorf("--id flag is required")
			}
			if (nodesPath == "") == (storePath == "") {
				return fmt.Errorf("exactly one of --nodes or --store is required")
			}

			var nodes node.Collection
			if nodesPath != "" {
				var err error
				if nodes, err = readCollection(nodesPath); err != nil {
					return err
				}
			} else {
				s, err := store.Open(storePath)
				if err != nil {
					return err
				}
				defer s.Close()

				if runID == "" {
					run, err := s.LatestRun(cmd.Context())
					if err != nil {
						return fmt.Errorf("failed to find latest run: %w", err)
					}
					runID = run.ID
				}
				if nodes, err = s.RunNodes(cmd.Context(), runID); err != nil {
					return err
				}
			}

			g := graph.FromCollection(nodes)
			ids, err := g.Related(query, id)
			if err != nil {
				return err
			}
			if !g.Has(id) {
				return fmt.Errorf("node %s not found", id)
			}
			for _, related := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), related)
			}
			return nil
		},
	}

	cmd.Flags().StringP("nodes", "n", "", "Linked node JSON")
	cmd.Flags().String("store", "", "SQLite database written by lawlink run")
	cmd.Flags().String("run", "", "Stored run to query (default latest)")
	cmd.Flags().String("id", "", "Node id")
	cmd.Flags().StringP("query", "q", graph.QueryReferrers, "Query (referrers, targets, parts)")
	return cmd
}
