package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JibranRasheed/NCDK-sub001/internal/domain/notation"
	"github.com/JibranRasheed/NCDK-sub001/internal/domain/projection"
	"github.com/JibranRasheed/NCDK-sub001/internal/infrastructure/monitoring/logging"
	"github.com/JibranRasheed/NCDK-sub001/pkg/errors"
	"github.com/JibranRasheed/NCDK-sub001/pkg/types/molecule"
	"github.com/JibranRasheed/NCDK-sub001/pkg/types/query"
)

// addFileFlag registers the required -f/--file flag.
func addFileFlag(cmd *cobra.Command, file *string) {
	cmd.Flags().StringVarP(file, "file", "f", "", "input document (YAML or JSON); - reads stdin")
	_ = cmd.MarkFlagRequired("file")
}

// openInput opens path, or stdin for "-".
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidDocument, fmt.Sprintf("open %q", path))
	}
	return f, nil
}

// adaptFile decodes a graph document and adapts every graph in it with the
// document's coordinates applied.
func adaptFile(cmd *cobra.Command, cliCtx *CLIContext, path string) ([]*molecule.MolecularGraph, error) {
	r, err := openInput(cmd, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	inputs, err := DecodeGraphs(r)
	if err != nil {
		return nil, err
	}
	cliCtx.Logger.Debug("graph document decoded", logging.String("file", path), logging.Int("graphs", len(inputs)))

	raw := make([]*notation.Graph, len(inputs))
	for i, in := range inputs {
		raw[i] = in.Graph
	}
	out, err := cliCtx.Service.AdaptBatch(cmd.Context(), raw)
	if err != nil {
		return nil, err
	}
	for i, g := range out {
		inputs[i].ApplyCoords(g)
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// adapt
// ─────────────────────────────────────────────────────────────────────────────

// NewAdaptCmd creates the adapt command.
func NewAdaptCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "adapt",
		Short: "Convert notation graphs into molecular graphs with stereo elements",
		Example: `  chemsem adapt -f butene.yaml
  chemsem adapt -f batch.json -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			graphs, err := adaptFile(cmd, cliCtx, file)
			if err != nil {
				return err
			}
			views := make(Views[GraphView], len(graphs))
			for i, g := range graphs {
				views[i] = NewGraphView(g)
			}
			return PrintResult(cmd, views)
		},
	}
	addFileFlag(cmd, &file)
	return cmd
}

// ─────────────────────────────────────────────────────────────────────────────
// pattern
// ─────────────────────────────────────────────────────────────────────────────

// NewPatternCmd creates the pattern command.
func NewPatternCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "pattern",
		Short: "Compile a pattern or reaction pattern tree into a query graph",
		Example: `  chemsem pattern -f carbonyl.yaml
  chemsem pattern -f esterification.yaml -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			r, err := openInput(cmd, file)
			if err != nil {
				return err
			}
			defer r.Close()

			in, err := DecodePattern(r)
			if err != nil {
				return err
			}

			var q *query.QueryGraph
			if in.Reaction != nil {
				q, err = cliCtx.Service.CompileReaction(cmd.Context(), in.Reaction)
			} else {
				q, err = cliCtx.Service.CompilePattern(cmd.Context(), in.Pattern)
			}
			if err != nil {
				return err
			}
			return PrintResult(cmd, NewQueryView(q))
		},
	}
	addFileFlag(cmd, &file)
	return cmd
}

// ─────────────────────────────────────────────────────────────────────────────
// partition
// ─────────────────────────────────────────────────────────────────────────────

// NewPartitionCmd creates the partition command.
func NewPartitionCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:     "partition",
		Short:   "Split adapted graphs into connected fragments",
		Example: `  chemsem partition -f salt.yaml`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			graphs, err := adaptFile(cmd, cliCtx, file)
			if err != nil {
				return err
			}
			views := make(Views[PartitionView], 0, len(graphs))
			for _, g := range graphs {
				res, err := cliCtx.Service.Partition(cmd.Context(), g)
				if err != nil {
					return err
				}
				views = append(views, NewPartitionView(g.Title(), res))
			}
			return PrintResult(cmd, views)
		},
	}
	addFileFlag(cmd, &file)
	return cmd
}

// ─────────────────────────────────────────────────────────────────────────────
// project
// ─────────────────────────────────────────────────────────────────────────────

// NewProjectCmd creates the project command.
func NewProjectCmd() *cobra.Command {
	var (
		file    string
		centers []int
	)
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Recognise stereocentres drawn as Haworth or chair projections",
		Long: "project adapts the graphs of a document, applies their 2D coordinates and\n" +
			"adds tetrahedral centres read from ring projections.  Without --centers\n" +
			"every atom that could be a stereocentre is considered.",
		Example: `  chemsem project -f glucose.yaml
  chemsem project -f glucose.yaml --centers 0,1,2,3,4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			graphs, err := adaptFile(cmd, cliCtx, file)
			if err != nil {
				return err
			}

			var sc projection.Stereocenters
			if cmd.Flags().Changed("centers") {
				sc = projection.Indices(centers...)
			}

			views := make(Views[ProjectView], 0, len(graphs))
			for _, g := range graphs {
				res, err := cliCtx.Service.Perceive2D(cmd.Context(), g, sc)
				if err != nil {
					return err
				}
				v := ProjectView{Graph: NewGraphView(res.Graph), Centers: []StereoView{}}
				for _, c := range res.Centers {
					v.Centers = append(v.Centers, NewStereoView(res.Graph, c))
				}
				views = append(views, v)
			}
			return PrintResult(cmd, views)
		},
	}
	addFileFlag(cmd, &file)
	cmd.Flags().IntSliceVar(&centers, "centers", nil, "atom indices to treat as stereocentres")
	return cmd
}

// ─────────────────────────────────────────────────────────────────────────────
// version
// ─────────────────────────────────────────────────────────────────────────────

// VersionInfo is the output of the version command.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}

func (v VersionInfo) String() string {
	return fmt.Sprintf("chemsem %s (commit: %s, built: %s)\n", v.Version, v.Commit, v.BuildDate)
}

// NewVersionCmd creates the version command.  It skips the root
// initialization so that it works without a valid configuration.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			info := VersionInfo{Version: Version, Commit: GitCommit, BuildDate: BuildDate}
			format, _ := cmd.Flags().GetString("output")
			if format == "json" {
				return printJSON(cmd.OutOrStdout(), info)
			}
			return printText(cmd.OutOrStdout(), info)
		},
	}
}
