package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/hupe1980/hypervec"
	"github.com/hupe1980/hypervec/curvature"
	"github.com/hupe1980/hypervec/fidelity"
	"github.com/hupe1980/hypervec/testutil"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "hypervec",
		Usage: "Hyperbolic and Euclidean vector tooling",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "curvature",
				Usage:  "Learn a curvature for a hierarchy",
				Action: curvatureCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "TSV taxonomy (child<TAB>parent); a synthetic tree is used when empty",
					},
					&cli.IntFlag{
						Name:  "depth",
						Usage: "Depth of the synthetic tree",
						Value: 6,
					},
					&cli.IntFlag{
						Name:  "branching",
						Usage: "Branching factor of the synthetic tree",
						Value: 3,
					},
					&cli.StringFlag{
						Name:  "strategy",
						Usage: "Learning strategy (grid, gradient)",
						Value: "grid",
					},
				},
			},
			{
				Name:   "fidelity",
				Usage:  "Compare Euclidean and Poincaré fidelity of a synthetic tree",
				Action: fidelityCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "depth",
						Usage: "Depth of the tree",
						Value: 4,
					},
					&cli.IntFlag{
						Name:  "branching",
						Usage: "Branching factor of the tree",
						Value: 3,
					},
					&cli.IntFlag{
						Name:  "k",
						Usage: "Neighbors inspected per node",
						Value: 10,
					},
					&cli.IntSliceFlag{
						Name:  "dims",
						Usage: "Embedding dimensions to compare",
						Value: cli.NewIntSlice(2, 5, 10, 20),
					},
					&cli.Float64Flag{
						Name:  "max-radius",
						Usage: "Radius of the ball the embedding is mapped into",
						Value: 0.9,
					},
					&cli.BoolFlag{
						Name:  "learn",
						Usage: "Learn the curvature from the tree instead of using -1",
					},
					&cli.Int64Flag{
						Name:  "seed",
						Usage: "Random seed of the embedding",
						Value: 42,
					},
				},
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

func openDB(c *cli.Context) (*hypervec.DB, error) {
	opts := []hypervec.Option{
		hypervec.WithLogger(hypervec.NewLogger(slog.Default().Handler())),
	}
	if path := c.String("config"); path != "" {
		opts = append(opts, hypervec.WithConfigFile(path))
	}
	return hypervec.Open(opts...)
}

func curvatureCommand(c *cli.Context) error {
	kind, err := curvature.ParseKind(strings.ToLower(c.String("strategy")))
	if err != nil {
		return err
	}

	h, err := loadHierarchy(c.String("file"), c.Int("depth"), c.Int("branching"))
	if err != nil {
		return err
	}

	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	learned, err := db.LearnCurvature(c.Context, h, kind, nil)
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "nodes:      %d\n", len(h.Nodes()))
	fmt.Fprintf(w, "max depth:  %d\n", h.MaxDepth())
	fmt.Fprintf(w, "branching:  %.2f\n", h.AvgBranchingFactor())
	fmt.Fprintf(w, "strategy:   %s\n", kind)
	fmt.Fprintf(w, "curvature:  %.4f\n", learned)
	return nil
}

func loadHierarchy(path string, depth, branching int) (curvature.Hierarchy, error) {
	if path == "" {
		if depth <= 0 || branching <= 0 {
			return nil, fmt.Errorf("depth and branching must be positive, got %d and %d", depth, branching)
		}
		return curvature.Hierarchy(testutil.DeepHierarchy(depth, branching)), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return curvature.ReadTSV(f)
}

func fidelityCommand(c *cli.Context) error {
	depth, branching, k := c.Int("depth"), c.Int("branching"), c.Int("k")
	if depth <= 0 || branching <= 0 {
		return fmt.Errorf("depth and branching must be positive, got %d and %d", depth, branching)
	}

	curv := -1.0
	if c.Bool("learn") {
		db, err := openDB(c)
		if err != nil {
			return err
		}
		defer db.Close()

		h := curvature.Hierarchy(testutil.DeepHierarchy(depth, branching))
		if curv, err = db.LearnCurvature(c.Context, h, curvature.KindGridSearch, nil); err != nil {
			return err
		}
	}

	rows, err := compareDims(c.Context, depth, branching, k, c.IntSlice("dims"), c.Float64("max-radius"), curv, c.Int64("seed"))
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "tree depth %d, branching %d, k %d, curvature %.2f\n", depth, branching, k, curv)
	renderComparisons(c.App.Writer, rows)
	return nil
}

func compareDims(ctx context.Context, depth, branching, k int, dims []int, maxRadius, curv float64, seed int64) ([]fidelity.Comparison, error) {
	rows := make([]fidelity.Comparison, 0, len(dims))
	for _, dim := range dims {
		tree := testutil.NewRNG(seed).Tree(depth, branching, dim)
		cmp, err := fidelity.Compare(ctx, curvature.Hierarchy(tree.Parents), tree.Vectors, k, maxRadius, curv)
		if err != nil {
			return nil, fmt.Errorf("dimension %d: %w", dim, err)
		}
		rows = append(rows, cmp)
	}
	return rows, nil
}

func renderComparisons(w io.Writer, rows []fidelity.Comparison) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"dimension", "euclidean", "poincaré", "improvement"})
	for _, r := range rows {
		tw.Append([]string{
			fmt.Sprintf("%d", r.Dimension),
			fmt.Sprintf("%.4f", r.Euclidean),
			fmt.Sprintf("%.4f", r.Poincare),
			fmt.Sprintf("%+.4f", r.Improvement),
		})
	}
	tw.Render()
}
