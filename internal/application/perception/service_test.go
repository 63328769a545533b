package perception

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JibranRasheed/NCDK-sub001/internal/config"
	"github.com/JibranRasheed/NCDK-sub001/internal/domain/notation"
	"github.com/JibranRasheed/NCDK-sub001/internal/domain/pattern"
	"github.com/JibranRasheed/NCDK-sub001/internal/domain/projection"
	"github.com/JibranRasheed/NCDK-sub001/internal/infrastructure/monitoring/prometheus"
	"github.com/JibranRasheed/NCDK-sub001/internal/testutil"
	"github.com/JibranRasheed/NCDK-sub001/pkg/errors"
	"github.com/JibranRasheed/NCDK-sub001/pkg/types/molecule"
	"github.com/JibranRasheed/NCDK-sub001/pkg/types/query"
)

type fixture struct {
	svc       Service
	logger    *testutil.MockLogger
	collector prometheus.MetricsCollector
}

func newFixture(t *testing.T, cfg *config.Config) *fixture {
	t.Helper()
	c, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "svc"}, nil)
	require.NoError(t, err)
	logger := testutil.NewMockLogger()
	return &fixture{
		svc:       NewService(cfg, logger, prometheus.NewPerceptionMetrics(c)),
		logger:    logger,
		collector: c,
	}
}

func (f *fixture) scrape(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, f.collector.WriteText(&buf))
	return buf.String()
}

// chain returns a notation graph of n single-bonded carbons.
func chain(title string, n int) *notation.Graph {
	g := &notation.Graph{Title: title}
	for i := 0; i < n; i++ {
		g.Vertices = append(g.Vertices, notation.Vertex{Element: "C"})
		if i > 0 {
			g.Edges = append(g.Edges, notation.Edge{U: i - 1, V: i, Code: notation.CodeSingle})
		}
	}
	return g
}

func TestAdapt(t *testing.T) {
	f := newFixture(t, nil)

	g, err := f.svc.Adapt(context.Background(), chain("propane", 3))
	require.NoError(t, err)
	assert.Equal(t, 3, g.AtomCount())
	assert.Equal(t, "propane", g.Title())

	out := f.scrape(t)
	assert.Contains(t, out, `svc_graphs_adapted_total{result="ok"} 1`)
	assert.Contains(t, out, `svc_conversion_duration_seconds_count{operation="adapt"} 1`)

	msgs := f.logger.MessagesAt("debug")
	require.NotEmpty(t, msgs)
	runID, ok := msgs[0].Field("run_id")
	require.True(t, ok)
	assert.NotEmpty(t, runID)
}

func TestAdapt_InvalidNotation(t *testing.T) {
	f := newFixture(t, nil)
	bad := chain("bad", 2)
	bad.Edges[0].Code = notation.BondCode(99)

	_, err := f.svc.Adapt(context.Background(), bad)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidNotation(err))
	assert.Contains(t, f.scrape(t), `svc_graphs_adapted_total{result="error"} 1`)
	assert.True(t, f.logger.HasMessage("warn", "operation failed"))
}

func TestAdapt_Canceled(t *testing.T) {
	f := newFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Adapt(ctx, chain("x", 1))
	assert.True(t, errors.IsCode(err, errors.ErrCodeCanceled))
}

func TestAdaptBatch_PreservesOrder(t *testing.T) {
	cfg := &config.Config{Batch: config.BatchConfig{Concurrency: 3}}
	f := newFixture(t, cfg)

	inputs := make([]*notation.Graph, 12)
	for i := range inputs {
		inputs[i] = chain(fmt.Sprintf("g%d", i), i+1)
	}
	out, err := f.svc.AdaptBatch(context.Background(), inputs)
	require.NoError(t, err)

	require.Len(t, out, len(inputs))
	for i, g := range out {
		assert.Equal(t, fmt.Sprintf("g%d", i), g.Title())
		assert.Equal(t, i+1, g.AtomCount())
	}
	assert.Contains(t, f.scrape(t), `svc_graphs_adapted_total{result="ok"} 12`)
	assert.Contains(t, f.scrape(t), `svc_conversion_duration_seconds_count{operation="adapt"} 12`)
	assert.Contains(t, f.scrape(t), `svc_batch_inflight 0`)
}

func TestAdaptBatch_FirstErrorWins(t *testing.T) {
	f := newFixture(t, nil)
	bad := chain("bad", 2)
	bad.Edges[0].V = 7

	_, err := f.svc.AdaptBatch(context.Background(), []*notation.Graph{chain("a", 2), bad, chain("b", 2)})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidNotation(err))
	assert.Contains(t, err.Error(), "batch item 1")
}

func TestAdaptBatch_Empty(t *testing.T) {
	f := newFixture(t, nil)
	out, err := f.svc.AdaptBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCompilePattern(t *testing.T) {
	f := newFixture(t, nil)
	p := pattern.Single(
		&pattern.Atom{Expr: pattern.Aliphatic("C")},
		pattern.DoubleBond(),
		&pattern.Atom{Expr: pattern.Aliphatic("O")},
	)

	q, err := f.svc.CompilePattern(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 2, q.Graph().AtomCount())
	assert.Equal(t, "ORDER(2)", q.BondExpr(q.Graph().Bond(0)).String())
	assert.Contains(t, f.scrape(t), `svc_patterns_compiled_total{result="ok"} 1`)
	assert.Contains(t, f.scrape(t), `svc_conversion_duration_seconds_count{operation="compile"} 1`)
}

func TestCompilePattern_Malformed(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.CompilePattern(context.Background(), nil)
	assert.True(t, errors.IsMalformedPattern(err))
	assert.Contains(t, f.scrape(t), `svc_patterns_compiled_total{result="error"} 1`)
}

func TestCompileReaction(t *testing.T) {
	f := newFixture(t, nil)
	r := &pattern.Reaction{
		Reactants: pattern.Single(&pattern.Atom{Expr: pattern.Aliphatic("C")}),
		Products:  pattern.Single(&pattern.Atom{Expr: pattern.Aliphatic("O")}),
	}

	q, err := f.svc.CompileReaction(context.Background(), r)
	require.NoError(t, err)
	require.Equal(t, 2, q.Graph().AtomCount())
	assert.Contains(t, q.AtomExpr(q.Graph().Atom(1)).String(), fmt.Sprintf("REACTION_ROLE(%s)", query.RoleProduct))
}

func TestPartition(t *testing.T) {
	f := newFixture(t, nil)
	g := molecule.NewMolecularGraph("salt")
	for _, s := range []string{"Na", "Cl"} {
		_, err := g.AddAtom(molecule.NewAtom(s))
		require.NoError(t, err)
	}

	res, err := f.svc.Partition(context.Background(), g)
	require.NoError(t, err)
	assert.Len(t, res.Fragments, 2)
	assert.Contains(t, f.scrape(t), `svc_fragments_total 2`)
	assert.Contains(t, f.scrape(t), `svc_conversion_duration_seconds_count{operation="partition"} 1`)

	_, err = f.svc.Partition(context.Background(), nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidGraph))
}

// haworthGraph is a flat hexagon drawn clockwise with an up and a down
// substituent on atom 0.
func haworthGraph(t *testing.T) *molecule.MolecularGraph {
	t.Helper()
	g := molecule.NewMolecularGraph("ring")
	var atoms []*molecule.Atom
	add := func(symbol string, x, y float64) {
		a := molecule.NewAtom(symbol)
		a.Point2d = &molecule.Point2d{X: x, Y: y}
		_, err := g.AddAtom(a)
		require.NoError(t, err)
		atoms = append(atoms, a)
	}
	for k := 0; k < 6; k++ {
		rad := -float64(k) * math.Pi / 3
		add("C", math.Cos(rad), math.Sin(rad))
	}
	add("O", 1, 1)
	add("H", 1, -1)
	for i := 0; i < 6; i++ {
		_, err := g.AddBond(atoms[i], atoms[(i+1)%6], molecule.OrderSingle)
		require.NoError(t, err)
	}
	for _, j := range []int{6, 7} {
		_, err := g.AddBond(atoms[0], atoms[j], molecule.OrderSingle)
		require.NoError(t, err)
	}
	return g
}

func TestPerceive2D(t *testing.T) {
	f := newFixture(t, nil)
	g := haworthGraph(t)

	res, err := f.svc.Perceive2D(context.Background(), g, projection.Indices(0))
	require.NoError(t, err)
	require.Len(t, res.Centers, 1)
	assert.Equal(t, molecule.Clockwise, res.Centers[0].Winding)
	assert.Len(t, res.Graph.StereoElements(), 1)
	assert.Empty(t, g.StereoElements())

	out := f.scrape(t)
	assert.Contains(t, out, `svc_projections_classified_total{projection="haworth"} 1`)
	assert.Contains(t, out, `svc_stereo_elements_total{kind="tetrahedral",source="projection"} 1`)
	assert.Contains(t, out, `svc_conversion_duration_seconds_count{operation="perceive2d"} 1`)
}

func TestPerceive2D_DefaultClassification(t *testing.T) {
	f := newFixture(t, nil)

	// The plain hexagon is symmetric about atom 0, so no centre is flagged.
	res, err := f.svc.Perceive2D(context.Background(), haworthGraph(t), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Centers)

	_, err = f.svc.Perceive2D(context.Background(), nil, nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidGraph))
}

func TestReconfigure(t *testing.T) {
	f := newFixture(t, nil)
	f.svc.Reconfigure(&config.Config{Perception: config.PerceptionConfig{Projections: []string{}}})

	res, err := f.svc.Perceive2D(context.Background(), haworthGraph(t), projection.Indices(0))
	require.NoError(t, err)
	assert.Empty(t, res.Centers)
	assert.True(t, f.logger.HasMessage("info", "perception configured"))
}

func TestProjectionOptions(t *testing.T) {
	opts := ProjectionOptions(config.PerceptionConfig{
		Projections:             []string{"chair"},
		CardinalityThresholdDeg: 4,
		MinRingSize:             6,
		MaxRingSize:             6,
	})
	assert.Equal(t, []projection.Projection{projection.Chair}, opts.Projections)
	assert.Equal(t, 4.0, opts.ThresholdDeg)
	assert.Equal(t, 6, opts.MinRingSize)

	assert.Nil(t, ProjectionOptions(config.PerceptionConfig{}).Projections)
}

func TestService_ConcurrentUse(t *testing.T) {
	f := newFixture(t, nil)
	ring := haworthGraph(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Adapt(context.Background(), chain("c", 4))
			assert.NoError(t, err)
			_, err = f.svc.Perceive2D(context.Background(), ring, projection.Indices(0))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Contains(t, f.scrape(t), `svc_graphs_adapted_total{result="ok"} 8`)
}
