// Package booster grows one regression tree from gradient statistics.
//
// The CARTBooster keeps a queue of (node, rows) tasks. Each task either becomes a
// leaf or is split on the best exact greedy boundary, in which case its rows are
// partitioned in place and two child tasks are queued. Leaves whose parent ends up
// with two leaf children and a weak split are folded back into the parent.
package booster

import (
	"context"
	"math"
	"time"

	"github.com/phf/go-queue/queue"

	"github.com/YuminosukeSato/cartboost/columnar"
	"github.com/YuminosukeSato/cartboost/pkg/errors"
	"github.com/YuminosukeSato/cartboost/pkg/log"
	"github.com/YuminosukeSato/cartboost/regularizer"
	"github.com/YuminosukeSato/cartboost/sparse"
	"github.com/YuminosukeSato/cartboost/split"
	"github.com/YuminosukeSato/cartboost/tree"
)

// RowProvider gives the booster random access to training rows.
type RowProvider interface {
	NumRows() int
	Row(id int) sparse.Row
}

// Traversal selects the order in which queued tasks are expanded.
type Traversal int

const (
	// BreadthFirst expands tasks in FIFO order.
	BreadthFirst Traversal = iota
	// DepthFirst expands the most recently queued task first.
	DepthFirst
)

// BuildStats summarizes one Build.
type BuildStats struct {
	Tasks    int
	Splits   int
	Leaves   int
	Pruned   int
	Nodes    int
	Depth    int
	Duration time.Duration
}

type task struct {
	nid  int
	rows []int32
}

// CARTBooster builds trees. It is not safe for concurrent use; its image and
// scratch buffers are reused across builds.
type CARTBooster struct {
	cfg       Config
	params    split.Params
	traversal Traversal
	logger    log.Logger

	image   *columnar.Image
	mark    []bool
	scratch []int32
	stats   BuildStats
}

// Option configures a CARTBooster.
type Option func(*CARTBooster)

// WithLogger sets the logger used for build summaries.
func WithLogger(logger log.Logger) Option {
	return func(b *CARTBooster) {
		b.logger = logger
	}
}

// WithTraversal sets the task expansion order.
func WithTraversal(t Traversal) Option {
	return func(b *CARTBooster) {
		b.traversal = t
	}
}

// New validates cfg and returns a booster.
func New(cfg Config, opts ...Option) (*CARTBooster, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b := &CARTBooster{
		cfg: cfg,
		params: split.Params{
			MinChildWeight: cfg.MinChildWeight,
			Epsilon:        cfg.Epsilon,
			Regularizer:    cfg.Regularizer,
		},
		image: columnar.NewImage(cfg.NumFeature),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = log.GetLoggerWithName("booster")
	}
	return b, nil
}

// BuildTree builds one tree with a fresh booster.
func BuildTree(rows RowProvider, grad, hess []float32, cfg Config) (*tree.Tree, error) {
	b, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return b.Build(rows, grad, hess)
}

// Stats returns the statistics of the last Build.
func (b *CARTBooster) Stats() BuildStats {
	return b.stats
}

// Config returns the booster configuration.
func (b *CARTBooster) Config() Config {
	return b.cfg
}

// Build grows a tree over every row of rows. grad and hess hold one entry per row.
func (b *CARTBooster) Build(rows RowProvider, grad, hess []float32) (t *tree.Tree, err error) {
	defer errors.Recover(&err, "CARTBooster.Build")

	start := time.Now()
	b.stats = BuildStats{}

	n := rows.NumRows()
	if n == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "CARTBooster.Build")
	}
	if len(grad) != n {
		return nil, errors.NewDimensionError("CARTBooster.Build", n, len(grad), 0)
	}
	if len(hess) != n {
		return nil, errors.NewDimensionError("CARTBooster.Build", n, len(hess), 0)
	}
	if err := errors.CheckFloat32("gradient", grad, 0); err != nil {
		return nil, err
	}
	if err := errors.CheckFloat32("hessian", hess, 0); err != nil {
		return nil, err
	}

	ids := make([]int32, n)
	for i := range ids {
		ids[i] = int32(i)
	}
	if cap(b.mark) < n {
		b.mark = make([]bool, n)
		b.scratch = make([]int32, n)
	}
	b.mark = b.mark[:n]

	t = tree.New()
	q := queue.New()
	q.PushBack(task{nid: 0, rows: ids})
	for q.Len() > 0 {
		var tk task
		if b.traversal == DepthFirst {
			tk = q.PopBack().(task)
		} else {
			tk = q.PopFront().(task)
		}
		b.stats.Tasks++
		if err := b.expand(t, tk, rows, grad, hess, q); err != nil {
			return nil, err
		}
	}

	b.stats.Nodes = t.Size()
	b.stats.Depth = t.MaxDepth()
	b.stats.Duration = time.Since(start)
	if b.logger.Enabled(context.Background(), log.LevelDebug) {
		b.logger.Debug("Tree built",
			log.OperationKey, log.OperationBuild,
			log.SamplesKey, n,
			log.NodesKey, b.stats.Nodes,
			log.LeavesKey, t.NumLeaves(),
			log.DepthKey, b.stats.Depth,
			log.SplitsKey, b.stats.Splits,
			log.PrunedKey, b.stats.Pruned,
			log.TasksKey, b.stats.Tasks,
			log.RegularizationKey, regularizer.Describe(b.cfg.Regularizer),
			log.DurationMsKey, b.stats.Duration.Milliseconds(),
		)
	}
	return t, nil
}

func (b *CARTBooster) expand(t *tree.Tree, tk task, rows RowProvider, grad, hess []float32, q *queue.Queue) error {
	var sumGrad, sumHess float64
	for _, r := range tk.rows {
		sumGrad += float64(grad[r])
		sumHess += float64(hess[r])
	}

	if t.Depth(tk.nid) >= b.cfg.MaxDepth || sumHess <= 2*b.cfg.MinChildWeight {
		b.commitLeaf(t, tk.nid, sumGrad, sumHess)
		return nil
	}

	if err := b.fillImage(tk.rows, rows); err != nil {
		return err
	}

	best := split.None()
	totals := split.Totals{SumGrad: sumGrad, SumHess: sumHess, Rows: len(tk.rows)}
	for _, f := range b.image.ActiveFeatures() {
		col := b.image.Feature(f)
		split.SortEntries(col)
		best = split.Combine(best, split.Enumerate(f, col, grad, hess, totals, b.params))
	}

	if !best.Valid() || best.LossChg <= b.cfg.Epsilon {
		b.commitLeaf(t, tk.nid, sumGrad, sumHess)
		return nil
	}

	node := t.Get(tk.nid)
	node.Stat = tree.NodeStat{
		LossChg:    best.LossChg,
		BaseWeight: b.cfg.Regularizer.Weight(sumGrad, sumHess),
	}
	node.SetSplit(best.Feature, best.Cond)

	nLeft, err := b.partition(tk.rows, best)
	if err != nil {
		return err
	}
	left, right := t.AddChildren(tk.nid)
	b.stats.Splits++

	q.PushBack(task{nid: left, rows: tk.rows[:nLeft]})
	q.PushBack(task{nid: right, rows: tk.rows[nLeft:]})
	return nil
}

// fillImage loads the rows of one task into the column image.
func (b *CARTBooster) fillImage(ids []int32, rows RowProvider) error {
	im := b.image
	im.Reset()
	for _, r := range ids {
		row := rows.Row(int(r))
		for k, f := range row.Features {
			if int(f) >= b.cfg.NumFeature || f < 0 {
				return errors.NewDataInconsistencyError("CARTBooster.Build", int(r), int(f), "feature index outside [0, NumFeature)")
			}
			if v := float64(row.Values[k]); math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.NewDataInconsistencyError("CARTBooster.Build", int(r), int(f), "non-finite feature value")
			}
			if err := im.AddBudget(int(f)); err != nil {
				return err
			}
		}
	}
	if err := im.BuildStorage(); err != nil {
		return err
	}
	for _, r := range ids {
		row := rows.Row(int(r))
		for k, f := range row.Features {
			if err := im.AddElement(r, int(f), row.Values[k]); err != nil {
				return err
			}
		}
	}
	return im.Complete()
}

func (b *CARTBooster) commitLeaf(t *tree.Tree, nid int, sumGrad, sumHess float64) {
	t.Get(nid).SetLeaf(b.cfg.LearningRate * b.cfg.Regularizer.Weight(sumGrad, sumHess))
	b.stats.Leaves++
	b.prune(t, nid)
}

// prune walks up from a fresh leaf and folds every parent whose two children
// are leaves and whose split gain does not exceed MinSplitLoss.
func (b *CARTBooster) prune(t *tree.Tree, nid int) {
	for {
		n := t.Get(nid)
		if n.IsRoot() {
			return
		}
		pid := n.Parent.Index
		parent := t.Get(pid)
		parent.Stat.LeafChildCnt++
		if parent.Stat.LeafChildCnt < 2 || parent.Stat.LossChg > b.cfg.MinSplitLoss {
			return
		}
		t.ChangeToLeaf(pid, b.cfg.LearningRate*parent.Stat.BaseWeight)
		b.stats.Pruned++
		nid = pid
	}
}
