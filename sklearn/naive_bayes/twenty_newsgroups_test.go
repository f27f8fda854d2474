package naive_bayes

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/scigolabs/nbtext/core/model"
	"github.com/scigolabs/nbtext/datasets"
	"github.com/scigolabs/nbtext/metrics"
	"github.com/scigolabs/nbtext/pkg/log"
	"github.com/scigolabs/nbtext/preprocessing"
	"github.com/scigolabs/nbtext/sparse"
)

const (
	newsgroupsChunkSize     = 500
	sparseAccuracyThreshold = 0.924
	denseAccuracyThreshold  = 0.911
	denseHeadRows           = 5000
)

var (
	corpusOnce sync.Once
	corpusX    *sparse.CSR
	corpusY    []int
	corpusErr  error
)

// loadTrainCorpus loads the vectorized 20 newsgroups training split from the
// local cache. Tests that need the full corpus skip when it has not been
// downloaded.
func loadTrainCorpus(t *testing.T) (*sparse.CSR, []int) {
	t.Helper()
	corpusOnce.Do(func() {
		corpusX, corpusY, corpusErr = datasets.LoadCorpus(
			datasets.WithSubset(datasets.SubsetTrain),
			datasets.WithShuffle(true),
			datasets.WithDownload(false),
		)
	})
	if corpusErr != nil {
		t.Skipf("20 newsgroups corpus not cached locally: %v", corpusErr)
	}
	return corpusX, corpusY
}

func labelColumn(y []int) *mat.Dense {
	col := mat.NewDense(len(y), 1, nil)
	for i, v := range y {
		col.Set(i, 0, float64(v))
	}
	return col
}

func predictionsToInts(t *testing.T, preds mat.Matrix) []int {
	t.Helper()
	rows, cols := preds.Dims()
	if cols != 1 {
		t.Fatalf("predictions should be a column vector, got %d columns", cols)
	}
	out := make([]int, rows)
	for i := 0; i < rows; i++ {
		out[i] = int(preds.At(i, 0))
	}
	return out
}

func uniqueClasses(y []int) []int {
	seen := make(map[int]struct{})
	var classes []int
	for _, v := range y {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			classes = append(classes, v)
		}
	}
	return classes
}

// TestNewsgroupsSparseFit trains on the full sparse term-count matrix and
// checks training accuracy. The first fit warms per-class allocations; the
// second is the measured one.
func TestNewsgroupsSparseFit(t *testing.T) {
	X, y := loadTrainCorpus(t)
	yCol := labelColumn(y)

	nb := NewMultinomialNB()
	if err := nb.Fit(X, yCol); err != nil {
		t.Fatalf("warm-up Fit failed: %v", err)
	}

	start := time.Now()
	if err := nb.Fit(X, yCol); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	slog.Debug("sparse fit timing",
		log.ModelNameKey, "MultinomialNB",
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	preds, err := nb.Predict(X)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	acc, err := metrics.AccuracyScore(y, predictionsToInts(t, preds))
	if err != nil {
		t.Fatalf("AccuracyScore failed: %v", err)
	}
	if acc < sparseAccuracyThreshold {
		t.Errorf("sparse training accuracy = %.4f, want >= %.4f", acc, sparseAccuracyThreshold)
	}
}

// TestNewsgroupsDenseHeadFit trains on a dense copy of the first rows of the
// corpus and checks training accuracy on that slice.
func TestNewsgroupsDenseHeadFit(t *testing.T) {
	X, y := loadTrainCorpus(t)

	rows, _ := X.Dims()
	head := denseHeadRows
	if rows < head {
		head = rows
	}
	XHead, err := X.SliceRows(0, head)
	if err != nil {
		t.Fatalf("SliceRows failed: %v", err)
	}
	XDense := XHead.ToDense()
	yHead := y[:head]
	yCol := labelColumn(yHead)

	nb := NewMultinomialNB()
	if err := nb.Fit(XDense, yCol); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	acc, err := nb.Score(XDense, yCol)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if acc < denseAccuracyThreshold {
		t.Errorf("dense training accuracy = %.4f, want >= %.4f", acc, denseAccuracyThreshold)
	}
}

// TestNewsgroupsChunkedPartialFit feeds the corpus through PartialFit in
// fixed-size row chunks, verifies the chunks partition the rows exactly,
// and checks that the incrementally trained model matches full-batch
// training accuracy.
func TestNewsgroupsChunkedPartialFit(t *testing.T) {
	X, y := loadTrainCorpus(t)
	rows, _ := X.Dims()
	classes := uniqueClasses(y)

	nb := NewMultinomialNB()
	covered := 0
	for i := 0; covered < rows; i++ {
		from := i * newsgroupsChunkSize
		to := from + newsgroupsChunkSize
		if to > rows {
			to = rows
		}
		if from != covered {
			t.Fatalf("chunk %d starts at row %d, want %d", i, from, covered)
		}

		chunk, err := X.SliceRows(from, to)
		if err != nil {
			t.Fatalf("SliceRows(%d, %d) failed: %v", from, to, err)
		}
		yChunk := labelColumn(y[from:to])

		if err := nb.PartialFit(chunk, yChunk, classes); err != nil {
			t.Fatalf("PartialFit on chunk %d failed: %v", i, err)
		}
		covered = to
	}
	if covered != rows {
		t.Fatalf("chunks covered %d rows, want %d", covered, rows)
	}
	if nb.NSamplesSeen() != rows {
		t.Errorf("NSamplesSeen() = %d, want %d", nb.NSamplesSeen(), rows)
	}

	preds, err := nb.Predict(X)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	acc, err := metrics.AccuracyScore(y, predictionsToInts(t, preds))
	if err != nil {
		t.Fatalf("AccuracyScore failed: %v", err)
	}
	if acc < sparseAccuracyThreshold {
		t.Errorf("chunked training accuracy = %.4f, want >= %.4f", acc, sparseAccuracyThreshold)
	}
}

// TestChunkedPartialFitMatchesBatchFit verifies that accumulating counts
// over a row partition produces the same predictions as one batch fit.
func TestChunkedPartialFitMatchesBatchFit(t *testing.T) {
	X, y := sampleTermCounts(t)
	rows, _ := X.Dims()
	yCol := labelColumn(y)
	classes := uniqueClasses(y)

	batch := NewMultinomialNB()
	if err := batch.Fit(X, yCol); err != nil {
		t.Fatalf("batch Fit failed: %v", err)
	}

	chunked := NewMultinomialNB()
	const chunkSize = 5
	for from := 0; from < rows; from += chunkSize {
		to := from + chunkSize
		if to > rows {
			to = rows
		}
		chunk, err := X.SliceRows(from, to)
		if err != nil {
			t.Fatalf("SliceRows(%d, %d) failed: %v", from, to, err)
		}
		if err := chunked.PartialFit(chunk, labelColumn(y[from:to]), classes); err != nil {
			t.Fatalf("PartialFit failed: %v", err)
		}
	}

	batchPreds, err := batch.Predict(X)
	if err != nil {
		t.Fatalf("batch Predict failed: %v", err)
	}
	chunkedPreds, err := chunked.Predict(X)
	if err != nil {
		t.Fatalf("chunked Predict failed: %v", err)
	}
	for i := 0; i < rows; i++ {
		if batchPreds.At(i, 0) != chunkedPreds.At(i, 0) {
			t.Errorf("row %d: batch predicted %v, chunked predicted %v",
				i, batchPreds.At(i, 0), chunkedPreds.At(i, 0))
		}
	}
}

// sampleTermCounts vectorizes the embedded sample corpus.
func sampleTermCounts(t *testing.T) (*sparse.CSR, []int) {
	t.Helper()
	ng := datasets.LoadSampleCorpus(true, 42)
	cv := preprocessing.NewCountVectorizer()
	X, err := cv.FitTransform(ng.Data)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}
	return X, ng.Target
}

// TestSampleCorpusEndToEnd runs the full pipeline on the embedded sample
// corpus: vectorize, fit, and score on the training documents.
func TestSampleCorpusEndToEnd(t *testing.T) {
	X, y := sampleTermCounts(t)
	yCol := labelColumn(y)

	nb := NewMultinomialNB()
	if err := nb.Fit(X, yCol); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	acc, err := nb.Score(X, yCol)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if acc < 0.9 {
		t.Errorf("sample corpus training accuracy = %.4f, want >= 0.9", acc)
	}
}

// TestPredictExactOnSeparableCounts checks analytically known predictions:
// each class concentrates its mass on disjoint features, so the argmax is
// unambiguous.
func TestPredictExactOnSeparableCounts(t *testing.T) {
	XTrain := mat.NewDense(4, 4, []float64{
		3, 2, 0, 0,
		2, 3, 0, 0,
		0, 0, 3, 2,
		0, 0, 2, 3,
	})
	yTrain := mat.NewDense(4, 1, []float64{0, 0, 1, 1})

	nb := NewMultinomialNB()
	if err := nb.Fit(XTrain, yTrain); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	XTest := mat.NewDense(2, 4, []float64{
		3, 1, 0, 0,
		0, 0, 1, 3,
	})
	want := []float64{0, 1}

	preds, err := nb.Predict(XTest)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	for i, w := range want {
		if got := preds.At(i, 0); got != w {
			t.Errorf("sample %d: predicted %v, want %v", i, got, w)
		}
	}
}

// TestSparseToyTrainingPredictionsExact fits a small sparse count matrix
// and requires predictions on the training matrix itself to reproduce the
// training labels exactly: each class keeps its counts on its own feature
// block, so every training row has an unambiguous argmax.
func TestSparseToyTrainingPredictionsExact(t *testing.T) {
	dense := mat.NewDense(6, 4, []float64{
		4, 2, 0, 0,
		3, 3, 0, 0,
		2, 4, 1, 0,
		0, 0, 4, 2,
		0, 1, 3, 3,
		0, 0, 2, 4,
	})
	y := []int{0, 0, 0, 1, 1, 1}

	coo, err := sparse.FromMatrix(dense)
	if err != nil {
		t.Fatalf("FromMatrix failed: %v", err)
	}
	X := coo.ToCSR()

	nb := NewMultinomialNB()
	if err := nb.Fit(X, labelColumn(y)); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	preds, err := nb.Predict(X)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	for i, want := range y {
		if got := int(preds.At(i, 0)); got != want {
			t.Errorf("training row %d: predicted %d, want %d", i, got, want)
		}
	}

	acc, err := metrics.AccuracyScore(y, predictionsToInts(t, preds))
	if err != nil {
		t.Fatalf("AccuracyScore failed: %v", err)
	}
	if acc != 1.0 {
		t.Errorf("training accuracy = %v, want exactly 1", acc)
	}
}

// TestFitOnCOOMatchesDense verifies that fitting on the sparse interchange
// form of a matrix gives the same model as fitting on the dense original.
func TestFitOnCOOMatchesDense(t *testing.T) {
	XDense := mat.NewDense(4, 3, []float64{
		2, 1, 0,
		1, 1, 1,
		0, 1, 2,
		0, 2, 1,
	})
	y := mat.NewDense(4, 1, []float64{0, 0, 1, 1})

	XSparse, err := sparse.FromMatrix(XDense)
	if err != nil {
		t.Fatalf("FromMatrix failed: %v", err)
	}

	fromDense := NewMultinomialNB()
	if err := fromDense.Fit(XDense, y); err != nil {
		t.Fatalf("dense Fit failed: %v", err)
	}
	fromSparse := NewMultinomialNB()
	if err := fromSparse.Fit(XSparse, y); err != nil {
		t.Fatalf("sparse Fit failed: %v", err)
	}

	XTest := mat.NewDense(2, 3, []float64{
		2, 0, 0,
		0, 0, 2,
	})
	densePreds, err := fromDense.Predict(XTest)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	sparsePreds, err := fromSparse.Predict(XTest)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if densePreds.At(i, 0) != sparsePreds.At(i, 0) {
			t.Errorf("sample %d: dense model predicted %v, sparse model predicted %v",
				i, densePreds.At(i, 0), sparsePreds.At(i, 0))
		}
	}
}

// TestFitStreamMatchesBatchFit streams the sample corpus in chunks and
// compares predictions with a batch-fitted model.
func TestFitStreamMatchesBatchFit(t *testing.T) {
	X, y := sampleTermCounts(t)
	rows, _ := X.Dims()
	yCol := labelColumn(y)
	classes := uniqueClasses(y)

	batch := NewMultinomialNB()
	if err := batch.Fit(X, yCol); err != nil {
		t.Fatalf("batch Fit failed: %v", err)
	}

	streamed := NewMultinomialNB(WithClasses(classes))
	batches := make(chan *model.Batch)
	go func() {
		defer close(batches)
		const chunkSize = 8
		for from := 0; from < rows; from += chunkSize {
			to := from + chunkSize
			if to > rows {
				to = rows
			}
			chunk, err := X.SliceRows(from, to)
			if err != nil {
				return
			}
			batches <- &model.Batch{X: chunk, Y: labelColumn(y[from:to])}
		}
	}()
	if err := streamed.FitStream(context.Background(), batches); err != nil {
		t.Fatalf("FitStream failed: %v", err)
	}
	if streamed.NSamplesSeen() != rows {
		t.Errorf("NSamplesSeen() = %d, want %d", streamed.NSamplesSeen(), rows)
	}

	batchPreds, err := batch.Predict(X)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	streamedPreds, err := streamed.Predict(X)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	for i := 0; i < rows; i++ {
		if batchPreds.At(i, 0) != streamedPreds.At(i, 0) {
			t.Errorf("row %d: batch predicted %v, streamed predicted %v",
				i, batchPreds.At(i, 0), streamedPreds.At(i, 0))
		}
	}
}
