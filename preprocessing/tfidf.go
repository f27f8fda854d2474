package preprocessing

import (
	"math"

	"github.com/scigolabs/nbtext/core/model"
	"github.com/scigolabs/nbtext/pkg/errors"
	"github.com/scigolabs/nbtext/sparse"
)

// TfidfTransformer rescales a term-count matrix into tf-idf features,
// compatible with scikit-learn's TfidfTransformer defaults: smoothed
// inverse document frequency and L2 row normalization. Output values stay
// nonnegative, so tf-idf matrices remain valid MultinomialNB input.
type TfidfTransformer struct {
	state *model.StateManager

	// Hyperparameters
	useIDF      bool
	smoothIDF   bool
	sublinearTF bool
	norm        string // "l2", "l1" or ""

	// Learned parameters
	idf_ []float64
}

// TfidfOption is a functional option for TfidfTransformer.
type TfidfOption func(*TfidfTransformer)

// WithUseIDF enables inverse-document-frequency reweighting (default true).
func WithUseIDF(use bool) TfidfOption {
	return func(tf *TfidfTransformer) {
		tf.useIDF = use
	}
}

// WithSmoothIDF adds one to document frequencies, as if an extra document
// contained every term once (default true). This keeps idf finite for terms
// absent from the fitted corpus.
func WithSmoothIDF(smooth bool) TfidfOption {
	return func(tf *TfidfTransformer) {
		tf.smoothIDF = smooth
	}
}

// WithSublinearTF replaces raw term frequency with 1 + log(tf)
// (default false).
func WithSublinearTF(sublinear bool) TfidfOption {
	return func(tf *TfidfTransformer) {
		tf.sublinearTF = sublinear
	}
}

// WithNorm sets the row normalization: "l2" (default), "l1", or "" for
// none.
func WithNorm(norm string) TfidfOption {
	return func(tf *TfidfTransformer) {
		tf.norm = norm
	}
}

// NewTfidfTransformer creates a TfidfTransformer with the default policy.
func NewTfidfTransformer(opts ...TfidfOption) *TfidfTransformer {
	tf := &TfidfTransformer{
		state:     model.NewStateManager(),
		useIDF:    true,
		smoothIDF: true,
		norm:      "l2",
	}
	for _, opt := range opts {
		opt(tf)
	}
	return tf
}

// Fit learns the per-term inverse document frequency from a term-count
// matrix.
func (tf *TfidfTransformer) Fit(X *sparse.CSR) error {
	if tf.norm != "l2" && tf.norm != "l1" && tf.norm != "" {
		return errors.NewValidationError("norm", `must be "l2", "l1" or ""`, tf.norm)
	}
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewModelError("TfidfTransformer.Fit", "empty data", errors.ErrEmptyData)
	}

	if tf.useIDF {
		df := make([]float64, cols)
		for i := 0; i < rows; i++ {
			colIdx, vals := X.Row(i)
			for k, j := range colIdx {
				if vals[k] != 0 {
					df[j]++
				}
			}
		}

		n := float64(rows)
		if tf.smoothIDF {
			n++
		}
		tf.idf_ = make([]float64, cols)
		for j, d := range df {
			if tf.smoothIDF {
				d++
			}
			tf.idf_[j] = math.Log(n/d) + 1
		}
	}

	tf.state.SetDimensions(cols, rows)
	tf.state.SetFitted()
	return nil
}

// Transform rescales a term-count matrix into tf-idf features. The input is
// not modified.
func (tf *TfidfTransformer) Transform(X *sparse.CSR) (*sparse.CSR, error) {
	if err := tf.state.RequireFitted(); err != nil {
		return nil, errors.NewNotFittedError("TfidfTransformer", "Transform")
	}
	rows, cols := X.Dims()
	nFeatures, _ := tf.state.GetDimensions()
	if cols != nFeatures {
		return nil, errors.NewDimensionError("TfidfTransformer.Transform", nFeatures, cols, 1)
	}

	out := X.ToCOO().ToCSR() // deep copy in canonical order
	for i := 0; i < rows; i++ {
		colIdx, vals := out.Row(i)

		if tf.sublinearTF {
			for k, v := range vals {
				if v > 0 {
					vals[k] = 1 + math.Log(v)
				}
			}
		}
		if tf.useIDF {
			for k, j := range colIdx {
				vals[k] *= tf.idf_[j]
			}
		}

		switch tf.norm {
		case "l2":
			var sq float64
			for _, v := range vals {
				sq += v * v
			}
			if sq > 0 {
				inv := 1 / math.Sqrt(sq)
				for k := range vals {
					vals[k] *= inv
				}
			}
		case "l1":
			var sum float64
			for _, v := range vals {
				sum += math.Abs(v)
			}
			if sum > 0 {
				for k := range vals {
					vals[k] /= sum
				}
			}
		}
	}
	return out, nil
}

// FitTransform learns the idf weights and transforms the matrix in one
// call.
func (tf *TfidfTransformer) FitTransform(X *sparse.CSR) (*sparse.CSR, error) {
	if err := tf.Fit(X); err != nil {
		return nil, err
	}
	return tf.Transform(X)
}

// IDF returns the learned inverse document frequency per term, or nil when
// idf reweighting is disabled.
func (tf *TfidfTransformer) IDF() []float64 {
	return append([]float64(nil), tf.idf_...)
}
