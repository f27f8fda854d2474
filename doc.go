// Package nbtext is a Go toolkit for multinomial naive Bayes text
// classification with a scikit-learn compatible API.
//
// The module is organized into focused packages:
//
//   - sparse: COO and CSR sparse matrix types implementing gonum's
//     mat.Matrix, with a float32-narrowing adapter for interchange data
//   - preprocessing: CountVectorizer for turning documents into term-count
//     matrices
//   - datasets: the 20 newsgroups corpus fetcher with deterministic
//     shuffling, plus an embedded sample corpus
//   - sklearn/naive_bayes: MultinomialNB with batch, incremental, and
//     streaming training
//   - metrics: classification metrics (accuracy, AUC, log loss)
//
// A minimal pipeline:
//
//	X, y, err := datasets.LoadCorpus()
//	if err != nil {
//		// corpus not cached; pass datasets.WithDownload(true) to fetch it
//	}
//	nb := naive_bayes.NewMultinomialNB()
//	err = nb.Fit(X, labelColumn(y))
//
// Incremental training over disjoint row chunks accumulates exactly the
// counts batch training would, so PartialFit over a partition of the data
// reaches the same model as a single Fit.
package nbtext
