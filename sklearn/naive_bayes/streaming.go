package naive_bayes

import (
	"context"
	"log/slog"

	"gonum.org/v1/gonum/mat"

	"github.com/scigolabs/nbtext/core/model"
	"github.com/scigolabs/nbtext/pkg/log"
)

// FitStream consumes batches from a channel and incrementally trains the
// classifier with PartialFit until the channel closes or the context is
// canceled. Declare the class set with WithClasses, or with an explicit
// PartialFit call, before streaming.
func (nb *MultinomialNB) FitStream(ctx context.Context, dataChan <-chan *model.Batch) error {
	chunk := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batch, ok := <-dataChan:
			if !ok {
				return nil
			}
			if batch == nil || batch.X == nil || batch.Y == nil {
				continue
			}
			if err := nb.PartialFit(batch.X, batch.Y, nil); err != nil {
				return err
			}
			rows, _ := batch.X.Dims()
			slog.Debug("stream chunk fitted",
				log.ModelNameKey, "MultinomialNB",
				log.ChunkKey, chunk,
				log.SamplesKey, rows,
			)
			chunk++
		}
	}
}

// PredictStream predicts labels for feature matrices read from a channel,
// writing an n x 1 label matrix per input to the returned channel. The
// output channel closes when the input closes or the context is canceled.
// Prediction errors skip the batch.
func (nb *MultinomialNB) PredictStream(ctx context.Context, dataChan <-chan mat.Matrix) <-chan mat.Matrix {
	out := make(chan mat.Matrix)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case X, ok := <-dataChan:
				if !ok {
					return
				}
				preds, err := nb.Predict(X)
				if err != nil {
					slog.Warn("streaming prediction failed",
						log.ModelNameKey, "MultinomialNB",
						log.ErrAttr(err),
					)
					continue
				}
				select {
				case <-ctx.Done():
					return
				case out <- preds:
				}
			}
		}
	}()
	return out
}
