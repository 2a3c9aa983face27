// Package annotate fans paragraphs out to a fixed pool of annotation workers
// and reassembles their results in input order.
//
// # Components
//
//   - Worker: owns one engine.Engine, annotates one paragraph at a time and
//     verifies that the engine output reconstructs the input text.
//   - Pool: starts P workers wired to a job channel and a result channel,
//     both with capacity P, and shuts them down with one shutdown message
//     per worker.
//   - Bridge: the public entry point. Tokenize submits jobs without blocking,
//     drains one result with blocking, and repeats until every paragraph has
//     been annotated, then sorts the results by job id.
//
// # Flow control
//
// Both channels are bounded. A producer that only pushed jobs would block on
// a full job channel while every worker blocked on a full result channel.
// The bridge never blocks on submission: when the job channel is full it
// pulls a result instead, which frees a result slot, lets a worker take the
// next job and so frees a job slot.
//
// # Failure
//
// A paragraph whose annotation does not reconstruct the original text (or
// whose engine call fails) comes back as a failed result. Tokenize turns the
// first failed result into a *TokenizationError and returns no annotations
// for the batch. Results still in flight are discarded before the next batch
// starts.
//
// # Example
//
//	factory, _ := engine.NewFactory(engine.DefaultConfig())
//	bridge, err := annotate.Open(factory, annotate.WithWorkers(4))
//	if err != nil {
//		return err
//	}
//	defer bridge.Close()
//
//	paragraphs, err := bridge.Tokenize([]annotate.Input{
//		{Offset: 0, Text: "Die Bank ist alt."},
//	})
//
// A Bridge is not safe for concurrent Tokenize calls.
package annotate
