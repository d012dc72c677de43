// Package pipeline coordinates concurrent producers and consumers through a
// capacity-bounded shared buffer, with no item loss, bounded memory, and
// deterministic shutdown once all producers are done.
//
// Producers drain finite sources into the buffer and append one termination
// marker each; consumers drain the buffer into shared destinations until
// they take a marker. The coordinator guarantees at least one marker per
// consumer, so every worker terminates without any external cancellation.
//
// Example usage:
//
//	coord, err := pipeline.New[string](10)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	dest := worker.NewSliceSink[string]()
//	_ = coord.AddProducer("producer-1", []string{"a", "b", "c"})
//	_ = coord.AddConsumer("consumer-1", dest)
//
//	if err := coord.Start(); err != nil {
//		log.Fatal(err)
//	}
//	if err := coord.Wait(context.Background()); err != nil {
//		log.Fatal(err)
//	}
//
//	snap := coord.Stats()
//	fmt.Println(snap.TotalProduced, snap.TotalConsumed, dest.Items())
package pipeline
