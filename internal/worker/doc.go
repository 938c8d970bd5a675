// Package worker implements the render worker lifecycle and Redis Streams integration.
//
// The worker reads render requests from a Redis stream through a consumer
// group, renders them, and publishes the output to a result stream. Failed
// requests go to "<result stream>.errors". Every message is acknowledged,
// whether it rendered or not.
//
// Example usage:
//
//	cfg, _ := config.Load()
//	redisClient := redis.NewClient(&redis.Options{...})
//	r := renderer.NewRenderer(engine, resolver, cachedData, logger)
//
//	worker := worker.NewWorker(cfg, redisClient, r, eventBus, logger)
//	if err := worker.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer worker.Stop()
//
// A request message carries its JSON in the "data" field:
//
//	XADD render.work * data '{"id":"r1","template":"Hi {{name}}","data":{"name":"Ada"}}'
//
// Health checks are provided via a separate HTTP server:
//
//	healthServer := worker.NewHealthServer(8083, st, worker, logger)
//	healthServer.Start()
//	defer healthServer.Stop()
package worker
