// Package subscription owns the subscription/trial lifecycle: the persisted
// per-user billing record, the pure entitlement evaluator, the service that
// orchestrates the billing gateway and the record store, the realtime feed
// of committed record changes, and the paywall gate.
//
// # Model
//
// Every user has exactly one Record. It is created implicitly with
// StatusNone, moves to StatusTrialing through Service.StartTrial (48 hours,
// monthly plan, EUR), and reaches the paid statuses only by reflecting
// provider webhook events. Entitlement is never stored: EvaluateAccess
// recomputes it from a snapshot and an explicit "now" on every read.
//
// # Consistency
//
// The provider is the source of truth for payment state. Webhook handling
// saves the reflected record first and then publishes it on the Feed; feed
// deliveries and direct store reads race benignly, and consumers keep the
// most recently received snapshot.
//
// # Usage
//
//	store := subscription.NewPgStore(pool)
//	gateway, _ := subscription.NewStripeGateway(stripeCfg)
//	feed := subscription.NewRedisFeed(redisClient, log)
//
//	svc, err := subscription.NewService(ctx,
//		subscription.NewYAMLPlansSource("plans.yaml"),
//		gateway, store,
//		subscription.WithFeed(feed),
//	)
//
//	watch, _ := feed.Subscribe(ctx, userID, func(rec *subscription.Record) {
//		state := subscription.EvaluateAccess(rec, time.Now())
//		// push state to the session
//	})
//	defer watch.Unsubscribe()
package subscription
