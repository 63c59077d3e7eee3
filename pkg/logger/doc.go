// Package logger builds *slog.Logger instances for the showroom service.
//
// New applies functional options (format, level, static attributes, context
// extractors) and wraps the chosen slog handler in LogHandlerDecorator, which
// adds request-scoped attributes such as the request ID on every call.
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "showroom"),
//	    logger.WithContextExtractors(requestid.LoggerExtractor),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "listing created",
//	    logger.UserID(sellerID),
//	    logger.ListingID(listing.ID),
//	    logger.Tier(ent.Tier),
//	)
//
// Attribute helpers keep key names consistent and return an empty attribute
// for zero values, so they can be passed unconditionally.
package logger
