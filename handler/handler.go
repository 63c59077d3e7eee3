package handler

import (
	"net/http"
)

// HandlerFunc is a typed HTTP handler. C is the request context, R the bound request.
type HandlerFunc[C Context, R any] func(ctx C, req R) Response

// Response renders itself to an http.ResponseWriter.
type Response interface {
	Render(w http.ResponseWriter, r *http.Request) error
}

// Bind parses an HTTP request into v.
type Bind func(r *http.Request, v any) error

// ErrorHandler writes the response for binding, handler and render errors.
type ErrorHandler[C Context] func(ctx C, err error)

// Decorator wraps a HandlerFunc. The first decorator given to WithDecorators
// is the outermost.
type Decorator[C Context, R any] func(HandlerFunc[C, R]) HandlerFunc[C, R]

// WrapOption configures Wrap.
type WrapOption[C Context, R any] func(*wrapConfig[C, R])

type wrapConfig[C Context, R any] struct {
	binders        []Bind
	errorHandler   ErrorHandler[C]
	contextFactory func(http.ResponseWriter, *http.Request) C
	decorators     []Decorator[C, R]
}

// WithBinder adds a request binder. Binders run in the order given.
func WithBinder[C Context, R any](b Bind) WrapOption[C, R] {
	return func(c *wrapConfig[C, R]) {
		if b != nil {
			c.binders = append(c.binders, b)
		}
	}
}

// WithErrorHandler replaces the default plain-text error handler.
func WithErrorHandler[C Context, R any](h ErrorHandler[C]) WrapOption[C, R] {
	return func(c *wrapConfig[C, R]) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// WithContextFactory is required when C is not the default Context.
func WithContextFactory[C Context, R any](f func(http.ResponseWriter, *http.Request) C) WrapOption[C, R] {
	return func(c *wrapConfig[C, R]) {
		if f != nil {
			c.contextFactory = f
		}
	}
}

// WithDecorators appends decorators around the handler.
func WithDecorators[C Context, R any](decorators ...Decorator[C, R]) WrapOption[C, R] {
	return func(c *wrapConfig[C, R]) {
		c.decorators = append(c.decorators, decorators...)
	}
}

func defaultErrorHandler[C Context](ctx C, err error) {
	info := Classify(err)
	http.Error(ctx.ResponseWriter(), info.Code, info.Status)
}

func defaultContextFactory[C Context](w http.ResponseWriter, r *http.Request) C {
	if c, ok := NewContext(w, r).(C); ok {
		return c
	}
	panic("handler: custom context type requires WithContextFactory")
}

// Wrap converts a typed HandlerFunc into an http.HandlerFunc.
//
//	h := handler.HandlerFunc[handler.Context, CreateListingRequest](
//		func(ctx handler.Context, req CreateListingRequest) handler.Response {
//			return handler.JSON(listing, handler.WithJSONStatus(http.StatusCreated))
//		},
//	)
//	r.Post("/listings", handler.Wrap(h,
//		handler.WithBinder[handler.Context, CreateListingRequest](binder.JSON()),
//		handler.WithErrorHandler[handler.Context, CreateListingRequest](errHandler),
//	))
func Wrap[C Context, R any](h HandlerFunc[C, R], opts ...WrapOption[C, R]) http.HandlerFunc {
	cfg := &wrapConfig[C, R]{
		errorHandler:   defaultErrorHandler[C],
		contextFactory: defaultContextFactory[C],
	}
	for _, opt := range opts {
		opt(cfg)
	}

	final := h
	for i := len(cfg.decorators) - 1; i >= 0; i-- {
		final = cfg.decorators[i](final)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := cfg.contextFactory(w, r)

		var req R
		for _, bind := range cfg.binders {
			if err := bind(r, &req); err != nil {
				cfg.errorHandler(ctx, errorsJoinBadRequest(err))
				return
			}
		}

		resp := final(ctx, req)
		if resp == nil {
			cfg.errorHandler(ctx, ErrNilResponse)
			return
		}
		if err := resp.Render(w, r); err != nil {
			cfg.errorHandler(ctx, err)
		}
	}
}
