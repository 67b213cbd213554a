package router

import (
	"context"
	"errors"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"

	contractx "github.com/tanpawarit/gift-concierge/agent/contract"
	nodex "github.com/tanpawarit/gift-concierge/agent/nodes"
	statex "github.com/tanpawarit/gift-concierge/agent/state"
)

// Router runs each tool call through the validate, load, dispatch, save and
// finalize graph. It holds no per-session data; everything a call needs
// arrives in its bag.
type Router struct {
	store    statex.Store
	executor contractx.ToolExecutor

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	newCallID func() string
}

type Option func(*Router)

// WithCallIDGenerator sets how call ids are minted for calls that arrive without one.
func WithCallIDGenerator(fn func() string) Option {
	return func(r *Router) {
		if fn != nil {
			r.newCallID = fn
		}
	}
}

func New(store statex.Store, executor contractx.ToolExecutor, opts ...Option) (*Router, error) {
	if store == nil {
		return nil, errors.New("state store is required")
	}
	if executor == nil {
		return nil, errors.New("tool executor is required")
	}

	r := &Router{
		store:     store,
		executor:  executor,
		newCallID: uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	graphRunner, err := r.compileHandleCallGraph(context.Background())
	if err != nil {
		return nil, err
	}
	r.graphRunner = graphRunner

	return r, nil
}

func (r *Router) Handle(ctx context.Context, call contractx.ToolCall) (contractx.ToolReply, error) {
	out, err := r.graphRunner.Invoke(ctx, nodex.GraphInput{Call: call})
	if err != nil {
		return contractx.ToolReply{}, err
	}
	return out.Reply, nil
}
