package handle

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/promptpix/promptpix/internal/feed"
	"github.com/promptpix/promptpix/internal/log"
	"github.com/samber/do"
)

type FeedHandler struct {
	generator *feed.Generator
}

func NewFeedHandler(i *do.Injector) (*FeedHandler, error) {
	return &FeedHandler{generator: do.MustInvoke[*feed.Generator](i)}, nil
}

func (h *FeedHandler) Handle(ctx context.Context, _ events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("FeedHandler")
	log.Info("handling feed request")

	rss, err := h.generator.Generate(ctx)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{"Content-Type": "application/rss+xml"},
		Body:       string(rss),
	}, nil
}
