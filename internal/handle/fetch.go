package handle

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/promptpix/promptpix/internal/log"
	"github.com/promptpix/promptpix/internal/store"
	"github.com/samber/do"
)

// Clients of the fetch endpoint expect this exact header value.
const fetchContentType = "image/jpg"

type FetchHandler struct {
	store    store.Store
	fallback string
}

func NewFetchHandler(i *do.Injector) (*FetchHandler, error) {
	return &FetchHandler{
		store:    do.MustInvoke[store.Store](i),
		fallback: do.MustInvokeNamed[string](i, "fallback_image_url"),
	}, nil
}

// Handle streams a stored image back to the caller. The object name
// comes from the "name" path parameter when the route defines one,
// otherwise from the raw request path. Any storage failure redirects
// to the fallback image rather than erroring.
func (h *FetchHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	name := request.PathParameters["name"]
	if name == "" {
		name = strings.TrimPrefix(request.Path, "/")
	}

	log := log.FromContextOrDiscard(ctx).WithGroup("FetchHandler").With("name", name)
	log.Info("handling fetch request")

	data, err := h.store.Fetch(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("image not found")
		} else {
			log.Error("fetching image", "err", err)
		}
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusSeeOther,
			Headers:    map[string]string{"Location": h.fallback},
		}, nil
	}

	return events.APIGatewayProxyResponse{
		StatusCode:      http.StatusOK,
		Headers:         map[string]string{"Content-Type": fetchContentType},
		Body:            base64.StdEncoding.EncodeToString(data),
		IsBase64Encoded: true,
	}, nil
}
