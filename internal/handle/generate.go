package handle

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/promptpix/promptpix/internal/image"
	"github.com/promptpix/promptpix/internal/log"
	"github.com/promptpix/promptpix/internal/page"
	"github.com/promptpix/promptpix/internal/seed"
	"github.com/promptpix/promptpix/internal/store"
	"github.com/samber/do"
)

// Delivery modes. One deployed function serves one mode; the mode only
// changes how the generated image reaches the caller.
const (
	ModeInline = "inline" // image bytes in the response body
	ModeSigned = "signed" // presigned URL to the stored object
	ModeLink   = "link"   // page linking through the fetch endpoint
)

const (
	imageExt        = ".png"
	signedURLExpiry = 7 * 24 * time.Hour
)

type GenerateRequest struct {
	Prompt string `json:"prompt"`
	Client struct {
		Company string `json:"company"`
	} `json:"client"`
}

type GenerateHandler struct {
	company   string
	mode      string
	fetchBase string
	fallback  string
	seeder    *seed.Randomizer
	generator image.Generator
	store     store.Store
	templator *page.Templator
}

func NewGenerateHandler(i *do.Injector) (*GenerateHandler, error) {
	return &GenerateHandler{
		company:   do.MustInvokeNamed[string](i, "company"),
		mode:      do.MustInvokeNamed[string](i, "delivery_mode"),
		fetchBase: do.MustInvokeNamed[string](i, "fetch_base_url"),
		fallback:  do.MustInvokeNamed[string](i, "fallback_image_url"),
		seeder:    do.MustInvoke[*seed.Randomizer](i),
		generator: do.MustInvoke[image.Generator](i),
		store:     do.MustInvoke[store.Store](i),
		templator: do.MustInvoke[*page.Templator](i),
	}, nil
}

// Handle generates one image for the request's prompt and delivers it
// per the configured mode. Callers render any 200 body as content, so
// every failure past the authorization gate is masked behind a 200
// response carrying a fallback page instead of an error status.
func (h *GenerateHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("GenerateHandler").With("mode", h.mode)
	log.Info("handling generate request")

	var req GenerateRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		log.Error("decoding request body", "err", err)
		return h.failure(ctx), nil
	}

	if req.Client.Company != h.company {
		log.Warn("rejecting request", "company", req.Client.Company)
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusForbidden,
			Body:       "Access Denied",
		}, nil
	}

	img, contentType, err := h.generator.Generate(ctx, image.Params{
		Prompt: req.Prompt,
		Seed:   h.seeder.Seed(),
	})
	if err != nil {
		log.Error("generating image", "err", err)
		return h.failure(ctx), nil
	}

	if h.mode == ModeInline {
		return events.APIGatewayProxyResponse{
			StatusCode:      http.StatusOK,
			Headers:         map[string]string{"Content-Type": contentType},
			Body:            base64.StdEncoding.EncodeToString(img),
			IsBase64Encoded: true,
		}, nil
	}

	name := requestID(ctx) + imageExt
	if err := h.store.Upload(ctx, store.UploadParams{
		Name:        name,
		Data:        img,
		ContentType: contentType,
		Metadata:    map[string]string{"prompt": req.Prompt},
	}); err != nil {
		log.Error("storing image", "name", name, "err", err)
		return h.failure(ctx), nil
	}

	switch h.mode {
	case ModeSigned:
		url, err := h.store.SignedURL(ctx, name, signedURLExpiry)
		if err != nil {
			log.Error("presigning image url", "name", name, "err", err)
			return h.failure(ctx), nil
		}
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusOK,
			Headers:    map[string]string{"Content-Type": "text/plain"},
			Body:       url,
		}, nil
	default: // ModeLink
		html, err := h.templator.Image(ctx, page.ImageParams{
			URL:    h.fetchBase + "/" + name,
			Prompt: req.Prompt,
		})
		if err != nil {
			log.Error("rendering image page", "name", name, "err", err)
			return h.failure(ctx), nil
		}
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusOK,
			Headers:    map[string]string{"Content-Type": "text/html"},
			Body:       string(html),
		}, nil
	}
}

func (h *GenerateHandler) failure(ctx context.Context) events.APIGatewayProxyResponse {
	html, err := h.templator.Failure(ctx, page.FailureParams{FallbackURL: h.fallback})
	if err != nil {
		html = []byte("Something went wrong generating your image. " + h.fallback)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{"Content-Type": "text/html"},
		Body:       string(html),
	}
}

// requestID names stored objects after the invocation, keeping names
// unique across concurrent invocations without coordination.
func requestID(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return strconv.FormatInt(time.Now().UTC().UnixNano(), 10)
}
