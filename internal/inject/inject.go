package inject

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/promptpix/promptpix/internal/config"
	"github.com/promptpix/promptpix/internal/feed"
	"github.com/promptpix/promptpix/internal/handle"
	"github.com/promptpix/promptpix/internal/image"
	"github.com/promptpix/promptpix/internal/log"
	"github.com/promptpix/promptpix/internal/page"
	"github.com/promptpix/promptpix/internal/param"
	"github.com/promptpix/promptpix/internal/seed"
	"github.com/promptpix/promptpix/internal/store"
	"github.com/samber/do"
)

// Setup wires the process-wide injector. Providers are lazy, so each
// deployed function only builds the clients its handler touches, and
// every client is built once and reused across invocations.
func Setup(ctx context.Context) *do.Injector {
	log := log.FromContextOrDiscard(ctx)

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			log.Info(fmt.Sprintf(format, args...))
		},
	})

	do.Provide[config.Config](injector, func(i *do.Injector) (config.Config, error) {
		return config.Load()
	})
	do.Provide[aws.Config](injector, func(i *do.Injector) (aws.Config, error) {
		return awsconfig.LoadDefaultConfig(ctx)
	})
	do.Provide[*ssm.Client](injector, func(i *do.Injector) (*ssm.Client, error) {
		return ssm.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[*s3.Client](injector, func(i *do.Injector) (*s3.Client, error) {
		return s3.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[*bedrockruntime.Client](injector, func(i *do.Injector) (*bedrockruntime.Client, error) {
		return bedrockruntime.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})

	do.Provide[param.Fetcher](injector, param.NewParameterStoreFetcher)
	do.Provide[*seed.Randomizer](injector, seed.NewRandomizer)
	do.Provide[image.Generator](injector, image.NewBedrockGenerator)
	do.Provide[store.Store](injector, store.NewS3Store)
	do.Provide[*page.Templator](injector, page.NewTemplator)
	do.Provide[*feed.Generator](injector, feed.NewS3Generator)

	do.ProvideNamed[string](injector, "company", func(i *do.Injector) (string, error) {
		return do.MustInvoke[param.Fetcher](i).Fetch(ctx, do.MustInvoke[config.Config](i).CompanyParam)
	})
	do.ProvideNamed[string](injector, "bucket", func(i *do.Injector) (string, error) {
		return do.MustInvoke[config.Config](i).Bucket, nil
	})
	do.ProvideNamed[string](injector, "delivery_mode", func(i *do.Injector) (string, error) {
		return do.MustInvoke[config.Config](i).DeliveryMode, nil
	})
	do.ProvideNamed[string](injector, "fetch_base_url", func(i *do.Injector) (string, error) {
		return do.MustInvoke[config.Config](i).FetchBaseURL, nil
	})
	do.ProvideNamed[string](injector, "fallback_image_url", func(i *do.Injector) (string, error) {
		return do.MustInvoke[config.Config](i).FallbackImageURL, nil
	})
	do.ProvideNamed[string](injector, "model_id", func(i *do.Injector) (string, error) {
		return do.MustInvoke[config.Config](i).ModelID, nil
	})

	do.Provide[*handle.GenerateHandler](injector, handle.NewGenerateHandler)
	do.Provide[*handle.FetchHandler](injector, handle.NewFetchHandler)
	do.Provide[*handle.FeedHandler](injector, handle.NewFeedHandler)

	return injector
}
