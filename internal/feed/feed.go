package feed

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gorilla/feeds"
	"github.com/promptpix/promptpix/internal/log"
	"github.com/samber/do"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Generator builds an RSS feed of the images currently in the bucket,
// linking each entry through the fetch endpoint.
type Generator struct {
	client *s3.Client
	bucket string
	base   string
}

func NewS3Generator(i *do.Injector) (*Generator, error) {
	client := do.MustInvoke[*s3.Client](i)
	bucket := do.MustInvokeNamed[string](i, "bucket")
	base := do.MustInvokeNamed[string](i, "fetch_base_url")
	return &Generator{client, bucket, base}, nil
}

func (g *Generator) Generate(ctx context.Context) ([]byte, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("feed")
	log.Info("generating rss feed")

	feed := feeds.Feed{
		Title:       "PromptPix",
		Description: "Recently generated images",
		Link:        &feeds.Link{Href: g.base},
		Updated:     time.Now(),
	}

	pager := s3.NewListObjectsV2Paginator(g.client, &s3.ListObjectsV2Input{
		Bucket: &g.bucket,
	})

	items := make(chan *feeds.Item)
	defer close(items)

	go func(items <-chan *feeds.Item) {
		for i := range items {
			feed.Add(i)
		}
	}(items)

	group, ctx := errgroup.WithContext(ctx)
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}

		objs := lo.Filter(page.Contents, func(o s3types.Object, _ int) bool {
			return strings.HasSuffix(*o.Key, ".png")
		})

		for _, obj := range objs {
			obj := obj
			group.Go(func() error {
				out, err := g.client.HeadObject(ctx, &s3.HeadObjectInput{
					Bucket: &g.bucket,
					Key:    obj.Key,
				})
				if err != nil {
					return err
				}

				items <- &feeds.Item{
					Title:   out.Metadata["prompt"],
					Link:    &feeds.Link{Href: g.base + "/" + *obj.Key},
					Updated: *out.LastModified,
				}
				return nil
			})
		}
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	feed.Sort(func(a, b *feeds.Item) bool {
		return a.Updated.Before(b.Updated)
	})
	rss, err := feed.ToRss()
	return []byte(rss), err
}
