package page

import (
	"bytes"
	"context"
	_ "embed"
	"html/template"
	"sync"

	"github.com/promptpix/promptpix/internal/log"
	"github.com/samber/do"
)

//go:embed assets/image.html
var imageTmpl string

//go:embed assets/failure.html
var failureTmpl string

type ImageParams struct {
	URL    string
	Prompt string
}

type FailureParams struct {
	FallbackURL string
}

type Templator struct {
	image   *template.Template
	failure *template.Template
	once    sync.Once
}

func NewTemplator(i *do.Injector) (*Templator, error) {
	return &Templator{}, nil
}

func (t *Templator) parse() {
	t.once.Do(func() {
		t.image = template.Must(template.New("image").Parse(imageTmpl))
		t.failure = template.Must(template.New("failure").Parse(failureTmpl))
	})
}

func (t *Templator) Image(ctx context.Context, params ImageParams) ([]byte, error) {
	t.parse()
	log.FromContextOrDiscard(ctx).WithGroup("templator").Info("rendering image page")

	var data bytes.Buffer
	if err := t.image.Execute(&data, params); err != nil {
		return nil, err
	}
	return data.Bytes(), nil
}

func (t *Templator) Failure(ctx context.Context, params FailureParams) ([]byte, error) {
	t.parse()
	log.FromContextOrDiscard(ctx).WithGroup("templator").Info("rendering failure page")

	var data bytes.Buffer
	if err := t.failure.Execute(&data, params); err != nil {
		return nil, err
	}
	return data.Bytes(), nil
}
