package image

import "context"

type Params struct {
	Prompt string
	Seed   int64
}

// Generator produces a single image for a prompt, returning the raw
// bytes and their content type.
type Generator interface {
	Generate(context.Context, Params) ([]byte, string, error)
}
