package image

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/promptpix/promptpix/internal/log"
	"github.com/samber/do"
)

// Fixed generation parameters; only the prompt and seed vary per call.
const (
	taskTextToImage = "TEXT_IMAGE"
	imageCount      = 1
	imageHeight     = 1024
	imageWidth      = 1024
	imageQuality    = "standard"
	cfgScale        = 8.0
)

type titanRequest struct {
	TaskType              string      `json:"taskType"`
	TextToImageParams     titanPrompt `json:"textToImageParams"`
	ImageGenerationConfig titanConfig `json:"imageGenerationConfig"`
}

type titanPrompt struct {
	Text string `json:"text"`
}

type titanConfig struct {
	NumberOfImages int     `json:"numberOfImages"`
	Height         int     `json:"height"`
	Width          int     `json:"width"`
	Quality        string  `json:"quality"`
	CfgScale       float64 `json:"cfgScale"`
	Seed           int64   `json:"seed"`
}

type titanResponse struct {
	Images []string `json:"images"`
	Error  string   `json:"error"`
}

type BedrockGenerator struct {
	Client  *bedrockruntime.Client
	ModelID string
}

func NewBedrockGenerator(i *do.Injector) (Generator, error) {
	return &BedrockGenerator{
		Client:  do.MustInvoke[*bedrockruntime.Client](i),
		ModelID: do.MustInvokeNamed[string](i, "model_id"),
	}, nil
}

func (g *BedrockGenerator) Generate(ctx context.Context, params Params) ([]byte, string, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("bedrock").With("model", g.ModelID, "seed", params.Seed)
	log.Info("invoking image model")

	body, err := json.Marshal(titanRequest{
		TaskType:          taskTextToImage,
		TextToImageParams: titanPrompt{Text: params.Prompt},
		ImageGenerationConfig: titanConfig{
			NumberOfImages: imageCount,
			Height:         imageHeight,
			Width:          imageWidth,
			Quality:        imageQuality,
			CfgScale:       cfgScale,
			Seed:           params.Seed,
		},
	})
	if err != nil {
		return nil, "", err
	}

	out, err := g.Client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(g.ModelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, "", err
	}

	data, contentType, err := decodeModelResponse(out.Body)
	if err != nil {
		return nil, "", err
	}

	log.Info("received image", "bytes", len(data))
	return data, contentType, nil
}

// decodeModelResponse unpacks the model's JSON envelope. A populated
// error field is a failure even when the call itself succeeded.
func decodeModelResponse(body []byte) ([]byte, string, error) {
	var resp titanResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, "", err
	}
	if resp.Error != "" {
		return nil, "", fmt.Errorf("image model: %s", resp.Error)
	}
	if len(resp.Images) == 0 {
		return nil, "", fmt.Errorf("image model returned no images")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Images[0])
	if err != nil {
		return nil, "", err
	}
	return data, "image/png", nil
}
