package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

const (
	rekognitionMaxLabels     = 10
	rekognitionMinConfidence = 75
	labelPortionGrams        = 100
)

// LabelDetector is the subset of the Rekognition client used here.
type LabelDetector interface {
	DetectLabels(ctx context.Context, in *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

// RekognitionService recognizes food via AWS Rekognition labels. Rekognition
// does not estimate weight, so every item gets a nominal 100 g portion.
type RekognitionService struct {
	client LabelDetector
}

func NewRekognitionService(client LabelDetector) *RekognitionService {
	return &RekognitionService{client: client}
}

// NewRekognitionServiceFromConfig builds the service from an AWS config.
func NewRekognitionServiceFromConfig(cfg aws.Config) *RekognitionService {
	return &RekognitionService{client: rekognition.NewFromConfig(cfg)}
}

type recognizedFood struct {
	FoodName         string  `json:"foodName"`
	EstimatedPortion float64 `json:"estimatedPortion"`
	PortionUnit      string  `json:"portionUnit"`
}

// nonFoodLabels are generic Rekognition categories that say nothing about what is on the plate.
var nonFoodLabels = map[string]bool{
	"Food": true, "Meal": true, "Dish": true, "Plate": true, "Lunch": true,
	"Dinner": true, "Breakfast": true, "Produce": true, "Cutlery": true,
}

func (r *RekognitionService) Recognize(ctx context.Context, image []byte, _ string) (string, error) {
	out, err := r.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: image},
		MaxLabels:     aws.Int32(rekognitionMaxLabels),
		MinConfidence: aws.Float32(rekognitionMinConfidence),
	})
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
		}
		return "", fmt.Errorf("%w: rekognition: %v", ErrUpstreamFailure, err)
	}

	items := make([]recognizedFood, 0, len(out.Labels))
	for _, l := range out.Labels {
		name := aws.ToString(l.Name)
		if name == "" || nonFoodLabels[name] {
			continue
		}
		items = append(items, recognizedFood{FoodName: name, EstimatedPortion: labelPortionGrams, PortionUnit: servingBasisUnit})
	}

	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode labels: %w", err)
	}
	return string(b), nil
}
