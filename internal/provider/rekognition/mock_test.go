package rekognition

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
)

// mockRekognitionAPI is a mock implementation of API for testing
type mockRekognitionAPI struct {
	detectProtectiveEquipmentFunc func(ctx context.Context, params *rekognition.DetectProtectiveEquipmentInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectProtectiveEquipmentOutput, error)
}

func (m *mockRekognitionAPI) DetectProtectiveEquipment(ctx context.Context, params *rekognition.DetectProtectiveEquipmentInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectProtectiveEquipmentOutput, error) {
	if m.detectProtectiveEquipmentFunc != nil {
		return m.detectProtectiveEquipmentFunc(ctx, params, optFns...)
	}
	return &rekognition.DetectProtectiveEquipmentOutput{}, nil
}
