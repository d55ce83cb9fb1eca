package rekognition

import (
	"context"
	"errors"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/smithy-go"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

const (
	errCodeAccessDenied       = "AccessDeniedException"
	errCodeInvalidParameter   = "InvalidParameterException"
	errCodeInvalidImageFormat = "InvalidImageFormatException"
	errCodeImageTooLarge      = "ImageTooLargeException"
	errCodeThroughput         = "ProvisionedThroughputExceededException"
	errCodeThrottling         = "ThrottlingException"
)

var (
	ErrInvalidCredentials = errors.New("invalid or missing AWS credentials")
	ErrThrottled          = errors.New("rekognition request throttled")
)

// Config selects the AWS region and the confidence (0-100) at which a piece
// of equipment counts as worn.
type Config struct {
	Region        string
	MinConfidence float32
}

func DefaultConfig() Config {
	return Config{Region: "us-east-1", MinConfidence: 80}
}

// API is the subset of the Rekognition client used by the detector
type API interface {
	DetectProtectiveEquipment(ctx context.Context, params *rekognition.DetectProtectiveEquipmentInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectProtectiveEquipmentOutput, error)
}

// NewAPI builds a Rekognition client from the default AWS credential chain
func NewAPI(ctx context.Context, cfg Config) (API, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return rekognition.NewFromConfig(awsCfg), nil
}

// parseError maps Rekognition API errors onto package and domain errors
func parseError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case errCodeAccessDenied:
			return fmt.Errorf("%w: %s", ErrInvalidCredentials, apiErr.ErrorMessage())
		case errCodeInvalidParameter, errCodeInvalidImageFormat, errCodeImageTooLarge:
			return domain.ErrInvalidFrame.WithError(err)
		case errCodeThroughput, errCodeThrottling:
			return fmt.Errorf("%w: %v", ErrThrottled, err)
		}
	}

	return fmt.Errorf("detect protective equipment: %w", err)
}
