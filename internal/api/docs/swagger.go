package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code      string `json:"code" example:"VALIDATION_FAILED"`
	Message   string `json:"message" example:"Request validation failed"`
	RequestID string `json:"request_id" example:"5f0c6a3e-2b7d-4d1a-9a55-0c1e8e1f2d33"`
}

type AccessPolicy struct {
	Restricted       bool     `json:"restricted" example:"true"`
	AllowedEmployees []string `json:"allowed_employees" example:"E-1001,E-1002"`
	WindowStart      int      `json:"window_start_minute" example:"1320"`
	WindowEnd        int      `json:"window_end_minute" example:"360"`
}

// RegisterCameraRequest is the JSON body of POST /camera
type RegisterCameraRequest struct {
	Name         string       `json:"name" example:"loading-dock-1"`
	Username     string       `json:"username" example:"admin"`
	Password     string       `json:"password" example:"changeme"`
	IPAddress    string       `json:"ip_address" example:"10.0.0.21:554"`
	AccessPolicy AccessPolicy `json:"access_policy"`
}

type CameraResponse struct {
	ID           string       `json:"id" example:"8a1d3c52-77a4-4f36-9d0e-2c6a1b3f9e10"`
	Name         string       `json:"name" example:"loading-dock-1"`
	Username     string       `json:"username" example:"admin"`
	IPAddress    string       `json:"ip_address" example:"10.0.0.21:554"`
	AccessPolicy AccessPolicy `json:"access_policy"`
	CreatedAt    string       `json:"created_at" example:"2026-01-01T00:00:00Z"`
}

type CameraListResponse struct {
	Cameras []CameraResponse `json:"cameras"`
	Count   int              `json:"count" example:"1"`
}

// PPERequirement is both the body of POST /setPPE and the response of GET /ppe
type PPERequirement struct {
	Helmet   bool     `json:"helmet" example:"true"`
	Vest     bool     `json:"vest" example:"true"`
	Gloves   bool     `json:"gloves" example:"false"`
	Mask     bool     `json:"mask" example:"false"`
	Glasses  bool     `json:"glasses" example:"false"`
	Required []string `json:"required" example:"helmet,vest"`
}

type EmployeeSummary struct {
	EmployeeID string `json:"employee_id" example:"E-1001"`
	Dimension  int    `json:"dimension" example:"128"`
	UpdatedAt  string `json:"updated_at" example:"2026-01-01T00:00:00Z"`
}

type EmployeeListResponse struct {
	Employees []EmployeeSummary `json:"employees"`
	Count     int               `json:"count" example:"1"`
}

type EmbeddingRequest struct {
	Embedding []float64 `json:"embedding"`
}

type PPEAlert struct {
	ID           string   `json:"id" example:"3f9b2d8e-1c4a-4e7b-8d2f-6a5c9e0b1d47"`
	CameraID     string   `json:"camera_id" example:"8a1d3c52-77a4-4f36-9d0e-2c6a1b3f9e10"`
	TrackID      string   `json:"track_id" example:"17"`
	EmployeeID   string   `json:"employee_id" example:"E-1001"`
	Violation    []string `json:"violation" example:"helmet"`
	Timestamp    string   `json:"timestamp" example:"2026-01-01T10:15:00Z"`
	SnapshotPath string   `json:"snapshot_path" example:"ppe/2026/01/01/3f9b2d8e.jpg"`
	CreatedAt    string   `json:"created_at" example:"2026-01-01T10:15:01Z"`
}

type PPEAlertListResponse struct {
	Alerts []PPEAlert `json:"alerts"`
	Count  int        `json:"count" example:"1"`
}

type UnauthorizedAlert struct {
	ID           string `json:"id" example:"0d7e4c1b-9a2f-4b3e-8c6d-5f1a2b3c4d5e"`
	CameraID     string `json:"camera_id" example:"8a1d3c52-77a4-4f36-9d0e-2c6a1b3f9e10"`
	TrackID      string `json:"track_id" example:"42"`
	EmployeeID   string `json:"employee_id,omitempty" example:"E-2002"`
	Timestamp    string `json:"timestamp" example:"2026-01-01T23:40:00Z"`
	SnapshotPath string `json:"snapshot_path" example:"unauthorized/2026/01/01/0d7e4c1b.jpg"`
	CreatedAt    string `json:"created_at" example:"2026-01-01T23:40:01Z"`
}

type UnauthorizedAlertListResponse struct {
	Alerts []UnauthorizedAlert `json:"alerts"`
	Count  int                 `json:"count" example:"1"`
}

type FrameAcceptedResponse struct {
	Status   string `json:"status" example:"accepted"`
	CameraID string `json:"camera_id" example:"8a1d3c52-77a4-4f36-9d0e-2c6a1b3f9e10"`
	FrameID  string `json:"frame_id" example:"f-000123"`
}

var internalError = response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error")

func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Vigia API",
		Version:     "v1.0.0",
		Description: "PPE compliance and restricted-zone access alerts for IP cameras",
		Host:        "localhost:3000",
		Path:        "/api",
	})

	endpoints := []*endpoint.EndPoint{
		// Cameras

		endpoint.New(
			endpoint.POST,
			"/camera",
			endpoint.WithTags("Cameras"),
			endpoint.WithSummary("Register a camera"),
			endpoint.WithDescription("Stores the camera with its access policy and starts its processing worker. Body: RegisterCameraRequest. The password is never returned."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(CameraResponse{}, "201", "Camera registered"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "BAD_REQUEST", Message: "Invalid request"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "CAMERA_ALREADY_EXISTS", Message: "A camera with this name is already registered"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity"),
				internalError,
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/cameras",
			endpoint.WithTags("Cameras"),
			endpoint.WithSummary("List cameras"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(CameraListResponse{}, "200", "Registered cameras"),
			}),
			endpoint.WithErrors([]response.Response{internalError}),
		),

		endpoint.New(
			endpoint.POST,
			"/cameras/{id}/frames",
			endpoint.WithTags("Cameras"),
			endpoint.WithSummary("Submit a detection frame"),
			endpoint.WithDescription("Queues a frame event (tracked detections with optional embeddings and equipment, base64 frame image) on the camera's worker. Returns before the frame is processed."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Camera ID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(FrameAcceptedResponse{}, "202", "Frame queued"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "BAD_REQUEST", Message: "Invalid request"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "CAMERA_NOT_FOUND", Message: "Camera not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INVALID_FRAME", Message: "Frame event is malformed"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "RATE_LIMIT_EXCEEDED", Message: "Too many frames for this camera, slow down"}, "429", "Too Many Requests"),
				response.New(ErrorResponse{Code: "FRAME_QUEUE_FULL", Message: "Camera pipeline is saturated, frame dropped"}, "503", "Service Unavailable"),
			}),
		),

		// PPE configuration

		endpoint.New(
			endpoint.POST,
			"/setPPE",
			endpoint.WithTags("PPE"),
			endpoint.WithSummary("Replace the PPE requirement"),
			endpoint.WithDescription("Replaces the whole site requirement. Items left out of the body become not required."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(PPERequirement{}, "200", "Requirement replaced"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "BAD_REQUEST", Message: "Invalid request"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "STORE_UNAVAILABLE", Message: "Storage is temporarily unavailable"}, "503", "Service Unavailable"),
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/ppe",
			endpoint.WithTags("PPE"),
			endpoint.WithSummary("Get the PPE requirement"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(PPERequirement{}, "200", "Current requirement"),
			}),
		),

		// Employees

		endpoint.New(
			endpoint.POST,
			"/employees",
			endpoint.WithTags("Employees"),
			endpoint.WithSummary("Enroll an employee from a photo"),
			endpoint.WithDescription("multipart/form-data with fields employee_id and file (jpeg, png or webp, up to 10MB). The photo must contain exactly one face. Re-enrolling replaces the stored embedding."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmployeeSummary{}, "201", "Employee enrolled"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "NO_FACE_DETECTED", Message: "No face detected in the image"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "MULTIPLE_FACES", Message: "Multiple faces detected"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "STORE_UNAVAILABLE", Message: "Storage is temporarily unavailable"}, "503", "Service Unavailable"),
			}),
		),

		endpoint.New(
			endpoint.POST,
			"/employees/{id}/embedding",
			endpoint.WithTags("Employees"),
			endpoint.WithSummary("Enroll an employee from an embedding"),
			endpoint.WithDescription("Body: EmbeddingRequest. The vector length must match the configured embedding dimension."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Employee ID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmployeeSummary{}, "201", "Employee enrolled"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INVALID_EMBEDDING", Message: "Embedding does not match the configured dimension"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "STORE_UNAVAILABLE", Message: "Storage is temporarily unavailable"}, "503", "Service Unavailable"),
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/employees",
			endpoint.WithTags("Employees"),
			endpoint.WithSummary("List enrolled employees"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmployeeListResponse{}, "200", "Enrolled employees"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "STORE_UNAVAILABLE", Message: "Storage is temporarily unavailable"}, "503", "Service Unavailable"),
			}),
		),

		// Alerts

		endpoint.New(
			endpoint.GET,
			"/ppe_alerts",
			endpoint.WithTags("Alerts"),
			endpoint.WithSummary("List PPE alerts"),
			endpoint.WithDescription("Newest first."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.IntParam("limit", parameter.Query, parameter.WithDescription("Maximum number of alerts (default: 100, max: 1000)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(PPEAlertListResponse{}, "200", "PPE alerts"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "BAD_REQUEST", Message: "Invalid request"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "STORE_UNAVAILABLE", Message: "Storage is temporarily unavailable"}, "503", "Service Unavailable"),
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/unauthorized_alerts",
			endpoint.WithTags("Alerts"),
			endpoint.WithSummary("List unauthorized access alerts"),
			endpoint.WithDescription("Newest first. employee_id is absent when the face did not match any enrolled employee."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.IntParam("limit", parameter.Query, parameter.WithDescription("Maximum number of alerts (default: 100, max: 1000)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(UnauthorizedAlertListResponse{}, "200", "Unauthorized access alerts"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "BAD_REQUEST", Message: "Invalid request"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "STORE_UNAVAILABLE", Message: "Storage is temporarily unavailable"}, "503", "Service Unavailable"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
