package utils

import "github.com/gofiber/fiber/v2"

// APIResponse describes the common structure for API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
	Meta    interface{} `json:"meta,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// OK sends a 200 response with optional metadata (pagination, counts).
func OK(c *fiber.Ctx, data interface{}, message string, meta ...interface{}) error {
	if message == "" {
		message = "success"
	}

	response := APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	}
	if len(meta) > 0 && meta[0] != nil {
		response.Meta = meta[0]
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// Fail sends an error response with optional structured details.
func Fail(c *fiber.Ctx, status int, message string, details ...interface{}) error {
	if message == "" {
		message = "error"
	}
	if status == 0 {
		status = fiber.StatusInternalServerError
	}

	response := APIResponse{
		Success: false,
		Message: message,
	}
	if len(details) > 0 && details[0] != nil {
		response.Details = details[0]
	}

	return c.Status(status).JSON(response)
}

// SendSuccess sends a successful JSON response with a message.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	if message == "" {
		message = "success"
	}

	return SendSuccessWithStatus(c, fiber.StatusOK, message, data)
}

// SendSuccessWithStatus sends a success payload using the provided HTTP status code.
func SendSuccessWithStatus(c *fiber.Ctx, status int, message string, data interface{}) error {
	if message == "" {
		message = "success"
	}
	if status == 0 {
		status = fiber.StatusOK
	}

	return c.Status(status).JSON(APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// SendError sends an error JSON response with the given status code.
func SendError(c *fiber.Ctx, status int, message string) error {
	if message == "" {
		message = "error"
	}

	return c.Status(status).JSON(APIResponse{
		Success: false,
		Message: message,
	})
}
