package server

import "github.com/gofiber/fiber/v2"

// Response is the envelope every JSON reply uses.
type Response struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Messages.
const (
	MessageSuccessList    = "recipes listed"
	MessageSuccessGet     = "recipe found"
	MessageSuccessCreate  = "recipe created"
	MessageSuccessUpdate  = "recipe updated"
	MessageFailedQuery    = "invalid query"
	MessageFailedBody     = "invalid request body"
	MessageFailedID       = "invalid recipe id"
	MessageFailedGet      = "failed to get recipe"
	MessageFailedCreate   = "failed to create recipe"
	MessageFailedUpdate   = "failed to update recipe"
	MessageFailedDelete   = "failed to delete recipe"
	MessageInternalFailed = "internal error"
)

// SuccessResponse writes data with the given status code.
func SuccessResponse(c *fiber.Ctx, data any, code int, message string) error {
	return c.Status(code).JSON(Response{Status: true, Message: message, Data: data})
}

// ErrorResponse writes err with the given status code.
func ErrorResponse(c *fiber.Ctx, code int, message string, err error) error {
	resp := Response{Status: false, Message: message}
	if err != nil {
		resp.Error = err.Error()
	}
	return c.Status(code).JSON(resp)
}

// errorHandler renders errors that escape handlers (unknown routes,
// panics caught by recover) in the same envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := MessageInternalFailed
	if fe, ok := err.(*fiber.Error); ok {
		code = fe.Code
		msg = fe.Message
	}
	return ErrorResponse(c, code, msg, err)
}
