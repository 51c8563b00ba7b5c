package shared

import (
	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
)

// JSON is the frozen sonic configuration used for every payload the service
// reads or writes. UseNumber keeps string/number discrimination intact when
// inspecting LLM output.
var JSON = sonic.Config{
	UseNumber:            true,
	EscapeHTML:           false,
	SortMapKeys:          false,
	CompactMarshaler:     true,
	NoQuoteTextMarshaler: true,
	NoNullSliceOrMap:     true,
}.Froze()

func ResponseJSON(c *fiber.Ctx, httpCode int, data interface{}) error {
	body, err := JSON.Marshal(data)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(httpCode).Send(body)
}
