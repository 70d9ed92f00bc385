package http

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// MIMEProtobuf selects the binary encoding of a response.
const MIMEProtobuf = "application/x-protobuf"

// wantsProtobuf reports whether the client asked for protobuf.
func wantsProtobuf(c *fiber.Ctx) bool {
	return strings.Contains(c.Get(fiber.HeaderAccept), MIMEProtobuf)
}

// EncodeStruct renders v as a serialized google.protobuf.Struct. v must
// encode to a JSON object.
func EncodeStruct(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

// respond writes v as JSON, or as a protobuf Struct when the client asks for it.
func respond(c *fiber.Ctx, v any) error {
	if !wantsProtobuf(c) {
		return c.JSON(v)
	}
	data, err := EncodeStruct(v)
	if err != nil {
		return serviceError(c, err, "")
	}
	c.Set(fiber.HeaderContentType, MIMEProtobuf)
	c.Set(fiber.HeaderVary, fiber.HeaderAccept)
	return c.Send(data)
}
