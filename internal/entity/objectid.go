package entity

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IsObjectIDHex reports whether s is shaped like a canonical document id:
// exactly 24 hexadecimal characters, either case. This is the only id-shape
// check in the code base; product references, category references and hex
// detection all go through it.
func IsObjectIDHex(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != 24 {
		return false
	}
	return primitive.IsValidObjectID(strings.ToLower(s))
}
